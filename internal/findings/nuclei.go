package findings

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.FindingParser = (*NucleiParser)(nil)

// NucleiParser groups nuclei JSONL results by severity, producing one
// document per severity level so retrieval can surface critical findings
// independently of informational ones.
type NucleiParser struct{}

// NewNucleiParser creates a parser for nuclei JSONL output.
func NewNucleiParser() *NucleiParser {
	return &NucleiParser{}
}

func (p *NucleiParser) Tool() string  { return "nuclei" }
func (p *NucleiParser) Priority() int { return 10 }

type nucleiResult struct {
	Info struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Severity    string   `json:"severity"`
		Tags        []string `json:"tags"`
	} `json:"info"`
	MatchedAt string `json:"matched-at"`
	Host      string `json:"host"`
	URL       string `json:"url"`
}

// severityRank orders documents from most to least urgent.
var severityRank = map[string]int{
	"critical": 0,
	"high":     1,
	"medium":   2,
	"low":      3,
	"info":     4,
	"unknown":  5,
}

// Parse reads one JSON object per line and emits a document per severity.
// Lines that fail to decode are skipped.
func (p *NucleiParser) Parse(raw []byte) ([]domain.FindingDocument, error) {
	grouped := make(map[string][]string)
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var res nucleiResult
		if err := json.Unmarshal([]byte(line), &res); err != nil {
			continue
		}

		severity := res.Info.Severity
		if severity == "" {
			severity = "unknown"
		}
		name := res.Info.Name
		if name == "" {
			name = "Unnamed finding"
		}
		desc := res.Info.Description
		if desc == "" {
			desc = "No description provided."
		}
		target := res.MatchedAt
		if target == "" {
			target = res.Host
		}
		if target == "" {
			target = res.URL
		}
		if target == "" {
			target = "Not specified"
		}

		block := strings.Join([]string{
			fmt.Sprintf("- Name: %s", name),
			fmt.Sprintf("  Description: %s", desc),
			fmt.Sprintf("  Target: %s", target),
			fmt.Sprintf("  Tags: %s", strings.Join(res.Info.Tags, ", ")),
		}, "\n")
		grouped[severity] = append(grouped[severity], block)
	}

	severities := make([]string, 0, len(grouped))
	for sev := range grouped {
		severities = append(severities, sev)
	}
	sort.Slice(severities, func(i, j int) bool {
		ri, iok := severityRank[severities[i]]
		rj, jok := severityRank[severities[j]]
		if iok && jok && ri != rj {
			return ri < rj
		}
		if iok != jok {
			return iok
		}
		return severities[i] < severities[j]
	})

	var docs []domain.FindingDocument
	for _, sev := range severities {
		text := fmt.Sprintf("Tool: Nuclei\nSeverity: %s\n\nFindings:\n\n%s", sev, strings.Join(grouped[sev], "\n\n"))
		docs = append(docs, domain.FindingDocument{
			Text:     text,
			SourceID: fmt.Sprintf("nuclei_%s.txt", sev),
		})
	}
	return docs, nil
}
