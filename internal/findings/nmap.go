package findings

import (
	"fmt"
	"strings"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.FindingParser = (*NmapParser)(nil)

// NmapParser extracts open ports from nmap's normal (-oN) output.
type NmapParser struct{}

// NewNmapParser creates a parser for nmap output.
func NewNmapParser() *NmapParser {
	return &NmapParser{}
}

func (p *NmapParser) Tool() string  { return "nmap" }
func (p *NmapParser) Priority() int { return 10 }

// Parse keeps only open TCP port lines, one bullet per service.
func (p *NmapParser) Parse(raw []byte) ([]domain.FindingDocument, error) {
	var bullets []string
	for _, line := range strings.Split(string(raw), "\n") {
		if !strings.Contains(line, "/tcp") || !strings.Contains(line, "open") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 4 {
			continue
		}
		bullets = append(bullets, fmt.Sprintf("- Port: %s, Service: %s, Version: %s", parts[0], parts[2], parts[3]))
	}

	lines := []string{"Tool: Nmap", "", "Findings:"}
	if len(bullets) > 0 {
		lines = append(lines, bullets...)
	} else {
		lines = append(lines, "No open ports detected.")
	}

	doc := domain.FindingDocument{
		Text:     strings.Join(lines, "\n"),
		SourceID: "nmap_findings.txt",
	}
	return []domain.FindingDocument{doc}, nil
}
