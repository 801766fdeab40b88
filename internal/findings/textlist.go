package findings

import (
	"strings"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven"
)

// Verify interface compliance
var (
	_ driven.FindingParser = (*DirsearchParser)(nil)
	_ driven.FindingParser = (*NiktoParser)(nil)
)

// parseLineList turns every non-blank line of a plain-text report into a
// bullet under a tool header. Shared by the dirsearch and nikto parsers,
// which both ship line-oriented reports.
func parseLineList(raw []byte, toolLabel, emptyNote, sourceID string) []domain.FindingDocument {
	var bullets []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		bullets = append(bullets, "- "+line)
	}

	lines := []string{"Tool: " + toolLabel, "", "Findings:"}
	if len(bullets) > 0 {
		lines = append(lines, bullets...)
	} else {
		lines = append(lines, emptyNote)
	}

	return []domain.FindingDocument{{
		Text:     strings.Join(lines, "\n"),
		SourceID: sourceID,
	}}
}

// DirsearchParser converts dirsearch's plain report into a bullet list of
// discovered paths.
type DirsearchParser struct{}

func NewDirsearchParser() *DirsearchParser {
	return &DirsearchParser{}
}

func (p *DirsearchParser) Tool() string  { return "dirsearch" }
func (p *DirsearchParser) Priority() int { return 10 }

func (p *DirsearchParser) Parse(raw []byte) ([]domain.FindingDocument, error) {
	return parseLineList(raw, "Dirsearch", "No accessible directories or files discovered.", "dirsearch_findings.txt"), nil
}

// NiktoParser converts nikto's plain report into a bullet list of findings.
type NiktoParser struct{}

func NewNiktoParser() *NiktoParser {
	return &NiktoParser{}
}

func (p *NiktoParser) Tool() string  { return "nikto" }
func (p *NiktoParser) Priority() int { return 10 }

func (p *NiktoParser) Parse(raw []byte) ([]domain.FindingDocument, error) {
	return parseLineList(raw, "Nikto", "No findings reported.", "nikto_findings.txt"), nil
}
