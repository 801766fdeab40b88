package driven

import (
	"github.com/hardline-labs/scanwise-core/internal/core/domain"
)

// FindingParser turns one scanner's raw output into finding documents.
// Parsers are lossy by design: they keep the factual lines an analyst would
// quote and drop banner noise.
type FindingParser interface {
	// Parse converts raw scanner output into finding documents.
	// A parser may return zero documents when the output holds nothing
	// worth indexing (e.g. the results file is missing).
	Parse(raw []byte) ([]domain.FindingDocument, error)

	// Tool returns the scanner name this parser handles (e.g. "nmap").
	Tool() string

	// Priority returns the parser priority (higher = more specific).
	// When multiple parsers are registered for a tool, the highest
	// priority one is used.
	Priority() int
}

// ParserRegistry manages finding parsers keyed by scanner tool name.
type ParserRegistry interface {
	// Get retrieves the best-matching parser for a tool.
	// Returns nil if no parser is registered for the tool.
	Get(tool string) FindingParser

	// Register registers a parser.
	Register(parser FindingParser)

	// List returns all registered tool names.
	List() []string
}
