package findings

import (
	"sort"
	"sync"

	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ParserRegistry = (*Registry)(nil)

// Registry implements ParserRegistry with priority-based selection.
// When multiple parsers are registered for a tool, the highest priority one
// is used.
type Registry struct {
	mu      sync.RWMutex
	parsers []driven.FindingParser
}

// NewRegistry creates a new parser registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers: make([]driven.FindingParser, 0),
	}
}

// DefaultRegistry returns a registry with every built-in scanner parser
// registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewNmapParser())
	r.Register(NewNucleiParser())
	r.Register(NewDirsearchParser())
	r.Register(NewNiktoParser())
	return r
}

// Register registers a parser.
func (r *Registry) Register(parser driven.FindingParser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.parsers = append(r.parsers, parser)
}

// Get retrieves the best-matching parser for a tool.
// Returns nil if no parser is registered for the tool.
func (r *Registry) Get(tool string) driven.FindingParser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []driven.FindingParser
	for _, p := range r.parsers {
		if p.Tool() == tool {
			matches = append(matches, p)
		}
	}
	if len(matches) == 0 {
		return nil
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Priority() > matches[j].Priority()
	})
	return matches[0]
}

// List returns all registered tool names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var tools []string
	for _, p := range r.parsers {
		if !seen[p.Tool()] {
			seen[p.Tool()] = true
			tools = append(tools, p.Tool())
		}
	}
	sort.Strings(tools)
	return tools
}
