package findings

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven"
)

// resultPaths maps a tool name to its report path relative to the results
// directory. The order here fixes the order of the produced documents.
var resultPaths = []struct {
	tool string
	path string
}{
	{"nmap", filepath.Join("nmap", "nmap.txt")},
	{"nuclei", filepath.Join("nuclei", "nuclei.jsonl")},
	{"dirsearch", "dirsearch.txt"},
	{"nikto", filepath.Join("nikto", "nikto.txt")},
}

// Collector walks the raw scan results directory, runs the registered
// parser for each tool, and materialises the parsed documents on disk so
// the indexer can pick them up.
type Collector struct {
	registry   driven.ParserRegistry
	resultsDir string
	docsDir    string
	logger     *slog.Logger
}

// NewCollector creates a collector reading raw reports from resultsDir and
// writing parsed documents to docsDir.
func NewCollector(registry driven.ParserRegistry, resultsDir, docsDir string, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		registry:   registry,
		resultsDir: resultsDir,
		docsDir:    docsDir,
		logger:     logger,
	}
}

// DocsDir returns the directory parsed documents are written to.
func (c *Collector) DocsDir() string {
	return c.docsDir
}

// Collect parses every report present in the results directory.
// Missing reports are skipped; a tool without a registered parser is
// logged and skipped.
func (c *Collector) Collect(ctx context.Context) ([]domain.FindingDocument, error) {
	var docs []domain.FindingDocument
	for _, entry := range resultPaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(c.resultsDir, entry.path)
		raw, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			c.logger.Debug("scan report not found, skipping", "tool", entry.tool, "path", path)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s report: %w", entry.tool, err)
		}

		parser := c.registry.Get(entry.tool)
		if parser == nil {
			c.logger.Warn("no parser registered for tool, skipping", "tool", entry.tool)
			continue
		}

		parsed, err := parser.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s report: %w", entry.tool, err)
		}
		docs = append(docs, parsed...)
	}
	return docs, nil
}

// WriteDocs persists parsed documents to the docs directory, one file per
// document named after its source ID.
func (c *Collector) WriteDocs(docs []domain.FindingDocument) error {
	if err := os.MkdirAll(c.docsDir, 0o755); err != nil {
		return fmt.Errorf("create docs dir: %w", err)
	}
	for _, doc := range docs {
		path := filepath.Join(c.docsDir, doc.SourceID)
		if err := os.WriteFile(path, []byte(doc.Text), 0o644); err != nil {
			return fmt.Errorf("write parsed doc %s: %w", doc.SourceID, err)
		}
	}
	return nil
}
