package index

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven"
)

// Ensure DiskIndex implements VectorIndex
var _ driven.VectorIndex = (*DiskIndex)(nil)

// indexFile is the on-disk format. Entries keep their insertion order so
// search ties resolve the same way across restarts.
type indexFile struct {
	Version int                 `json:"version"`
	Model   string              `json:"model,omitempty"`
	Entries []domain.IndexEntry `json:"entries"`
}

// DiskIndex is a brute-force cosine similarity index persisted as a single
// JSON file. The corpus is small (a handful of scan findings per target), so
// exact scoring beats an approximate structure here.
type DiskIndex struct {
	path string

	mu     sync.RWMutex
	loaded bool
	data   *indexFile
}

// NewDiskIndex creates an index persisted at path. The file is loaded
// lazily on first use.
func NewDiskIndex(path string) *DiskIndex {
	return &DiskIndex{path: path}
}

// Rebuild replaces the entire index and persists it atomically
// (write to a temp file, then rename).
func (d *DiskIndex) Rebuild(ctx context.Context, entries []domain.IndexEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	data := &indexFile{
		Version: 1,
		Entries: entries,
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".index-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp index: %w", err)
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace index: %w", err)
	}

	d.data = data
	d.loaded = true
	return nil
}

// Search scores every entry against the query vector and returns the top k.
func (d *DiskIndex) Search(ctx context.Context, vector []float32, k int) ([]domain.RetrievedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	data, err := d.load()
	if err != nil {
		return nil, err
	}

	type scored struct {
		pos   int
		score float64
	}
	results := make([]scored, 0, len(data.Entries))
	for i, entry := range data.Entries {
		results = append(results, scored{pos: i, score: cosine(vector, entry.Vector)})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if k > len(results) {
		k = len(results)
	}
	docs := make([]domain.RetrievedDocument, 0, k)
	for _, r := range results[:k] {
		entry := data.Entries[r.pos]
		docs = append(docs, domain.RetrievedDocument{
			Text:     entry.Text,
			SourceID: entry.SourceID,
			Score:    r.score,
		})
	}
	return docs, nil
}

// Count returns the number of indexed entries
func (d *DiskIndex) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	data, err := d.load()
	if err != nil {
		return 0, err
	}
	return len(data.Entries), nil
}

// HealthCheck verifies the index directory is writable
func (d *DiskIndex) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(d.path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("index dir unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("index path parent %s is not a directory", dir)
	}
	return nil
}

// load returns the cached index, reading it from disk on first use.
func (d *DiskIndex) load() (*indexFile, error) {
	d.mu.RLock()
	if d.loaded {
		data := d.data
		d.mu.RUnlock()
		return data, nil
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loaded {
		return d.data, nil
	}

	raw, err := os.ReadFile(d.path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: index file %s not found", domain.ErrIndexUnavailable, d.path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}

	var data indexFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: corrupt index file: %v", domain.ErrIndexUnavailable, err)
	}

	d.data = &data
	d.loaded = true
	return d.data, nil
}

// cosine computes cosine similarity between two vectors.
// Mismatched lengths or zero vectors score 0.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
