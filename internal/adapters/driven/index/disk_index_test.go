package index

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hardline-labs/scanwise-core/internal/core/domain"
)

func testEntries() []domain.IndexEntry {
	return []domain.IndexEntry{
		{ID: "nmap_findings.txt#0", Vector: []float32{1, 0, 0}, Text: "ssh open", SourceID: "nmap_findings.txt"},
		{ID: "nikto_findings.txt#0", Vector: []float32{0, 1, 0}, Text: "missing header", SourceID: "nikto_findings.txt"},
		{ID: "dirsearch_findings.txt#0", Vector: []float32{0.9, 0.1, 0}, Text: "admin panel", SourceID: "dirsearch_findings.txt"},
	}
}

func TestDiskIndex_SearchBeforeRebuild(t *testing.T) {
	idx := NewDiskIndex(filepath.Join(t.TempDir(), "index.json"))

	_, err := idx.Search(context.Background(), []float32{1, 0, 0}, 2)
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable, got %v", err)
	}

	_, err = idx.Count(context.Background())
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable from Count, got %v", err)
	}
}

func TestDiskIndex_RebuildAndSearch(t *testing.T) {
	idx := NewDiskIndex(filepath.Join(t.TempDir(), "index.json"))

	if err := idx.Rebuild(context.Background(), testEntries()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	docs, err := idx.Search(context.Background(), []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 results, got %d", len(docs))
	}
	if docs[0].SourceID != "nmap_findings.txt" {
		t.Errorf("expected exact match first, got %s", docs[0].SourceID)
	}
	if docs[1].SourceID != "dirsearch_findings.txt" {
		t.Errorf("expected near match second, got %s", docs[1].SourceID)
	}
	if docs[0].Score <= docs[1].Score {
		t.Errorf("expected descending scores, got %f then %f", docs[0].Score, docs[1].Score)
	}
}

func TestDiskIndex_SearchKLargerThanCorpus(t *testing.T) {
	idx := NewDiskIndex(filepath.Join(t.TempDir(), "index.json"))
	if err := idx.Rebuild(context.Background(), testEntries()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	docs, err := idx.Search(context.Background(), []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(docs) != 3 {
		t.Errorf("expected all 3 entries, got %d", len(docs))
	}
}

func TestDiskIndex_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")

	first := NewDiskIndex(path)
	if err := first.Rebuild(context.Background(), testEntries()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	second := NewDiskIndex(path)
	count, err := second.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 entries after reload, got %d", count)
	}
}

func TestDiskIndex_RebuildReplacesIndex(t *testing.T) {
	idx := NewDiskIndex(filepath.Join(t.TempDir(), "index.json"))

	if err := idx.Rebuild(context.Background(), testEntries()); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if err := idx.Rebuild(context.Background(), testEntries()[:1]); err != nil {
		t.Fatalf("second rebuild: %v", err)
	}

	count, err := idx.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("expected rebuild to replace entries, got %d", count)
	}
}

func TestDiskIndex_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	idx := NewDiskIndex(path)
	_, err := idx.Count(context.Background())
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable for corrupt file, got %v", err)
	}
}

func TestCosine(t *testing.T) {
	if got := cosine([]float32{1, 0}, []float32{1, 0}); got != 1 {
		t.Errorf("identical vectors: expected 1, got %f", got)
	}
	if got := cosine([]float32{1, 0}, []float32{0, 1}); got != 0 {
		t.Errorf("orthogonal vectors: expected 0, got %f", got)
	}
	if got := cosine([]float32{1, 0}, []float32{1, 0, 0}); got != 0 {
		t.Errorf("mismatched lengths: expected 0, got %f", got)
	}
	if got := cosine([]float32{0, 0}, []float32{1, 0}); got != 0 {
		t.Errorf("zero vector: expected 0, got %f", got)
	}
}
