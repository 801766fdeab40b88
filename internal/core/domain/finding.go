package domain

import "strings"

// FindingDocument is a unit of retrievable text derived from scan output.
// Produced by the finding parsers, consumed by the indexer. Immutable once
// created.
type FindingDocument struct {
	// Text is the plain-text body of the finding
	Text string `json:"text"`

	// SourceID identifies where the finding came from (usually a file name,
	// e.g. "nmap_findings.txt")
	SourceID string `json:"source_id"`
}

// IsEmpty reports whether the document carries no usable text.
// Empty documents are dropped before indexing.
func (d FindingDocument) IsEmpty() bool {
	return strings.TrimSpace(d.Text) == ""
}

// IndexEntry is a single embedded document owned by the vector index.
// Entries are created in batch by the indexer and never mutated; the only
// way to remove one is a full rebuild of the index.
type IndexEntry struct {
	// ID is the unique identifier within the index
	ID string `json:"id"`

	// Vector is the embedding of Text
	Vector []float32 `json:"vector"`

	// Text is the original document body
	Text string `json:"text"`

	// SourceID identifies the originating finding document
	SourceID string `json:"source_id"`
}

// RetrievedDocument is a search hit returned by the vector index,
// ordered by descending similarity score.
type RetrievedDocument struct {
	Text     string  `json:"text"`
	SourceID string  `json:"source_id"`
	Score    float64 `json:"score"`
}
