package driving

import (
	"context"
)

// PipelineResult summarises one pipeline run
type PipelineResult struct {
	// Target is the scanned target, empty for parse-only runs
	Target string `json:"target,omitempty"`

	// Parsed is the number of finding documents written
	Parsed int `json:"parsed"`

	// Indexed is the number of documents in the rebuilt index
	Indexed int `json:"indexed"`
}

// ScanPipeline drives the offline half of the system: run scanners against
// a target, parse raw results into finding documents, rebuild the index.
// Runs take the rebuild lock so they never overlap.
type ScanPipeline interface {
	// Run executes scan -> parse -> index for the target.
	Run(ctx context.Context, target string) (*PipelineResult, error)

	// Reindex skips scanning and rebuilds the index from existing raw
	// results: parse -> index.
	Reindex(ctx context.Context) (*PipelineResult, error)
}
