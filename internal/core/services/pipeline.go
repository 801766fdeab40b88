package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hardline-labs/scanwise-core/internal/core/ports/driven"
	"github.com/hardline-labs/scanwise-core/internal/core/ports/driving"
	"github.com/hardline-labs/scanwise-core/internal/core/domain"
	"github.com/hardline-labs/scanwise-core/internal/findings"
)

const (
	// rebuildLockName is the shared lock serialising index rebuilds
	rebuildLockName = "index-rebuild"

	// rebuildLockTTL bounds how long a crashed run can block others
	rebuildLockTTL = 15 * time.Minute
)

// ScanRunner executes the external scanners against a target, leaving raw
// output under the results directory.
type ScanRunner interface {
	RunAll(ctx context.Context, target string) error
}

// Ensure scanPipeline implements ScanPipeline
var _ driving.ScanPipeline = (*scanPipeline)(nil)

// scanPipeline drives scan -> parse -> index under the rebuild lock, so a
// rebuild never races another rebuild. Queries keep hitting the previous
// index until the atomic swap.
type scanPipeline struct {
	runner    ScanRunner // optional, nil disables the scan step
	collector *findings.Collector
	indexer   driving.IndexService
	lock      driven.RebuildLock
	logger    *slog.Logger
}

// NewScanPipeline creates a new ScanPipeline.
func NewScanPipeline(
	runner ScanRunner,
	collector *findings.Collector,
	indexer driving.IndexService,
	lock driven.RebuildLock,
	logger *slog.Logger,
) driving.ScanPipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &scanPipeline{
		runner:    runner,
		collector: collector,
		indexer:   indexer,
		lock:      lock,
		logger:    logger,
	}
}

// Run executes scan -> parse -> index for the target.
func (p *scanPipeline) Run(ctx context.Context, target string) (*driving.PipelineResult, error) {
	return p.run(ctx, target, true)
}

// Reindex rebuilds the index from existing raw results without scanning.
func (p *scanPipeline) Reindex(ctx context.Context) (*driving.PipelineResult, error) {
	return p.run(ctx, "", false)
}

func (p *scanPipeline) run(ctx context.Context, target string, scan bool) (*driving.PipelineResult, error) {
	acquired, err := p.lock.Acquire(ctx, rebuildLockName, rebuildLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire rebuild lock: %w", err)
	}
	if !acquired {
		return nil, domain.ErrRebuildInProgress
	}
	defer func() {
		if err := p.lock.Release(context.WithoutCancel(ctx), rebuildLockName); err != nil {
			p.logger.Warn("failed to release rebuild lock", "error", err)
		}
	}()

	if scan && p.runner != nil && target != "" {
		p.logger.Info("running scanners", "target", target)
		if err := p.runner.RunAll(ctx, target); err != nil {
			return nil, fmt.Errorf("run scanners: %w", err)
		}
	}

	docs, err := p.collector.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("parse scan results: %w", err)
	}
	p.logger.Info("parsed scan results", "documents", len(docs))

	if err := p.collector.WriteDocs(docs); err != nil {
		return nil, fmt.Errorf("write parsed docs: %w", err)
	}

	indexed, err := p.indexer.Rebuild(ctx, docs)
	if err != nil {
		return nil, err
	}

	return &driving.PipelineResult{
		Target:  target,
		Parsed:  len(docs),
		Indexed: indexed,
	}, nil
}
