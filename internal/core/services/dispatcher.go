// Package services implements the core's driving-side orchestration: the
// dispatcher that ties DocumentSources, the worker pool and the writer
// together (spec.md §4.6), and the query engine (spec.md §4.7).
package services

import (
	"context"
	"fmt"
	"runtime"

	"github.com/custodia-labs/idxbeast/internal/core/domain"
	"github.com/custodia-labs/idxbeast/internal/core/ports/driven"
	"github.com/custodia-labs/idxbeast/internal/core/ports/driving"
	"github.com/custodia-labs/idxbeast/internal/worker"
	"github.com/custodia-labs/idxbeast/internal/writer"
)

// Verify interface compliance.
var _ driving.IndexService = (*Dispatcher)(nil)

// DispatcherConfig holds the dispatcher's dependencies and tunables.
type DispatcherConfig struct {
	Store       driven.Store
	Sources     []driven.DocumentSource
	Logger      driven.Logger
	Status      driven.StatusSink
	WorkerCount int // default: number of logical CPUs, capped at 16 (spec.md §5)
	HashCacheCapacity int
	Writer      writer.Config
}

// Dispatcher enumerates candidate documents from every configured source,
// reconciles them against prior doc rows, assigns fresh ids, and feeds the
// worker pool and writer, per spec.md §4.6.
type Dispatcher struct {
	cfg DispatcherConfig
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = runtime.NumCPU()
	}
	if cfg.WorkerCount > 16 {
		cfg.WorkerCount = 16
	}
	return &Dispatcher{cfg: cfg}
}

// Run implements driving.IndexService. It blocks until the dispatcher has
// exhausted every source, every worker has observed its sentinel, and the
// writer has committed its final batch (spec.md §4.6 termination).
func (d *Dispatcher) Run(ctx context.Context) (driving.IndexStats, error) {
	existing, err := d.cfg.Store.LoadDocRows(ctx)
	if err != nil {
		return driving.IndexStats{}, fmt.Errorf("failed to load existing doc rows: %w", err)
	}

	byLocator := make(map[string]driven.DocRef, len(existing))
	var nextID int64 = 1
	for _, ref := range existing {
		byLocator[ref.Locator] = ref
		if ref.ID >= nextID {
			nextID = ref.ID + 1
		}
	}

	workerCh := make(chan worker.Job, d.cfg.WorkerCount*4)
	writerCh := make(chan *domain.Fragment, d.cfg.WorkerCount*4)

	pool := &worker.Pool{
		Size:    d.cfg.WorkerCount,
		HashCap: d.cfg.HashCacheCapacity,
		Logger:  d.cfg.Logger,
		Status:  d.cfg.Status,
	}

	workersDone := make(chan struct{})
	go func() {
		pool.Run(ctx, workerCh, writerCh)
		close(workersDone)
	}()

	w := writer.New(d.cfg.Store, d.cfg.Writer, d.cfg.Logger, d.cfg.Status)
	writerErrCh := make(chan error, 1)
	go func() {
		writerErrCh <- w.Run(ctx, writerCh)
	}()

	stats := driving.IndexStats{}

	for _, source := range d.cfg.Sources {
		err := source.Iterate(func(doc domain.Document, srcErr error) bool {
			if srcErr != nil {
				stats.Errors++
				d.cfg.Logger.Warn("source error", "error", srcErr)
				d.cfg.Status.IncrInt("dispatcher", "source_errors", 1)
				return true
			}

			job := worker.Job{Doc: doc}
			if ref, ok := byLocator[doc.Locator]; !ok {
				job.NewID = nextID
				nextID++
				stats.New++
				d.cfg.Status.IncrInt("dispatcher", "new", 1)
			} else if doc.MTime > ref.MTime {
				oldID := ref.ID
				job.NewID = nextID
				nextID++
				job.Supersedes = &oldID
				stats.Outdated++
				d.cfg.Status.IncrInt("dispatcher", "outdated", 1)
			} else {
				stats.Uptodate++
				d.cfg.Status.IncrInt("dispatcher", "uptodate", 1)
				return true
			}

			select {
			case workerCh <- job:
			case <-ctx.Done():
				return false
			}
			return true
		})
		if err != nil {
			stats.Errors++
			d.cfg.Logger.Warn("failed to enumerate source", "error", err)
		}
	}

	for i := 0; i < d.cfg.WorkerCount; i++ {
		workerCh <- worker.ShutdownJob()
	}

	<-workersDone
	writerCh <- domain.ShutdownFragment()

	if err := <-writerErrCh; err != nil {
		return stats, err
	}

	return stats, nil
}
