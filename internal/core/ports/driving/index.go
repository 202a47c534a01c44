package driving

import "context"

// IndexStats summarizes one dispatcher run, for the CLI and status surface.
type IndexStats struct {
	New       int
	Outdated  int
	Uptodate  int
	Errors    int
}

// IndexService is the driving contract for running an indexing pass over
// one or more configured sources.
type IndexService interface {
	// Run dispatches, indexes and writes every document across the
	// configured sources, blocking until the pipeline has fully drained
	// (spec.md §4.6 termination).
	Run(ctx context.Context) (IndexStats, error)
}
