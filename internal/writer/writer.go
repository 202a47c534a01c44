// Package writer implements the single mutator of the Store: it batches
// fragments coming from the indexer workers, merges them per word hash,
// and performs the append-or-grow protocol against posting blobs inside
// one transaction per batch, per spec.md §4.5. The writer is the only
// goroutine that ever calls driven.Store's mutating methods, preserving
// the "writer must be strictly single-threaded" requirement of spec.md §5.
package writer

import (
	"context"
	"time"

	"github.com/custodia-labs/idxbeast/internal/core/domain"
	"github.com/custodia-labs/idxbeast/internal/core/ports/driven"
)

// Config controls batching behavior.
type Config struct {
	// BatchCap is the maximum number of documents merged per transaction
	// (spec.md §4.5, §6 batch_cap). Default 10,000.
	BatchCap int

	// IdleTimeout flushes a partial batch after this long without a new
	// fragment arriving (spec.md §4.5, §5). Default 500ms.
	IdleTimeout time.Duration
}

// DefaultConfig returns spec.md's defaults.
func DefaultConfig() Config {
	return Config{BatchCap: 10000, IdleTimeout: 500 * time.Millisecond}
}

// Writer pulls fragments from a channel and commits them to the Store in
// batches.
type Writer struct {
	store  driven.Store
	cfg    Config
	logger driven.Logger
	status driven.StatusSink
}

// New creates a Writer.
func New(store driven.Store, cfg Config, logger driven.Logger, status driven.StatusSink) *Writer {
	if cfg.BatchCap <= 0 {
		cfg.BatchCap = 10000
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 500 * time.Millisecond
	}
	return &Writer{store: store, cfg: cfg, logger: logger, status: status}
}

// Run drains in, applying fragments in batches bounded by BatchCap and by
// IdleTimeout, until a shutdown sentinel is observed. It returns once that
// sentinel has been applied and its batch committed, per spec.md §4.6
// termination (dispatcher sends exactly one sentinel to the writer
// channel after all workers have joined).
func (w *Writer) Run(ctx context.Context, in <-chan *domain.Fragment) error {
	var batch []*domain.Fragment
	timer := time.NewTimer(w.cfg.IdleTimeout)
	defer timer.Stop()

	// firstErr records the first failed batch. A failed batch has already
	// been rolled back and logged by applyBatch; the writer keeps consuming
	// and reports firstErr once the channel drains.
	var firstErr error
	flush := func() error {
		if len(batch) == 0 {
			return firstErr
		}
		if err := w.applyBatch(ctx, batch); err != nil && firstErr == nil {
			firstErr = err
		}
		w.status.IncrInt("writer", "batches_committed", 1)
		w.status.IncrInt("writer", "documents_written", int64(len(batch)))
		batch = batch[:0]
		return firstErr
	}

	for {
		select {
		case <-ctx.Done():
			_ = flush()
			return ctx.Err()

		case frag, ok := <-in:
			if !ok {
				return flush()
			}
			if frag.IsShutdown() {
				return flush()
			}

			batch = append(batch, frag)
			if len(batch) >= w.cfg.BatchCap {
				_ = flush()
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.cfg.IdleTimeout)

		case <-timer.C:
			_ = flush()
			timer.Reset(w.cfg.IdleTimeout)
		}
	}
}

// applyBatch implements spec.md §4.5 steps 1-7 within a single transaction.
// Any failure rolls back the entire batch; the writer logs and continues
// with the next batch (spec.md §7 StoreError).
func (w *Writer) applyBatch(ctx context.Context, batch []*domain.Fragment) error {
	merged := mergeFragments(batch)

	tx, err := w.store.Begin(ctx)
	if err != nil {
		w.logger.Error("failed to begin writer transaction", "error", err)
		return domain.ErrStoreUnavailable
	}

	if err := w.applyMerged(ctx, tx, merged); err != nil {
		_ = tx.Rollback()
		w.logger.Error("batch failed, rolled back", "error", err)
		return err
	}

	for _, frag := range batch {
		if frag.Supersedes != nil {
			if err := tx.DeleteDoc(ctx, *frag.Supersedes); err != nil {
				_ = tx.Rollback()
				w.logger.Error("failed to delete superseded doc row", "error", err)
				return domain.ErrStoreUnavailable
			}
		}
	}

	for _, frag := range batch {
		if err := tx.InsertDoc(ctx, frag.Row); err != nil {
			_ = tx.Rollback()
			w.logger.Error("failed to insert doc row", "error", err)
			return domain.ErrStoreUnavailable
		}
	}

	if err := tx.Commit(); err != nil {
		w.logger.Error("failed to commit batch", "error", err)
		return domain.ErrStoreUnavailable
	}

	return nil
}

// mergeFragments constructs word_hash -> concatenated encoded bytes across
// every fragment in the batch, per spec.md §4.5 step 1.
func mergeFragments(batch []*domain.Fragment) map[int64][]byte {
	merged := make(map[int64][]byte)
	for _, frag := range batch {
		for h, payload := range frag.Postings {
			merged[h] = append(merged[h], payload...)
		}
	}
	return merged
}

// applyMerged classifies each word hash as existing or new and applies the
// append-or-grow state machine of spec.md §4.5 step 3-4.
func (w *Writer) applyMerged(ctx context.Context, tx driven.Txn, merged map[int64][]byte) error {
	for h, add := range merged {
		if len(add) == 0 {
			continue
		}

		meta, err := tx.PostingMeta(ctx, h)
		if err != nil {
			return domain.ErrStoreUnavailable
		}

		if !meta.Exists {
			if err := tx.InsertPostingList(ctx, h, add); err != nil {
				return domain.ErrStoreUnavailable
			}
			continue
		}

		newSize := meta.Size + int64(len(add))
		if newSize <= meta.Phys {
			if err := tx.AppendInPlace(ctx, h, meta.Size, add); err != nil {
				return domain.ErrStoreUnavailable
			}
			continue
		}

		newCapacity := 2 * newSize
		if err := tx.Grow(ctx, h, meta.Size, add, newCapacity); err != nil {
			return domain.ErrStoreUnavailable
		}
	}
	return nil
}
