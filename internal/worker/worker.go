// Package worker implements the indexer worker pool of spec.md §4.4: a
// set of goroutines that each pull a Document off the dispatcher's
// channel, tokenize and hash its text into a posting fragment, and push
// the fragment onto the writer's channel. Workers share no mutable state
// and acquire no locks, mirroring the teacher's task-queue consumer loop
// in shape (channel read, process, repeat) without its queue-backed retry
// machinery, which has no analogue for a one-shot indexing pass.
package worker

import (
	"context"

	"github.com/custodia-labs/idxbeast/internal/core/domain"
	"github.com/custodia-labs/idxbeast/internal/core/ports/driven"
	"github.com/custodia-labs/idxbeast/internal/tokenize"
)

// Job is one unit of dispatcher output: a document to index plus its
// freshly-assigned id and, when it supersedes a prior row, the old id.
type Job struct {
	Doc        domain.Document
	NewID      int64
	Supersedes *int64
	shutdown   bool
}

// ShutdownJob is the sentinel the dispatcher sends once per worker to
// signal that no further documents are coming, per spec.md §5.
func ShutdownJob() Job {
	return Job{shutdown: true}
}

// Pool runs N indexer workers that read Jobs from in and write Fragments
// to out. Run blocks until every worker has observed its sentinel.
type Pool struct {
	Size     int
	HashCap  int
	Logger   driven.Logger
	Status   driven.StatusSink
}

// Run starts Size worker goroutines and blocks until all of them exit
// after observing a ShutdownJob. Each worker gets its own HashCache so
// there is no shared mutable state between workers, per spec.md §4.4.
func (p *Pool) Run(ctx context.Context, in <-chan Job, out chan<- *domain.Fragment) {
	done := make(chan struct{}, p.Size)
	for i := 0; i < p.Size; i++ {
		go func(id int) {
			defer func() { done <- struct{}{} }()
			p.runOne(ctx, id, in, out)
		}(i)
	}
	for i := 0; i < p.Size; i++ {
		<-done
	}
}

func (p *Pool) runOne(ctx context.Context, id int, in <-chan Job, out chan<- *domain.Fragment) {
	cache := tokenize.NewHashCache(p.HashCap)
	stage := workerStage(id)

	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-in:
			if !ok {
				return
			}
			if job.shutdown {
				return
			}
			frag := p.index(job, cache)
			p.Status.IncrInt(stage, "documents_processed", 1)
			out <- frag
		}
	}
}

// index tokenizes a single document into a Fragment. A document that
// fails to read or tokenize still produces a Fragment with an empty
// postings map and zero counts, so a doc row is recorded and future
// re-indexing sees an mtime to retry against (spec.md §4.4).
func (p *Pool) index(job Job, cache *tokenize.HashCache) *domain.Fragment {
	frag := &domain.Fragment{
		NewID:      job.NewID,
		Supersedes: job.Supersedes,
		Postings:   make(map[int64][]byte),
		Row: domain.Row{
			ID:        job.NewID,
			Type:      job.Doc.Type,
			Locator:   job.Doc.Locator,
			MTime:     job.Doc.MTime,
			Title:     job.Doc.Title,
			Extension: job.Doc.Extension,
			From:      job.Doc.From,
			To:        job.Doc.To,
			Size:      job.Doc.Size,
		},
	}

	if job.Doc.GetText == nil {
		p.Logger.Warn("document has no text reader", "locator", job.Doc.Locator)
		return frag
	}

	text, err := job.Doc.GetText()
	if err != nil {
		p.Logger.Warn("failed to read document", "locator", job.Doc.Locator, "error", err)
		return frag
	}

	sums := make(map[int64]int64)   // word_hash -> sum of positions
	counts := make(map[int64]int64) // word_hash -> frequency

	tokens := tokenize.TokenizeHashes(text, cache)
	for _, tok := range tokens {
		sums[tok.Hash] += int64(tok.Position)
		counts[tok.Hash]++
	}

	frag.Row.WordCount = len(tokens)
	frag.Row.UniqueWordCount = len(counts)

	for h, freq := range counts {
		avg := sums[h] / freq
		frag.Postings[h] = encodeTriple(job.NewID, freq, avg)
	}

	return frag
}

func workerStage(id int) string {
	return "worker_" + itoa(id)
}
