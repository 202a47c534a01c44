package driven

import "github.com/custodia-labs/idxbeast/internal/core/domain"

// DocumentSource is a restartable, lazy sequence of candidate documents
// from one root (a directory, a mail store, a web root), per spec.md §6.
// Implementations enumerate in a stable order; across sources order is
// arbitrary (spec.md §5).
type DocumentSource interface {
	// Iterate calls yield for every document this source produces, in
	// enumeration order, until yield returns false or the source is
	// exhausted. An error from yield (returned as the second value) or a
	// source-level failure is classified a SourceError by the caller and
	// does not abort iteration of other sources.
	Iterate(yield func(domain.Document, error) bool) error
}
