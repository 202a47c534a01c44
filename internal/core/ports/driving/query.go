package driving

import (
	"context"

	"github.com/custodia-labs/idxbeast/internal/core/domain"
)

// QueryService is the driving contract for the conjunctive query path,
// mirroring the write path per spec.md §4.7.
type QueryService interface {
	Search(ctx context.Context, opts domain.QueryOptions) (domain.QueryResult, error)
}
