package services

import (
	"context"
	"sort"

	lru "github.com/hashicorp/golang-lru"

	"github.com/custodia-labs/idxbeast/internal/core/domain"
	"github.com/custodia-labs/idxbeast/internal/core/ports/driven"
	"github.com/custodia-labs/idxbeast/internal/core/ports/driving"
	"github.com/custodia-labs/idxbeast/internal/tokenize"
	"github.com/custodia-labs/idxbeast/internal/varint"
)

// Verify interface compliance.
var _ driving.QueryService = (*Query)(nil)

// termPostings is the decoded form of one word hash's posting list:
// docs(h) and scores(h) from spec.md §4.7 step 2.
type termPostings struct {
	docs   map[int64]struct{}
	scores map[int64]domain.PostingScore
}

// Query implements the conjunctive query path of spec.md §4.7.
type Query struct {
	store     driven.Store
	hashCache *tokenize.HashCache
	termCache *lru.Cache // word_hash -> termPostings
}

// QueryConfig configures the Query service's caches.
type QueryConfig struct {
	Store             driven.Store
	HashCacheCapacity int
	TermCacheCapacity int
}

// NewQuery creates a Query service.
func NewQuery(cfg QueryConfig) *Query {
	capacity := cfg.TermCacheCapacity
	if capacity <= 0 {
		capacity = 4096
	}
	cache, _ := lru.New(capacity)
	return &Query{
		store:     cfg.Store,
		hashCache: tokenize.NewHashCache(cfg.HashCacheCapacity),
		termCache: cache,
	}
}

// Search implements driving.QueryService per spec.md §4.7.
func (q *Query) Search(ctx context.Context, opts domain.QueryOptions) (domain.QueryResult, error) {
	hashes := tokenize.TokenizeHashes(opts.Text, q.hashCache)
	if len(hashes) == 0 {
		return domain.QueryResult{}, nil
	}

	unique := make(map[int64]struct{})
	var order []int64
	for _, h := range hashes {
		if _, seen := unique[h.Hash]; !seen {
			unique[h.Hash] = struct{}{}
			order = append(order, h.Hash)
		}
	}

	terms := make(map[int64]termPostings, len(order))
	for _, h := range order {
		tp, err := q.termFor(ctx, h)
		if err != nil {
			return domain.QueryResult{}, err
		}
		terms[h] = tp
	}

	matches := intersect(terms, order)

	summed := make(map[int64]domain.PostingScore, len(matches))
	for id := range matches {
		var f, a int64
		for _, h := range order {
			if s, ok := terms[h].scores[id]; ok {
				f += s.Frequency
				a += s.AveragePosition
			}
		}
		summed[id] = domain.PostingScore{DocID: id, Frequency: f, AveragePosition: a}
	}

	rows := make([]domain.ResultRow, 0, len(summed))
	for id, score := range summed {
		row, err := q.store.DocByID(ctx, id)
		if err != nil {
			if err == domain.ErrNotFound {
				// Superseded docs leave their old id in every shared
				// word's posting list (spec.md §3); the original's
				// search() drops them with its join against doc, so we
				// drop them here instead of failing the whole query.
				continue
			}
			return domain.QueryResult{}, err
		}
		rows = append(rows, domain.ResultRow{
			DocID:           id,
			Frequency:       score.Frequency,
			AveragePosition: score.AveragePosition,
			Relevance:       score.Relevance(),
			Locator:         row.Locator,
			Title:           row.Title,
			Type:            row.Type,
		})
	}

	sortRows(rows, opts.OrderBy, opts.OrderDir)

	total := len(rows)
	rows = paginate(rows, opts.Offset, opts.Limit)

	return domain.QueryResult{TotalCount: total, Rows: rows}, nil
}

func (q *Query) termFor(ctx context.Context, wordHash int64) (termPostings, error) {
	if q.termCache != nil {
		if cached, ok := q.termCache.Get(wordHash); ok {
			return cached.(termPostings), nil
		}
	}

	_, blob, err := q.store.PostingList(ctx, wordHash)
	if err != nil {
		return termPostings{}, err
	}

	values, err := varint.DecodeAll(blob)
	if err != nil {
		return termPostings{}, domain.ErrCorruptPostingList
	}
	if len(values)%3 != 0 {
		return termPostings{}, domain.ErrCorruptPostingList
	}

	tp := termPostings{
		docs:   make(map[int64]struct{}, len(values)/3),
		scores: make(map[int64]domain.PostingScore, len(values)/3),
	}
	for i := 0; i < len(values); i += 3 {
		docID := int64(values[i])
		freq := int64(values[i+1])
		avg := int64(values[i+2])
		tp.docs[docID] = struct{}{}
		tp.scores[docID] = domain.PostingScore{DocID: docID, Frequency: freq, AveragePosition: avg}
	}

	if q.termCache != nil {
		q.termCache.Add(wordHash, tp)
	}
	return tp, nil
}

// intersect computes M = ⋂ docs(h) over every unique query term, per
// spec.md §4.7 step 3.
func intersect(terms map[int64]termPostings, order []int64) map[int64]struct{} {
	if len(order) == 0 {
		return nil
	}
	result := make(map[int64]struct{}, len(terms[order[0]].docs))
	for id := range terms[order[0]].docs {
		result[id] = struct{}{}
	}
	for _, h := range order[1:] {
		next := make(map[int64]struct{})
		for id := range result {
			if _, ok := terms[h].docs[id]; ok {
				next[id] = struct{}{}
			}
		}
		result = next
	}
	return result
}

func sortRows(rows []domain.ResultRow, orderBy domain.OrderBy, dir domain.OrderDir) {
	less := func(i, j int) bool {
		var vi, vj float64
		switch orderBy {
		case domain.OrderByFrequency:
			vi, vj = float64(rows[i].Frequency), float64(rows[j].Frequency)
		case domain.OrderByAveragePosition:
			vi, vj = float64(rows[i].AveragePosition), float64(rows[j].AveragePosition)
		default:
			vi, vj = rows[i].Relevance, rows[j].Relevance
		}
		if dir == domain.OrderAscending {
			return vi < vj
		}
		return vi > vj
	}
	sort.SliceStable(rows, less)
}

func paginate(rows []domain.ResultRow, offset, limit int) []domain.ResultRow {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return nil
	}
	end := len(rows)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return rows[offset:end]
}
