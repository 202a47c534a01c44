package domain

// OrderBy selects the field used to sort query results.
type OrderBy string

const (
	OrderByRelevance       OrderBy = "relevance"
	OrderByFrequency       OrderBy = "frequency"
	OrderByAveragePosition OrderBy = "average_position"
)

// OrderDir selects ascending or descending sort direction.
type OrderDir string

const (
	OrderAscending  OrderDir = "ascending"
	OrderDescending OrderDir = "descending"
)

// QueryOptions configures a search request.
type QueryOptions struct {
	Text      string
	Limit     int
	Offset    int
	OrderBy   OrderBy
	OrderDir  OrderDir
}

// DefaultQueryOptions returns sensible defaults matching spec.md §4.7.
func DefaultQueryOptions(text string) QueryOptions {
	return QueryOptions{
		Text:     text,
		Limit:    20,
		Offset:   0,
		OrderBy:  OrderByRelevance,
		OrderDir: OrderDescending,
	}
}

// PostingScore holds the summed (frequency, average_position) components for
// one matched document, the real/imaginary parts of the complex score in
// spec.md §4.7 step 4.
type PostingScore struct {
	DocID             int64
	Frequency         int64
	AveragePosition   int64
}

// Relevance computes F * 10 / (A + 1) per spec.md §4.7 step 5.
func (s PostingScore) Relevance() float64 {
	return float64(s.Frequency) * 10 / float64(s.AveragePosition+1)
}

// ResultRow is one ranked hit returned to the caller, joined against doc.
type ResultRow struct {
	DocID           int64
	Locator         string
	Title           string
	Type            DocumentType
	Frequency       int64
	AveragePosition int64
	Relevance       float64
}

// QueryResult is the outcome of Query.Search: the total size of the matching
// set and the requested page of ranked rows.
type QueryResult struct {
	TotalCount int
	Rows       []ResultRow
}
