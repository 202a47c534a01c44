package driven

import (
	"context"

	"github.com/custodia-labs/idxbeast/internal/core/domain"
)

// Store is the embedded transactional relational database holding the
// match and doc tables described in spec.md §6. It is the single source
// of truth for document identity and posting-list bytes; workers hold no
// persistent state of their own.
type Store interface {
	// LoadDocRows returns (id, locator, mtime) for every existing document
	// row, for the dispatcher's startup reconciliation pass (spec.md §4.6).
	LoadDocRows(ctx context.Context) ([]DocRef, error)

	// Begin opens a single transaction within which the writer performs
	// the append-or-grow protocol of spec.md §4.5. The Writer (not the
	// Store) owns that protocol's logic; Store only exposes the
	// primitives it needs.
	Begin(ctx context.Context) (Txn, error)

	// PostingList fetches the current logical size and blob payload bytes
	// ([0, size)) for a word hash, outside any writer transaction, for the
	// query engine. Returns (0, nil, nil) if the word has never been
	// indexed.
	PostingList(ctx context.Context, wordHash int64) (size int, blob []byte, err error)

	// DocByID fetches the (locator, title, type) triple for a document id,
	// for the query engine's result enrichment step (spec.md §4.7 step 7).
	DocByID(ctx context.Context, id int64) (domain.Row, error)

	// Close releases the underlying connection(s).
	Close() error
}

// DocRef is the (id, locator, mtime) triple the dispatcher uses to decide
// new/outdated/uptodate classification for each candidate document.
type DocRef struct {
	ID      int64
	Locator string
	MTime   int64
}

// PostingMeta is the current physical state of one posting list, as seen
// from inside a writer transaction: logical size and allocated capacity.
type PostingMeta struct {
	Exists bool
	Size   int64
	Phys   int64
}

// Txn is the set of primitives the append-or-grow protocol of spec.md
// §4.5 needs from within a single atomic batch.
type Txn interface {
	// PostingMeta returns the current size/capacity for a word hash, or
	// Exists=false if the posting list does not exist yet.
	PostingMeta(ctx context.Context, wordHash int64) (PostingMeta, error)

	// AppendInPlace writes add at offset oldSize within the existing blob
	// and sets size := oldSize+len(add), without touching capacity. Only
	// valid when oldSize+len(add) <= current physical capacity.
	AppendInPlace(ctx context.Context, wordHash int64, oldSize int64, add []byte) error

	// Grow reallocates the blob to newCapacity bytes, preserving the first
	// oldSize bytes, writing add at [oldSize, oldSize+len(add)), and
	// setting size := oldSize+len(add). newCapacity is always
	// 2*(oldSize+len(add)) per spec.md §4.5.
	Grow(ctx context.Context, wordHash int64, oldSize int64, add []byte, newCapacity int64) error

	// InsertPostingList creates a brand new posting list with size ==
	// len(payload) and capacity == len(payload).
	InsertPostingList(ctx context.Context, wordHash int64, payload []byte) error

	// DeleteDoc removes a superseded doc row by id.
	DeleteDoc(ctx context.Context, id int64) error

	// InsertDoc inserts a new doc row.
	InsertDoc(ctx context.Context, row domain.Row) error

	// Commit commits every write issued against this Txn. Rollback is not
	// implicit: the caller must call Rollback on any error path instead.
	Commit() error

	// Rollback aborts every write issued against this Txn.
	Rollback() error
}
