package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/idxbeast/internal/core/domain"
	"github.com/custodia-labs/idxbeast/internal/core/ports/driven"
	"github.com/custodia-labs/idxbeast/internal/writer"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

type nopStatus struct{}

func (nopStatus) SetString(string, string, string)  {}
func (nopStatus) SetInt(string, string, int64)       {}
func (nopStatus) IncrInt(string, string, int64)      {}

// memStore is an in-memory driven.Store exercising the full dispatcher ->
// worker -> writer pipeline end to end, mirroring fakeStore in
// internal/writer's tests but shared here across the dispatcher/query path.
type memStore struct {
	mu    sync.Mutex
	lists map[int64]*memList
	docs  map[int64]domain.Row
}

type memList struct {
	size int64
	phys int64
	blob []byte
}

func newMemStore() *memStore {
	return &memStore{lists: map[int64]*memList{}, docs: map[int64]domain.Row{}}
}

func (s *memStore) LoadDocRows(ctx context.Context) ([]driven.DocRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]driven.DocRef, 0, len(s.docs))
	for _, row := range s.docs {
		out = append(out, driven.DocRef{ID: row.ID, Locator: row.Locator, MTime: row.MTime})
	}
	return out, nil
}

func (s *memStore) PostingList(ctx context.Context, h int64) (int, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[h]
	if !ok {
		return 0, nil, nil
	}
	return int(l.size), append([]byte(nil), l.blob[:l.size]...), nil
}

func (s *memStore) DocByID(ctx context.Context, id int64) (domain.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.docs[id]
	if !ok {
		return domain.Row{}, domain.ErrNotFound
	}
	return row, nil
}

func (s *memStore) Close() error { return nil }

func (s *memStore) Begin(ctx context.Context) (driven.Txn, error) {
	return &memTxn{store: s}, nil
}

type memTxn struct{ store *memStore }

func (t *memTxn) PostingMeta(ctx context.Context, h int64) (driven.PostingMeta, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	l, ok := t.store.lists[h]
	if !ok {
		return driven.PostingMeta{Exists: false}, nil
	}
	return driven.PostingMeta{Exists: true, Size: l.size, Phys: l.phys}, nil
}

func (t *memTxn) AppendInPlace(ctx context.Context, h int64, oldSize int64, add []byte) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	l := t.store.lists[h]
	copy(l.blob[oldSize:], add)
	l.size = oldSize + int64(len(add))
	return nil
}

func (t *memTxn) Grow(ctx context.Context, h int64, oldSize int64, add []byte, newCapacity int64) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	l := t.store.lists[h]
	buf := make([]byte, newCapacity)
	copy(buf, l.blob[:oldSize])
	copy(buf[oldSize:], add)
	l.blob = buf
	l.phys = newCapacity
	l.size = oldSize + int64(len(add))
	return nil
}

func (t *memTxn) InsertPostingList(ctx context.Context, h int64, payload []byte) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.lists[h] = &memList{size: int64(len(payload)), phys: int64(len(payload)), blob: append([]byte(nil), payload...)}
	return nil
}

func (t *memTxn) DeleteDoc(ctx context.Context, id int64) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	delete(t.store.docs, id)
	return nil
}

func (t *memTxn) InsertDoc(ctx context.Context, row domain.Row) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.docs[row.ID] = row
	return nil
}

func (t *memTxn) Commit() error   { return nil }
func (t *memTxn) Rollback() error { return nil }

// fakeSource replays a fixed slice of documents, letting tests simulate
// reindex passes by constructing a fresh source with updated documents.
type fakeSource struct {
	docs []domain.Document
}

func (s *fakeSource) Iterate(yield func(domain.Document, error) bool) error {
	for _, d := range s.docs {
		if !yield(d, nil) {
			return nil
		}
	}
	return nil
}

func textDoc(locator string, mtime int64, text string) domain.Document {
	return domain.Document{
		Locator: locator,
		MTime:   mtime,
		Type:    domain.DocumentTypeFile,
		Size:    int64(len(text)),
		GetText: func() (string, error) { return text, nil },
	}
}

func newTestDispatcher(store driven.Store, docs []domain.Document) *Dispatcher {
	return NewDispatcher(DispatcherConfig{
		Store:             store,
		Sources:           []driven.DocumentSource{&fakeSource{docs: docs}},
		Logger:            nopLogger{},
		Status:            nopStatus{},
		WorkerCount:       2,
		HashCacheCapacity: 0,
		Writer:            writer.Config{BatchCap: 100, IdleTimeout: writer.DefaultConfig().IdleTimeout},
	})
}

// TestDispatcherIndexesSingleDocument covers spec.md §8 scenario S1: a
// single new file is indexed and recorded as exactly one doc row.
func TestDispatcherIndexesSingleDocument(t *testing.T) {
	store := newMemStore()
	d := newTestDispatcher(store, []domain.Document{textDoc("a.txt", 1, "the quick brown fox")})

	stats, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.New)
	require.Equal(t, 0, stats.Outdated)

	rows, err := store.LoadDocRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "a.txt", rows[0].Locator)
}

// TestDispatcherSupersedesOutdatedDocument covers spec.md §8 scenario S2:
// reindexing a document whose mtime has advanced supersedes its old row
// rather than leaving a stale duplicate.
func TestDispatcherSupersedesOutdatedDocument(t *testing.T) {
	store := newMemStore()
	d1 := newTestDispatcher(store, []domain.Document{textDoc("a.txt", 1, "alpha beta")})
	_, err := d1.Run(context.Background())
	require.NoError(t, err)

	rows, _ := store.LoadDocRows(context.Background())
	require.Len(t, rows, 1)
	firstID := rows[0].ID

	d2 := newTestDispatcher(store, []domain.Document{textDoc("a.txt", 2, "alpha beta gamma")})
	stats, err := d2.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Outdated)

	rows, _ = store.LoadDocRows(context.Background())
	require.Len(t, rows, 1)
	require.NotEqual(t, firstID, rows[0].ID)
}

// TestDispatcherSkipsUnchangedDocument covers the uptodate branch of
// spec.md §4.6: a document whose mtime has not advanced is left alone.
func TestDispatcherSkipsUnchangedDocument(t *testing.T) {
	store := newMemStore()
	doc := textDoc("a.txt", 5, "alpha beta")
	d1 := newTestDispatcher(store, []domain.Document{doc})
	_, err := d1.Run(context.Background())
	require.NoError(t, err)

	d2 := newTestDispatcher(store, []domain.Document{doc})
	stats, err := d2.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, stats.New)
	require.Equal(t, 0, stats.Outdated)
	require.Equal(t, 1, stats.Uptodate)
}

// TestDispatcherThenQueryConjunctive covers spec.md §8 scenario S3: after
// indexing, a multi-word query returns only the documents containing
// every query term.
func TestDispatcherThenQueryConjunctive(t *testing.T) {
	store := newMemStore()
	d := newTestDispatcher(store, []domain.Document{
		textDoc("fox.txt", 1, "the quick brown fox jumps"),
		textDoc("dog.txt", 2, "the lazy dog sleeps"),
	})
	_, err := d.Run(context.Background())
	require.NoError(t, err)

	q := NewQuery(QueryConfig{Store: store})
	result, err := q.Search(context.Background(), domain.DefaultQueryOptions("the fox"))
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	require.Equal(t, "fox.txt", result.Rows[0].Locator)
}
