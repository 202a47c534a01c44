package writer

import (
	"context"
	"sync"
	"testing"

	"github.com/custodia-labs/idxbeast/internal/core/domain"
	"github.com/custodia-labs/idxbeast/internal/core/ports/driven"
	"github.com/custodia-labs/idxbeast/internal/status"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// fakeStore is an in-memory driven.Store good enough to exercise the
// append-or-grow state machine exactly as spec.md §4.5/§8 describe it.
type fakeStore struct {
	mu    sync.Mutex
	lists map[int64]*fakeList
	docs  map[int64]domain.Row
}

type fakeList struct {
	size int64
	phys int64
	blob []byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{lists: map[int64]*fakeList{}, docs: map[int64]domain.Row{}}
}

func (s *fakeStore) LoadDocRows(ctx context.Context) ([]driven.DocRef, error) { return nil, nil }
func (s *fakeStore) PostingList(ctx context.Context, h int64) (int, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lists[h]
	if !ok {
		return 0, nil, nil
	}
	return int(l.size), append([]byte(nil), l.blob[:l.size]...), nil
}
func (s *fakeStore) DocByID(ctx context.Context, id int64) (domain.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[id], nil
}
func (s *fakeStore) Close() error { return nil }

func (s *fakeStore) Begin(ctx context.Context) (driven.Txn, error) {
	return &fakeTxn{store: s}, nil
}

type fakeTxn struct {
	store *fakeStore
}

func (t *fakeTxn) PostingMeta(ctx context.Context, h int64) (driven.PostingMeta, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	l, ok := t.store.lists[h]
	if !ok {
		return driven.PostingMeta{Exists: false}, nil
	}
	return driven.PostingMeta{Exists: true, Size: l.size, Phys: l.phys}, nil
}

func (t *fakeTxn) AppendInPlace(ctx context.Context, h int64, oldSize int64, add []byte) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	l := t.store.lists[h]
	copy(l.blob[oldSize:], add)
	l.size = oldSize + int64(len(add))
	return nil
}

func (t *fakeTxn) Grow(ctx context.Context, h int64, oldSize int64, add []byte, newCapacity int64) error {
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

func (t *fakeTxn) InsertPostingList(ctx context.Context, h int64, payload []byte) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.lists[h] = &fakeList{size: int64(len(payload)), phys: int64(len(payload)), blob: append([]byte(nil), payload...)}
	return nil
}

func (t *fakeTxn) DeleteDoc(ctx context.Context, id int64) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	delete(t.store.docs, id)
	return nil
}

func (t *fakeTxn) InsertDoc(ctx context.Context, row domain.Row) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.docs[row.ID] = row
	return nil
}

func (t *fakeTxn) Commit() error   { return nil }
func (t *fakeTxn) Rollback() error { return nil }

func frag(id int64, postings map[int64][]byte) *domain.Fragment {
	return &domain.Fragment{NewID: id, Postings: postings, Row: domain.Row{ID: id}}
}

func TestApplyBatchNewList(t *testing.T) {
	store := newFakeStore()
	w := New(store, DefaultConfig(), nopLogger{}, status.New())

	err := w.applyBatch(context.Background(), []*domain.Fragment{
		frag(1, map[int64][]byte{42: {1, 2, 3}}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	size, blob, _ := store.PostingList(context.Background(), 42)
	if size != 3 || len(blob) != 3 {
		t.Fatalf("unexpected posting list state: size=%d blob=%v", size, blob)
	}
}

func TestApplyBatchAppendInPlaceThenGrow(t *testing.T) {
	store := newFakeStore()
	w := New(store, DefaultConfig(), nopLogger{}, status.New())
	ctx := context.Background()

	// First insert: size=phys=3.
	if err := w.applyBatch(ctx, []*domain.Fragment{frag(1, map[int64][]byte{42: {1, 2, 3}})}); err != nil {
		t.Fatal(err)
	}

	store.mu.Lock()
	l := store.lists[42]
	store.mu.Unlock()
	if l.size != 3 || l.phys != 3 {
		t.Fatalf("expected size=phys=3, got size=%d phys=%d", l.size, l.phys)
	}

	// Second batch adds 2 bytes. 3+2=5 > phys(3), so this must grow to 2*5=10.
	if err := w.applyBatch(ctx, []*domain.Fragment{frag(2, map[int64][]byte{42: {4, 5}})}); err != nil {
		t.Fatal(err)
	}
	store.mu.Lock()
	l = store.lists[42]
	store.mu.Unlock()
	if l.size != 5 {
		t.Fatalf("expected size=5, got %d", l.size)
	}
	if l.phys != 10 {
		t.Fatalf("expected phys=2*5=10 after growth, got %d", l.phys)
	}

	// Third batch adds 1 byte. 5+1=6 <= phys(10), so this appends in place:
	// phys must stay 10 (capacity is never shrunk, and doesn't grow again
	// until size would exceed it).
	if err := w.applyBatch(ctx, []*domain.Fragment{frag(3, map[int64][]byte{42: {6}})}); err != nil {
		t.Fatal(err)
	}
	store.mu.Lock()
	l = store.lists[42]
	store.mu.Unlock()
	if l.size != 6 {
		t.Fatalf("expected size=6, got %d", l.size)
	}
	if l.phys != 10 {
		t.Fatalf("expected phys unchanged at 10, got %d", l.phys)
	}
}

func TestApplyBatchSupersessionAtomicity(t *testing.T) {
	store := newFakeStore()
	w := New(store, DefaultConfig(), nopLogger{}, status.New())
	ctx := context.Background()

	if err := w.applyBatch(ctx, []*domain.Fragment{frag(1, nil)}); err != nil {
		t.Fatal(err)
	}
	oldID := int64(1)
	f2 := frag(2, nil)
	f2.Supersedes = &oldID
	if err := w.applyBatch(ctx, []*domain.Fragment{f2}); err != nil {
		t.Fatal(err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.docs[1]; ok {
		t.Fatal("expected old doc row deleted")
	}
	if _, ok := store.docs[2]; !ok {
		t.Fatal("expected new doc row present")
	}
}
