package tokenize

import "testing"

func TestFNV64EmptyStringIsOffsetBasis(t *testing.T) {
	if got := uint64(FNV64("")); got != fnvOffsetBasis {
		t.Fatalf("FNV64(\"\") = %#x (uint64), want offset basis %#x", got, fnvOffsetBasis)
	}
}

func TestFNV64ReferenceVector(t *testing.T) {
	// The published FNV-1a 64-bit vector for "foobar" is 0x85944171f73967e8
	// (9625390261332436968 as an unsigned 64-bit value); FNV64 reinterprets
	// the same bit pattern as a signed int64.
	const want uint64 = 9625390261332436968
	if got := uint64(FNV64("foobar")); got != want {
		t.Fatalf("FNV64(\"foobar\") = %d (uint64), want %d", got, want)
	}
}

func TestFNV64DeterministicAndPure(t *testing.T) {
	if FNV64("hello") != FNV64("hello") {
		t.Fatal("FNV64 is not pure: repeated calls with the same input diverged")
	}
	if FNV64("hello") == FNV64("world") {
		t.Fatal("FNV64 collided on two distinct short inputs")
	}
}

func TestHashCacheMatchesUncached(t *testing.T) {
	cache := NewHashCache(16)
	for _, word := range []string{"fox", "dog", "fox"} {
		if got, want := cache.Hash(word), FNV64(word); got != want {
			t.Fatalf("cache.Hash(%q) = %d, want %d", word, got, want)
		}
	}
}

func TestHashCacheDisabledWithNonPositiveCapacity(t *testing.T) {
	cache := NewHashCache(0)
	if got, want := cache.Hash("fox"), FNV64("fox"); got != want {
		t.Fatalf("disabled cache Hash(%q) = %d, want %d", "fox", got, want)
	}
}
