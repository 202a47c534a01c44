package tokenize

import (
	"strings"
	"testing"
)

func words(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Word
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTokenizeAccentFolding(t *testing.T) {
	got := words(Tokenize("Été Ça"))
	want := []string{"ete", "ca"}
	if !equalStrings(got, want) {
		t.Fatalf("Tokenize(\"Été Ça\") = %v, want %v", got, want)
	}
}

func TestTokenizeLengthBounds(t *testing.T) {
	if got := Tokenize("a"); len(got) != 0 {
		t.Fatalf("Tokenize(\"a\") = %v, want no tokens (below min length 2)", got)
	}
	if got := Tokenize(strings.Repeat("a", 40)); len(got) != 0 {
		t.Fatalf("Tokenize(%d a's) = %v, want no tokens (max length 40 is exclusive)", 40, got)
	}
	if got := words(Tokenize(strings.Repeat("a", 39))); len(got) != 1 || got[0] != strings.Repeat("a", 39) {
		t.Fatalf("Tokenize(39 a's) = %v, want a single 39-char token", got)
	}
	if got := words(Tokenize("ab")); len(got) != 1 || got[0] != "ab" {
		t.Fatalf("Tokenize(\"ab\") = %v, want [\"ab\"]", got)
	}
}

func TestTokenizePreservesUnderscoreAndDigits(t *testing.T) {
	got := words(Tokenize("_foo_1"))
	want := []string{"_foo_1"}
	if !equalStrings(got, want) {
		t.Fatalf("Tokenize(\"_foo_1\") = %v, want %v", got, want)
	}
}

func TestTokenizePositionsAreOrdinalNotOffset(t *testing.T) {
	tokens := Tokenize("the quick brown fox")
	for i, tok := range tokens {
		if tok.Position != i {
			t.Fatalf("token %d (%q) has position %d, want %d", i, tok.Word, tok.Position, i)
		}
	}
	if len(tokens) != 4 {
		t.Fatalf("expected 4 tokens, got %d", len(tokens))
	}
}

func TestTokenizeHashesPreservesDuplicateOrder(t *testing.T) {
	cache := NewHashCache(0)
	hashed := TokenizeHashes("fox fox dog", cache)
	if len(hashed) != 3 {
		t.Fatalf("expected 3 hashed tokens, got %d", len(hashed))
	}
	if hashed[0].Hash != hashed[1].Hash {
		t.Fatalf("expected repeated word \"fox\" to hash identically at both positions")
	}
	if hashed[0].Position != 0 || hashed[1].Position != 1 || hashed[2].Position != 2 {
		t.Fatalf("unexpected positions: %+v", hashed)
	}
}
