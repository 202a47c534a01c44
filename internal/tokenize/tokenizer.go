package tokenize

import "strings"

const (
	minWordLen = 2
	maxWordLen = 40 // exclusive upper bound: words in [2, 40)
)

// Token is one surviving normalized word and its zero-based ordinal
// position within the token stream.
type Token struct {
	Word     string
	Position int
}

// Tokenize folds every code point of text through the Charmap, splits on
// any empty-fold boundary, and emits words whose length is in [2, 40), per
// spec.md §4.1. Position is the word's ordinal among surviving tokens, not
// its offset in the input.
func Tokenize(text string) []Token {
	var tokens []Token
	var cur strings.Builder
	pos := 0

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		word := cur.String()
		cur.Reset()
		if n := len([]rune(word)); n >= minWordLen && n < maxWordLen {
			tokens = append(tokens, Token{Word: word, Position: pos})
			pos++
		}
	}

	for _, r := range text {
		fold := Charmap(r)
		if fold == "" {
			flush()
			continue
		}
		cur.WriteString(fold)
	}
	flush()

	return tokens
}

// TokenizeHashes tokenizes text and hashes each surviving word, yielding
// the ordered (word_hash, position) stream spec.md §4.1 describes for the
// Tokenizer component. Duplicate hashes are preserved in order.
func TokenizeHashes(text string, cache *HashCache) []HashedToken {
	tokens := Tokenize(text)
	out := make([]HashedToken, len(tokens))
	for i, t := range tokens {
		out[i] = HashedToken{
			Hash:     cache.Hash(t.Word),
			Position: t.Position,
		}
	}
	return out
}

// HashedToken is a (word_hash, position) pair, the Tokenizer's output per
// spec.md §2 item 4.
type HashedToken struct {
	Hash     int64
	Position int
}
