// Package tokenize turns raw document or query text into the ordered
// stream of normalized (word, position) pairs that the rest of the
// indexing pipeline consumes, per spec.md §4.1.
package tokenize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// charmapTable maps every Unicode code point in U+0000..U+FFFF to a
// (possibly empty) ASCII fold used during tokenization. Built once, on the
// first Charmap call, from the fold rules in spec.md §4.1:
//   - lowercase ascii letters, digits and '_' map to themselves
//   - uppercase ascii letters map to their lowercase counterpart
//   - everything else is transliterated to ASCII (accent stripping,
//     common symbol spellings) and re-filtered by the rule above;
//     whatever doesn't survive becomes the empty string.
var charmapTable [0x10000]string
var charmapOnce sync.Once

// symbolFold covers characters NFKD decomposition does not reduce to a
// plain ASCII letter/digit on its own, mirroring the original idxbeast
// charmap_gen.py hand-maintained symbol table.
var symbolFold = map[rune]string{
	'°': "deg",
	'&': "and",
	'@': "at",
	'€': "eur",
	'£': "gbp",
	'¥': "yen",
	'×': "x",
	'÷': "div",
	'±': "pm",
	'µ': "u",
	'ß': "ss",
	'æ': "ae",
	'Æ': "ae",
	'œ': "oe",
	'Œ': "oe",
	'ø': "o",
	'Ø': "o",
	'ð': "d",
	'Ð': "d",
	'þ': "th",
	'Þ': "th",
	'ł': "l",
	'Ł': "l",
	'đ': "d",
	'Đ': "d",
}

func buildCharmap() {
	for c := rune(0); c <= 0xFFFF; c++ {
		charmapTable[c] = foldRune(c)
	}
}

// foldRune computes the ASCII fold for a single code point, per the rules
// in spec.md §4.1.
func foldRune(c rune) string {
	switch {
	case c >= 'a' && c <= 'z':
		return string(c)
	case c >= '0' && c <= '9':
		return string(c)
	case c == '_':
		return "_"
	case c >= 'A' && c <= 'Z':
		return string(unicode.ToLower(c))
	}

	if s, ok := symbolFold[c]; ok {
		return s
	}

	// Deterministic Unicode->ASCII fold: NFKD-decompose (splits accented
	// letters and many ligatures into a base letter plus combining
	// marks/compatibility characters), drop combining marks, then keep
	// only what survives the base-rule filter above.
	decomposed := norm.NFKD.String(string(c))
	var out strings.Builder
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue // combining mark, e.g. the accent stripped from é
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			out.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			out.WriteRune(unicode.ToLower(r))
		}
	}
	return out.String()
}

// Charmap returns the fold for a single BMP code point. Code points beyond
// U+FFFF are not covered by the table (spec.md §9 Open Questions) and fold
// to the empty string.
func Charmap(r rune) string {
	charmapOnce.Do(buildCharmap)
	if r < 0 || r > 0xFFFF {
		return ""
	}
	return charmapTable[r]
}
