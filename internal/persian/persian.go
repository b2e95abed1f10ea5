package persian

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ZWNJ joins compound words (می‌روم) and counts as part of the alphabet,
// but never as a letter of its own.
const ZWNJ = '‌'

const tatweel = 'ـ'

// alphabet is the canonical Persian letter set. Every submitted word is
// reduced to these code points (plus ZWNJ) before any comparison.
var alphabet = map[rune]struct{}{
	'ا': {}, 'ب': {}, 'پ': {}, 'ت': {}, 'ث': {}, 'ج': {}, 'چ': {}, 'ح': {},
	'خ': {}, 'د': {}, 'ذ': {}, 'ر': {}, 'ز': {}, 'ژ': {}, 'س': {}, 'ش': {},
	'ص': {}, 'ض': {}, 'ط': {}, 'ظ': {}, 'ع': {}, 'غ': {}, 'ف': {}, 'ق': {},
	'ک': {}, 'گ': {}, 'ل': {}, 'م': {}, 'ن': {}, 'و': {}, 'ه': {}, 'ی': {},
}

// variantFold maps legacy Arabic code points that render like Persian
// letters onto the single canonical code point. Keyboards and copy-paste
// sources mix these freely.
var variantFold = map[rune]rune{
	'ي': 'ی', // Arabic yeh
	'ى': 'ی', // alef maksura
	'ے': 'ی', // yeh barree
	'ئ': 'ی', // yeh with hamza
	'ك': 'ک', // Arabic kaf
	'ڪ': 'ک', // swash kaf
	'ہ': 'ه', // heh goal
	'ە': 'ه', // ae
	'ة': 'ه', // teh marbuta
	'آ': 'ا', // alef with madda
	'أ': 'ا', // alef with hamza above
	'إ': 'ا', // alef with hamza below
	'ٱ': 'ا', // alef wasla
	'ؤ': 'و', // waw with hamza
}

// pipeline composes, folds the legacy variants, and drops tatweel plus all
// combining marks (harakat). Character filtering happens afterwards against
// the explicit alphabet table rather than a regexp.
var pipeline = transform.Chain(
	norm.NFC,
	runes.Map(func(r rune) rune {
		if c, ok := variantFold[r]; ok {
			return c
		}
		return r
	}),
	runes.Remove(runes.Predicate(func(r rune) bool {
		return r == tatweel || unicode.Is(unicode.Mn, r)
	})),
)

// Normalize canonicalizes raw text into the comparable form used for
// dictionary lookups and used-word tracking. It is pure and never fails;
// unusable input comes back as "".
func Normalize(text string) string {
	folded, _, err := transform.String(pipeline, strings.ToLower(text))
	if err != nil {
		return ""
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		switch {
		case IsLetter(r) || r == ZWNJ:
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// IsLetter reports whether r is a member of the canonical alphabet.
// ZWNJ joins letters but is not one, so it is excluded.
func IsLetter(r rune) bool {
	_, ok := alphabet[r]
	return ok
}

// FirstLetter returns the first alphabet letter of text after
// normalization, or "" when none remains.
func FirstLetter(text string) string {
	for _, r := range Normalize(text) {
		if IsLetter(r) {
			return string(r)
		}
	}
	return ""
}

// LastLetter returns the final alphabet letter of text after
// normalization, or "" when none remains.
func LastLetter(text string) string {
	last := ""
	for _, r := range Normalize(text) {
		if IsLetter(r) {
			last = string(r)
		}
	}
	return last
}

// LetterCount counts alphabet letters in text after normalization.
// ZWNJ and spaces do not count toward word length.
func LetterCount(text string) int {
	n := 0
	for _, r := range Normalize(text) {
		if IsLetter(r) {
			n++
		}
	}
	return n
}
