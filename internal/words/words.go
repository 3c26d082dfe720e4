// internal/words/words.go
//
// Word entries and the canonical alphabet.
//
// Every word that enters the game passes through Normalize exactly once: at
// dataset load time for targets, and at key/guess input time for guesses.
// The canonical alphabet is A–Z plus Ñ; every other diacritic is stripped
// (Á → A, Ü → U) and anything that is not a letter is dropped.
package words

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Entry is one word/definition pair of the active dataset.
// Word is always normalized; the optional media fields are empty when absent.
type Entry struct {
	Word       string   `json:"word" yaml:"word"`
	Definition string   `json:"def" yaml:"def"`
	Related    []string `json:"related,omitempty" yaml:"related,omitempty"`
	ImageURL   string   `json:"image,omitempty" yaml:"image,omitempty"`
	AudioURL   string   `json:"audio,omitempty" yaml:"audio,omitempty"`
}

// Len is the word length in letters (Ñ counts as one).
func (e Entry) Len() int { return len([]rune(e.Word)) }

// IsLetter reports whether r belongs to the canonical alphabet.
func IsLetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || r == 'Ñ'
}

// Normalize upper-cases s, strips diacritics except on Ñ, and drops every
// rune outside the canonical alphabet.
func Normalize(s string) string {
	// Transformers carry state, so each call builds its own chain.
	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	var b strings.Builder
	for _, r := range norm.NFC.String(s) {
		r = unicode.ToUpper(r)
		if r == 'Ñ' {
			b.WriteRune(r)
			continue
		}
		base, _, err := transform.String(strip, string(r))
		if err != nil {
			continue
		}
		for _, c := range base {
			c = unicode.ToUpper(c)
			if c >= 'A' && c <= 'Z' {
				b.WriteRune(c)
			}
		}
	}
	return b.String()
}

// NormalizeKey maps a single typed key to its canonical letter.
// ok is false when the key is not exactly one letter of the alphabet.
func NormalizeKey(key string) (letter rune, ok bool) {
	key = norm.NFC.String(strings.TrimSpace(key))
	rs := []rune(Normalize(key))
	if len(rs) != 1 || len([]rune(key)) != 1 {
		return 0, false
	}
	return rs[0], true
}

// NormalizeGuess normalizes a typed word without dropping anything: ok is
// false when some rune does not fold to a single letter of the alphabet.
// Surrounding whitespace is ignored.
func NormalizeGuess(s string) (word string, ok bool) {
	s = norm.NFC.String(strings.TrimSpace(s))
	for _, r := range s {
		if len([]rune(Normalize(string(r)))) != 1 {
			return "", false
		}
	}
	return Normalize(s), true
}
