// Package textnorm turns raw document text and source identifiers into
// lowercase token sequences suitable for keyword matching.
package textnorm

import (
	"strings"
	"unicode"

	"github.com/fatih/camelcase"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tokens is a finite, restartable token sequence. Iterating it never
// consumes it.
type Tokens []string

// Normalize lowercases raw, folds diacritics and splits on every rune that is
// not a letter or digit. Empty input yields an empty sequence.
func Normalize(raw string) Tokens {
	if raw == "" {
		return Tokens{}
	}
	folded := foldDiacritics(raw)

	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(Tokens, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToLower(f))
	}
	return out
}

// SplitIdentifier breaks a code identifier such as "encryptUserData" or
// "hash_password" into normalized tokens. Digit runs stay attached to the
// word before them so "md5" and "sha256" survive as single tokens.
func SplitIdentifier(ident string) Tokens {
	var out Tokens
	for _, part := range strings.FieldsFunc(ident, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		var words []string
		for _, w := range camelcase.Split(part) {
			if isDigits(w) && len(words) > 0 {
				words[len(words)-1] += w
				continue
			}
			words = append(words, w)
		}
		for _, w := range words {
			out = append(out, Normalize(w)...)
		}
	}
	return out
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func foldDiacritics(s string) string {
	// A fresh chain per call: transformers carry state.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Len returns the number of tokens.
func (t Tokens) Len() int { return len(t) }

// Text joins the tokens with single spaces. Regex rules match against it.
func (t Tokens) Text() string { return strings.Join(t, " ") }

// ContainsPhrase reports whether phrase occurs as a contiguous run of tokens.
// An empty phrase never matches.
func (t Tokens) ContainsPhrase(phrase Tokens) bool {
	return t.IndexPhrase(phrase) >= 0
}

// IndexPhrase returns the token offset of the first occurrence of phrase, or
// -1 when absent.
func (t Tokens) IndexPhrase(phrase Tokens) int {
	n := len(phrase)
	if n == 0 || n > len(t) {
		return -1
	}
	for i := 0; i+n <= len(t); i++ {
		if t[i] != phrase[0] {
			continue
		}
		match := true
		for j := 1; j < n; j++ {
			if t[i+j] != phrase[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
