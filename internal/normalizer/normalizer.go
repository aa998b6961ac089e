// Package normalizer handles Unicode canonical forms of IPA symbols.
//
// Labels are never passed through this package; only stored IPA symbols
// and rule text are.
package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// VoicelessMark is COMBINING RING BELOW.
const VoicelessMark = '\u0325'

// vowels lists the IPA vowel letters Devoice recognises.
var vowels = map[rune]bool{}

func init() {
	for _, r := range "aeiouɯɔəɪʊɛæɑʌɒɐɘɤɵœøyɶ" {
		vowels[r] = true
	}
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Canonical returns s in NFD, the form every stored symbol and rule
// pattern uses, so that precomposed and decomposed input compare equal.
func Canonical(s string) string {
	return norm.NFD.String(s)
}

// IsVowel reports whether r is an IPA vowel letter.
func IsVowel(r rune) bool {
	return vowels[r]
}

// IsCombining reports whether r is a nonspacing combining mark.
func IsCombining(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// Devoice marks the last vowel of an IPA symbol voiceless. Symbols without
// a vowel are returned unchanged.
func Devoice(ipa string) string {
	rs := []rune(Canonical(ipa))
	for i := len(rs) - 1; i >= 0; i-- {
		if !vowels[rs[i]] {
			continue
		}
		var b strings.Builder
		b.WriteString(string(rs[:i+1]))
		b.WriteRune(VoicelessMark)
		b.WriteString(string(rs[i+1:]))
		return Canonical(b.String())
	}
	return Canonical(ipa)
}

// StripDiacritics removes every combining mark, for consumers that cannot
// render them.
func StripDiacritics(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}
