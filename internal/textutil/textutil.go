// Package textutil provides text helpers for book and creator names:
// filename scrubbing, URL-safe path tokens, and diacritic folding.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// ScrubFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func ScrubFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// FoldDiacritics decomposes accented characters and strips combining marks,
// so "Émile Zolá" folds to "Emile Zola".
func FoldDiacritics(value string) string {
	decomposed := norm.NFD.String(value)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}

// PathToken converts a display name into a lowercase URL-safe path token.
// Diacritics are folded, letters lowercased, digits kept, runs of anything
// else collapse to a single hyphen. Returns "unknown" for empty input.
func PathToken(value string) string {
	value = strings.TrimSpace(FoldDiacritics(value))
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	lastHyphen := false
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "unknown"
	}
	return out
}

// FirstShardRune returns the uppercase first alphanumeric rune of a subject,
// used for letter sharding in the content archive. Integer subjects shard
// under their first digit. Falls back to the uppercased first rune when the
// subject contains no alphanumerics.
func FirstShardRune(subject string) rune {
	subject = strings.TrimSpace(FoldDiacritics(subject))
	if subject == "" {
		return 0
	}
	for _, r := range subject {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
	}
	for _, r := range subject {
		return unicode.ToUpper(r)
	}
	return 0
}
