// Package normalize coerces inbound catalog fields into the store's canonical shape.
// Every function here is pure.
package normalize

import (
	"strings"

	"alcyxob/fitness-catalog/internal/domain"
)

// Difficulty lower-cases raw and maps anything unrecognised (including "") to beginner.
func Difficulty(raw string) domain.Difficulty {
	d := domain.Difficulty(strings.ToLower(raw))
	if d.Valid() {
		return d
	}
	return domain.DifficultyBeginner
}

// Category lower-cases raw. An empty category stays empty.
func Category(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.ToLower(raw)
}

// Name builds a fuzzy comparison key: lowercase with everything outside [a-z0-9] removed.
// The key is never persisted.
func Name(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToLower(raw) {
		if isKeyRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FirstWord returns the first run of [a-z0-9] characters of the lower-cased name,
// or "" if there is none.
func FirstWord(raw string) string {
	fields := strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool { return !isKeyRune(r) })
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func isKeyRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// IsMissingArray reports whether seq is absent or empty.
func IsMissingArray(seq []string) bool {
	return len(seq) == 0
}

// IsMissingText reports whether s is empty after trimming whitespace.
func IsMissingText(s string) bool {
	return strings.TrimSpace(s) == ""
}

// IsCanonicalDifficulty reports whether raw is already one of the lowercase levels.
// Empty, mis-cased and unknown values are all repair targets.
func IsCanonicalDifficulty(raw string) bool {
	return domain.Difficulty(raw).Valid()
}

// IsCanonicalCategory reports whether a present category is lowercase. An empty
// category counts as canonical; its absence is handled as a missing field.
func IsCanonicalCategory(raw string) bool {
	return raw == strings.ToLower(raw)
}
