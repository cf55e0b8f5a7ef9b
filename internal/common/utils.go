package common

import (
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeCity returns the case-folded key used for cache lookups and duplicate checks.
// Cache keys and list matching must both go through it so they never disagree.
func NormalizeCity(name string) string {
	// A Caser is stateful; build one per call.
	return cases.Fold().String(name)
}

// SameCity reports whether two city names have the same normalized form.
func SameCity(a, b string) bool {
	return NormalizeCity(a) == NormalizeCity(b)
}

// CapitalizeFirst upper-cases the first character of s and leaves the rest untouched.
func CapitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return cases.Upper(language.Und).String(string(r)) + s[size:]
}
