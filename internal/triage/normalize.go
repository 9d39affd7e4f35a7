package triage

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalize composes s to NFC and lower-cases it with Dutch casing rules, so
// that "Overstroming" typed with a decomposed accent or in capitals still
// meets the keyword "overstroming".
func Normalize(s string) string {
	// A Caser keeps state between calls and cannot be shared across goroutines.
	return cases.Lower(language.Dutch).String(norm.NFC.String(s))
}
