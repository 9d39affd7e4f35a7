package triage

import (
	"fmt"
	"strings"
)

// Summarize renders the one-line summary shown next to a result,
// e.g. "Klacht over Waterbeheer: overstroming, riolering".
func Summarize(category string, keywords []string) string {
	return fmt.Sprintf("Klacht over %s: %s", category, strings.Join(keywords, ", "))
}
