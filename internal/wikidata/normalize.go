package wikidata

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName puts a name into the comparison form used for match
// acceptance: Unicode NFKC, case-folded, inner whitespace collapsed.
func NormalizeName(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// LabelMatches reports whether a candidate label corresponds to the queried
// name under normalized equality. Anything looser is left to manual review.
func LabelMatches(query, label string) bool {
	return NormalizeName(query) == NormalizeName(label)
}
