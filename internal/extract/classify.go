package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/projektfredrika/kirjailijat/internal/profile"
	"github.com/projektfredrika/kirjailijat/internal/rules"
)

// decision records why a line was classified the way it was, for the debug
// artifact.
type decision struct {
	header bool
	forced bool
}

// classify decides whether a line opens a new entry. Override tables always
// win; otherwise a header needs large type, clear separation from the
// previous line, no digits, a name-like start and more than one character.
// A line matching nothing defaults to body text.
func classify(ln line, set *rules.Set, cfg profile.Heuristic) decision {
	if set.IsForcedHeader(ln.text) {
		return decision{header: true, forced: true}
	}
	if set.IsForcedNonHeader(ln.text) {
		return decision{header: false, forced: true}
	}

	if ln.height <= cfg.MinHeight {
		return decision{}
	}
	// The first line of a column has no distance; type size alone decides.
	if ln.distance >= 0 && ln.distance <= cfg.MinDistance {
		return decision{}
	}
	if strings.ContainsFunc(ln.text, unicode.IsDigit) {
		return decision{}
	}
	if !probableName(ln.text) {
		return decision{}
	}
	if utf8.RuneCountInString(strings.TrimSpace(ln.text)) <= 1 {
		return decision{}
	}
	return decision{header: true}
}

// probableName reports whether text starts like a surname: an initial
// capital, an elided particle such as "d’Ornot", or a lowercase particle
// ("de ", "van ") followed by a capital.
func probableName(text string) bool {
	if text == "" {
		return false
	}
	r := []rune(text)
	if unicode.IsUpper(r[0]) {
		return true
	}
	if len(r) >= 3 && unicode.IsLower(r[0]) && r[1] == '’' && unicode.IsUpper(r[2]) {
		return true
	}
	for _, particle := range []string{"de ", "van "} {
		rest, found := strings.CutPrefix(text, particle)
		if found && rest != "" {
			if first, _ := utf8.DecodeRuneInString(rest); unicode.IsUpper(first) {
				return true
			}
		}
	}
	return false
}
