package rules_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projektfredrika/kirjailijat/internal/rules"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	repl := writeFile(t, dir, "replace.csv", "Aa1berg, Ida;Aalberg, Ida\nbroken line\nVirtanen Anna ;Virtanen, Anna\n")
	headers := writeFile(t, dir, "is_header.txt", "de Vries, Jan\n\nNiemi, Kalle\n")
	nonHeaders := writeFile(t, dir, "not_header.txt", "Katso myös\n")

	set, err := rules.Load(rules.Paths{
		Replacements: repl,
		Headers:      headers,
		NonHeaders:   nonHeaders,
	}, slog.Default())
	require.NoError(t, err)

	assert.Equal(t, "Aalberg, Ida", set.Apply("Aa1berg, Ida"))
	assert.Equal(t, "Virtanen, Anna", set.Apply("Virtanen Anna"))
	assert.True(t, set.IsForcedHeader("de Vries, Jan"))
	assert.True(t, set.IsForcedHeader("Niemi, Kalle"))
	assert.False(t, set.IsForcedHeader("Niemi"))
	assert.True(t, set.IsForcedNonHeader("Katso myös edellinen"))
	assert.False(t, set.IsForcedNonHeader("Jotain muuta"))
}

func TestLoadMissingFilesAreTolerated(t *testing.T) {
	set, err := rules.Load(rules.Paths{
		Replacements: "does/not/exist.csv",
		Headers:      "does/not/exist.txt",
		NonHeaders:   "does/not/exist.txt",
	}, slog.Default())
	require.NoError(t, err)

	assert.Equal(t, "unchanged", set.Apply("unchanged"))
	assert.False(t, set.IsForcedHeader("anything"))
	assert.False(t, set.IsForcedNonHeader("anything"))
}

func TestApplyIsIdempotent(t *testing.T) {
	set := rules.Empty()
	set.AddReplacement("Aa1berg, Ida", "Aalberg, Ida")

	once := set.Apply("Aa1berg, Ida")
	twice := set.Apply(once)
	assert.Equal(t, "Aalberg, Ida", once)
	assert.Equal(t, once, twice, "a corrected line must not change on a second pass")
}

func TestApplyLeavesUnknownLinesAlone(t *testing.T) {
	set := rules.Empty()
	set.AddReplacement("raw", "corrected")

	assert.Equal(t, "something else", set.Apply("something else"))
}

func TestReportUnusedDoesNotPanic(t *testing.T) {
	set := rules.Empty()
	set.AddReplacement("never", "used")
	set.AddForcedHeader("never used")
	set.AddForcedNonHeader("never used")
	set.ReportUnused()
}
