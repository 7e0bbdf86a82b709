package tabular_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projektfredrika/kirjailijat/internal/tabular"
)

func TestLoadNameReplacements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.csv")
	content := "\"Aa1berg, Ida\",\"Aalberg, Ida\"\nshort line\nAnna Virtanen,\"Virtanen, Anna\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := tabular.LoadNameReplacements(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Aa1berg, Ida":  "Aalberg, Ida",
		"Anna Virtanen": "Virtanen, Anna",
	}, m)
}

func TestLoadNameReplacementsMissingFile(t *testing.T) {
	m, err := tabular.LoadNameReplacements("no/such/names.csv")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestLoadNameReplacementsEmptyPath(t *testing.T) {
	m, err := tabular.LoadNameReplacements("")
	require.NoError(t, err)
	assert.Nil(t, m)
}
