package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projektfredrika/kirjailijat/internal/pipeline"
	"github.com/projektfredrika/kirjailijat/internal/tabular"
)

func TestTabulate(t *testing.T) {
	dir := t.TempDir()
	mdPath := filepath.Join(dir, "01_output.md")
	csvPath := filepath.Join(dir, "02_output.csv")

	md := "<!-- Page 12 -->\n" +
		"\n" +
		"## Andersson, Erik (1850–1920)\n" +
		"Wrote several novels.\n" +
		"\n" +
		"## Virtanen, Anna (1860–1930)\n" +
		"Poet and translator.\n" +
		"\n" +
		"## Brofeldt, Juhani (1861–1921)\n" +
		"ks. Aho, Juhani\n"
	require.NoError(t, os.WriteFile(mdPath, []byte(md), 0o644))

	n, err := pipeline.Tabulate(mdPath, csvPath, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rows, err := tabular.ReadCSVFile(csvPath)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Andersson, Erik", rows[0].Name)
	assert.Equal(t, 1850, rows[0].Birth)
	assert.Equal(t, 1920, rows[0].Death)
	assert.Equal(t, "Wrote several novels.", rows[0].Text)
	assert.Equal(t, 12, rows[0].PageStart)

	assert.Equal(t, "Virtanen, Anna", rows[1].Name)
	assert.Equal(t, "Anna Virtanen", rows[1].FirstLast)

	assert.Equal(t, 1, rows[2].KS, "cross-reference entries are flagged")
}

func TestTabulateMissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := pipeline.Tabulate(filepath.Join(dir, "missing.md"), filepath.Join(dir, "out.csv"), nil, nil)
	assert.Error(t, err)
}

func TestDefaultPaths(t *testing.T) {
	p := pipeline.DefaultPaths()
	assert.Equal(t, "01_output.md", p.Markdown)
	assert.Equal(t, "01_output_debug.txt", p.Debug)
	assert.Equal(t, "02_output.csv", p.RowsCSV)
	assert.Equal(t, "03_output.csv", p.MatchedCSV)
	assert.Equal(t, "04_output.xlsx", p.Workbook)
}
