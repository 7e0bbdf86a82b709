package document_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projektfredrika/kirjailijat/internal/document"
)

func TestWriteMarkdown(t *testing.T) {
	doc := document.Document{
		Lines: []document.Line{
			{Text: "Aalberg, Ida (1857–1915)", Header: true, Page: 13},
			{Text: "näyttelijä", Page: 13},
			{Text: "", Page: 13},
			{Text: "1.1.1857 Janakkala.", Page: 13},
			{Text: "Toinen rivi.", Page: 14},
		},
		PageHeads: map[int]string{13: "SUOMEN KIRJAILIJAT"},
	}

	var buf strings.Builder
	require.NoError(t, document.WriteMarkdown(&buf, doc))

	want := "<!-- Page 13: SUOMEN KIRJAILIJAT -->\n" +
		"\n" +
		"## Aalberg, Ida (1857–1915)\n" +
		"näyttelijä\n" +
		"\n" +
		"1.1.1857 Janakkala.\n" +
		"\n" +
		"<!-- Page 14 -->\n" +
		"\n" +
		"Toinen rivi.\n"
	assert.Equal(t, want, buf.String())
}

func TestMarkdownRoundTrip(t *testing.T) {
	doc := document.Document{
		Lines: []document.Line{
			{Text: "Aalberg, Ida (1857–1915)", Header: true, Page: 13},
			{Text: "näyttelijä", Page: 13},
			{Text: "", Page: 13},
			{Text: "1.1.1857 Janakkala.", Page: 13},
			{Text: "Jatkuu seuraavalla sivulla", Page: 14},
			{Text: "", Page: 14},
			{Text: "Aho, Juhani (1861–1921)", Header: true, Page: 14},
			{Text: "kirjailija, ks. myös Brofeldt", Page: 14},
		},
		PageHeads: map[int]string{13: "SUOMEN KIRJAILIJAT", 14: "SUOMEN KIRJAILIJAT"},
	}

	var buf strings.Builder
	require.NoError(t, document.WriteMarkdown(&buf, doc))

	got, err := document.ReadMarkdown([]byte(buf.String()))
	require.NoError(t, err)

	assert.Equal(t, doc.Lines, got.Lines)
	assert.Equal(t, doc.PageHeads, got.PageHeads)
}

func TestReadMarkdownVerbatimBody(t *testing.T) {
	// Body lines that happen to look like markdown must survive untouched.
	src := "<!-- Page 5 -->\n" +
		"\n" +
		"## Kivi, Aleksis (1834–1872)\n" +
		"*Seitsemän veljestä* 1870\n" +
		"- runoja ja näytelmiä\n" +
		"1. painos loppuunmyyty\n"

	doc, err := document.ReadMarkdown([]byte(src))
	require.NoError(t, err)

	require.Len(t, doc.Lines, 4)
	assert.True(t, doc.Lines[0].Header)
	assert.Equal(t, "Kivi, Aleksis (1834–1872)", doc.Lines[0].Text)
	assert.Equal(t, "*Seitsemän veljestä* 1870", doc.Lines[1].Text)
	assert.Equal(t, "- runoja ja näytelmiä", doc.Lines[2].Text)
	assert.Equal(t, "1. painos loppuunmyyty", doc.Lines[3].Text)
	for _, ln := range doc.Lines {
		assert.Equal(t, 5, ln.Page)
	}
}

func TestReadMarkdownWithoutPageMarkers(t *testing.T) {
	src := "## Topelius, Zacharias (1818–1898)\nsatukirjailija\n"

	doc, err := document.ReadMarkdown([]byte(src))
	require.NoError(t, err)

	require.Len(t, doc.Lines, 2)
	assert.True(t, doc.Lines[0].Header)
	assert.Equal(t, 0, doc.Lines[0].Page)
	assert.Empty(t, doc.PageHeads)
}
