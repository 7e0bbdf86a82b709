package enrich_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projektfredrika/kirjailijat/internal/enrich"
	"github.com/projektfredrika/kirjailijat/internal/tabular"
)

type fakeLinker struct {
	links map[string]map[string]string
	err   error
}

func (f *fakeLinker) Sitelinks(_ context.Context, qcode string) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.links[qcode], nil
}

type fakeStats struct {
	lengths map[string]int
	views   map[string]int64
	lenErr  error
	windows [][2]string
}

func (f *fakeStats) ArticleLength(_ context.Context, lang, title string) (int, error) {
	if f.lenErr != nil {
		return 0, f.lenErr
	}
	return f.lengths[lang+"/"+title], nil
}

func (f *fakeStats) Pageviews(_ context.Context, lang, title, start, end string) (int64, error) {
	f.windows = append(f.windows, [2]string{start, end})
	return f.views[lang+"/"+title], nil
}

func TestEnrichRun(t *testing.T) {
	linker := &fakeLinker{links: map[string]map[string]string{
		"Q51148": {
			"fiwiki": "Ida Aalberg",
			"svwiki": "Ida Aalberg",
		},
	}}
	stats := &fakeStats{
		lengths: map[string]int{"fi/Ida Aalberg": 24731, "sv/Ida Aalberg": 8120},
		views:   map[string]int64{"fi/Ida Aalberg": 425, "sv/Ida Aalberg": 60},
	}
	svc := enrich.NewService(linker, stats, []string{"sv", "fi", "en"}, 0, nil)

	out, err := svc.Run(context.Background(), []tabular.Row{
		{Name: "Aalberg, Ida", WD: "Q51148"},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)

	er := out[0]
	assert.Equal(t, map[string]string{"sv": "Ida Aalberg", "fi": "Ida Aalberg"}, er.Titles,
		"a language without an article gets no title entry")
	assert.Equal(t, map[string]int{"sv": 8120, "fi": 24731}, er.Lengths)
	assert.Equal(t, map[string]int64{"sv": 60, "fi": 425}, er.Views)
}

func TestEnrichRunUnmatchedRow(t *testing.T) {
	svc := enrich.NewService(&fakeLinker{}, &fakeStats{}, nil, 0, nil)

	out, err := svc.Run(context.Background(), []tabular.Row{
		{Name: "Tuntematon, Tekijä"},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Empty(t, out[0].Titles)
	assert.Empty(t, out[0].Lengths)
	assert.Empty(t, out[0].Views)
}

func TestEnrichRunSitelinksErrorDegradesRow(t *testing.T) {
	linker := &fakeLinker{err: errors.New("endpoint unavailable")}
	svc := enrich.NewService(linker, &fakeStats{}, nil, 0, nil)

	out, err := svc.Run(context.Background(), []tabular.Row{
		{Name: "Aalberg, Ida", WD: "Q51148"},
		{Name: "Aho, Juhani", WD: "Q216849"},
	})
	require.NoError(t, err, "a failed sitelinks call degrades the row, not the batch")
	require.Len(t, out, 2)
	assert.Empty(t, out[0].Titles)
	assert.Empty(t, out[1].Titles)
}

func TestEnrichRunLengthErrorKeepsViews(t *testing.T) {
	linker := &fakeLinker{links: map[string]map[string]string{
		"Q51148": {"fiwiki": "Ida Aalberg"},
	}}
	stats := &fakeStats{
		lenErr: errors.New("endpoint unavailable"),
		views:  map[string]int64{"fi/Ida Aalberg": 425},
	}
	svc := enrich.NewService(linker, stats, []string{"fi"}, 0, nil)

	out, err := svc.Run(context.Background(), []tabular.Row{
		{Name: "Aalberg, Ida", WD: "Q51148"},
	})
	require.NoError(t, err)
	assert.Empty(t, out[0].Lengths)
	assert.Equal(t, map[string]int64{"fi": 425}, out[0].Views)
}

func TestEnrichRunViewWindow(t *testing.T) {
	linker := &fakeLinker{links: map[string]map[string]string{
		"Q51148": {"fiwiki": "Ida Aalberg"},
	}}
	stats := &fakeStats{}
	svc := enrich.NewService(linker, stats, []string{"fi"}, 0, nil)

	_, err := svc.Run(context.Background(), []tabular.Row{{Name: "A", WD: "Q51148"}})
	require.NoError(t, err)

	require.Len(t, stats.windows, 1)
	start, end := stats.windows[0][0], stats.windows[0][1]
	assert.Len(t, start, 8)
	assert.Len(t, end, 8)
	assert.Less(t, start, end, "the window runs from a year ago to today")
}

func TestEnrichRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := enrich.NewService(&fakeLinker{}, &fakeStats{}, nil, 0, nil)
	_, err := svc.Run(ctx, []tabular.Row{{Name: "A", WD: "Q1"}})
	assert.ErrorIs(t, err, context.Canceled)
}
