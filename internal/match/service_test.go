package match_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projektfredrika/kirjailijat/internal/match"
	"github.com/projektfredrika/kirjailijat/internal/tabular"
	"github.com/projektfredrika/kirjailijat/internal/wikidata"
)

// fakeSearcher answers from a fixed name table and records the queries made.
type fakeSearcher struct {
	entities map[string]*wikidata.Entity
	err      error
	queries  []string
}

func (f *fakeSearcher) SearchPerson(_ context.Context, name string) (*wikidata.Entity, error) {
	f.queries = append(f.queries, name)
	if f.err != nil {
		return nil, f.err
	}
	return f.entities[name], nil
}

func TestRunMatchesByFullName(t *testing.T) {
	search := &fakeSearcher{entities: map[string]*wikidata.Entity{
		"Ida Aalberg": {QCode: "Q51148", Label: "Ida Aalberg", BirthDate: "1857-12-03T00:00:00Z"},
	}}
	svc := match.NewService(search, nil, 0, nil)

	rows := []tabular.Row{
		{Name: "Aalberg, Ida", FirstLast: "Ida Aalberg", DOB: "3.12.1857"},
	}
	out, err := svc.Run(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, "Q51148", out[0].WD)
	assert.Equal(t, "Ida Aalberg", out[0].WDFi)
	assert.Equal(t, "1857-12-03T00:00:00Z", out[0].WDDob)
	assert.Empty(t, rows[0].WD, "input rows are not mutated")
}

func TestRunFallsBackToShorterForms(t *testing.T) {
	search := &fakeSearcher{entities: map[string]*wikidata.Entity{
		"Juhani Aho": {QCode: "Q216849", Label: "Juhani Aho"},
	}}
	svc := match.NewService(search, nil, 0, nil)

	rows := []tabular.Row{
		{Name: "Aho, Juhani Henrik", FirstLast: "Juhani Henrik Aho"},
	}
	out, err := svc.Run(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, "Q216849", out[0].WD)
	assert.Equal(t, []string{"Juhani Henrik Aho", "Juhani Aho"}, search.queries,
		"the full name is tried before first+last")
}

func TestRunRejectsLabelMismatch(t *testing.T) {
	// A search for "Andersson" alone could return any Andersson; the label
	// must equal the queried form.
	search := &fakeSearcher{entities: map[string]*wikidata.Entity{
		"Erik Andersson": {QCode: "Q999", Label: "Erik Anderson"},
	}}
	svc := match.NewService(search, nil, 0, nil)

	out, err := svc.Run(context.Background(), []tabular.Row{
		{Name: "Andersson, Erik", FirstLast: "Erik Andersson"},
	})
	require.NoError(t, err)
	assert.Empty(t, out[0].WD)
}

func TestRunRejectsBirthYearMismatch(t *testing.T) {
	search := &fakeSearcher{entities: map[string]*wikidata.Entity{
		"Erik Andersson": {QCode: "Q999", Label: "Erik Andersson", BirthDate: "1923-01-01T00:00:00Z"},
	}}
	svc := match.NewService(search, nil, 0, nil)

	out, err := svc.Run(context.Background(), []tabular.Row{
		{Name: "Andersson, Erik", FirstLast: "Erik Andersson", DOB: "14.3.1850"},
	})
	require.NoError(t, err)
	assert.Empty(t, out[0].WD, "a contradicting birth year rejects the candidate")
}

func TestRunAcceptsWhenBirthYearAbsent(t *testing.T) {
	search := &fakeSearcher{entities: map[string]*wikidata.Entity{
		"Erik Andersson": {QCode: "Q999", Label: "Erik Andersson"},
	}}
	svc := match.NewService(search, nil, 0, nil)

	out, err := svc.Run(context.Background(), []tabular.Row{
		{Name: "Andersson, Erik", FirstLast: "Erik Andersson", DOB: "14.3.1850"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Q999", out[0].WD, "a candidate without a birth date is not contradicted")
}

func TestRunSkipsCrossReferences(t *testing.T) {
	search := &fakeSearcher{entities: map[string]*wikidata.Entity{
		"Juhani Brofeldt": {QCode: "Q216849", Label: "Juhani Brofeldt"},
	}}
	svc := match.NewService(search, nil, 0, nil)

	out, err := svc.Run(context.Background(), []tabular.Row{
		{Name: "Brofeldt, Juhani", FirstLast: "Juhani Brofeldt", KS: 1},
	})
	require.NoError(t, err)
	assert.Empty(t, out[0].WD)
	assert.Empty(t, search.queries, "cross-reference rows are never queried")
}

func TestRunSearchErrorDoesNotAbortBatch(t *testing.T) {
	search := &flakySearcher{
		failNames: map[string]bool{"Erik Andersson": true},
		entities: map[string]*wikidata.Entity{
			"Anna Virtanen": {QCode: "Q111", Label: "Anna Virtanen"},
		},
	}
	svc := match.NewService(search, nil, 0, nil)

	out, err := svc.Run(context.Background(), []tabular.Row{
		{Name: "Andersson, Erik", FirstLast: "Erik Andersson"},
		{Name: "Virtanen, Anna", FirstLast: "Anna Virtanen"},
	})
	require.NoError(t, err)
	assert.Empty(t, out[0].WD)
	assert.Equal(t, "Q111", out[1].WD, "later rows still resolve after a failed lookup")
}

type flakySearcher struct {
	failNames map[string]bool
	entities  map[string]*wikidata.Entity
}

func (f *flakySearcher) SearchPerson(_ context.Context, name string) (*wikidata.Entity, error) {
	if f.failNames[name] {
		return nil, errors.New("endpoint unavailable")
	}
	return f.entities[name], nil
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := match.NewService(&fakeSearcher{}, nil, 0, nil)
	_, err := svc.Run(ctx, []tabular.Row{{Name: "X", FirstLast: "X Y"}})
	assert.ErrorIs(t, err, context.Canceled)
}
