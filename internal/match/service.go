// Package match is the third pipeline stage: it attaches Wikidata identifiers
// to rows by name search.
package match

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/projektfredrika/kirjailijat/internal/tabular"
	"github.com/projektfredrika/kirjailijat/internal/wikidata"
)

// Searcher is the knowledge-base boundary the stage depends on.
type Searcher interface {
	SearchPerson(ctx context.Context, name string) (*wikidata.Entity, error)
}

type Service struct {
	search  Searcher
	journal *Journal
	delay   time.Duration
	logger  *slog.Logger
}

// NewService builds the stage. journal may be nil, in which case runs are not
// resumable.
func NewService(search Searcher, journal *Journal, delay time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{search: search, journal: journal, delay: delay, logger: logger}
}

// Run queries every eligible row sequentially and returns the rows with the
// identifier columns filled where a confident match was found. Lookup and
// network failures leave the row's identifier empty and never abort the
// batch; only context cancellation stops the run.
func (s *Service) Run(ctx context.Context, rows []tabular.Row) ([]tabular.Row, error) {
	out := make([]tabular.Row, len(rows))
	copy(out, rows)

	matched := 0
	for i := range out {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		row := &out[i]

		// Cross-reference entries point at another entry's subject; looking
		// them up would only produce duplicate identifiers.
		if row.KS == 1 {
			s.logger.Debug("match.row.cross_reference", "row", i+1, "name", row.Name)
			continue
		}
		name := row.FirstLast
		if name == "" {
			name = row.Name
		}
		if name == "" {
			continue
		}

		if s.journal != nil {
			if o, ok, err := s.journal.Lookup(i, name); err != nil {
				s.logger.Warn("match.journal.error", "row", i+1, "error", err)
			} else if ok && o.Resolved {
				row.WD, row.WDFi, row.WDDob = o.QCode, o.Label, o.DOB
				matched++
				continue
			}
		}

		ent := s.lookup(ctx, i+1, name, row.DOB)
		if ent != nil {
			row.WD, row.WDFi, row.WDDob = ent.QCode, ent.Label, ent.BirthDate
			matched++
			s.logger.Info("match.row.found", "row", i+1, "name", name, "qcode", ent.QCode)
		} else {
			s.logger.Info("match.row.not_found", "row", i+1, "name", name)
		}

		if s.journal != nil {
			o := Outcome{Resolved: ent != nil}
			if ent != nil {
				o.QCode, o.Label, o.DOB = ent.QCode, ent.Label, ent.BirthDate
			}
			if err := s.journal.Record(i, name, o); err != nil {
				s.logger.Warn("match.journal.error", "row", i+1, "error", err)
			}
		}

		if s.delay > 0 && i < len(out)-1 {
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}

	s.logger.Info("match.done", "rows", len(out), "matched", matched)
	return out, nil
}

// lookup tries progressively shorter name forms: the full name, then first
// and last word for names with a middle name, then the last word alone. A
// candidate is accepted only when its label equals the queried form after
// normalization and its birth year does not contradict the row's.
func (s *Service) lookup(ctx context.Context, rowNum int, name, dob string) *wikidata.Entity {
	for _, form := range nameForms(name) {
		ent, err := s.search.SearchPerson(ctx, form)
		if err != nil {
			s.logger.Warn("match.search.error", "row", rowNum, "name", form, "error", err)
			return nil
		}
		if ent == nil {
			continue
		}
		if !wikidata.LabelMatches(form, ent.Label) {
			s.logger.Debug("match.candidate.label_mismatch",
				"row", rowNum, "query", form, "label", ent.Label)
			continue
		}
		if !birthYearCompatible(dob, ent.BirthDate) {
			s.logger.Info("match.candidate.birth_year_mismatch",
				"row", rowNum, "name", form, "dob", dob, "wd_dob", ent.BirthDate)
			continue
		}
		return ent
	}
	return nil
}

func nameForms(name string) []string {
	forms := []string{name}
	words := strings.Fields(name)
	if len(words) > 2 {
		forms = append(forms, words[0]+" "+words[len(words)-1])
	}
	if len(words) > 1 {
		forms = append(forms, words[len(words)-1])
	}
	return forms
}

var yearRE = regexp.MustCompile(`\b(\d{4})\b`)

// birthYearCompatible compares the row's d.m.yyyy date of birth with the
// candidate's date. When either side lacks a year the check passes: absence
// of evidence is not a contradiction.
func birthYearCompatible(dob, wdDate string) bool {
	a := yearRE.FindString(dob)
	b := yearRE.FindString(wdDate)
	if a == "" || b == "" {
		return true
	}
	return a == b
}
