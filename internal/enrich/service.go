// Package enrich is the final pipeline stage: it fetches Wikipedia article
// size and pageview signals for matched rows and writes the result workbook.
package enrich

import (
	"context"
	"log/slog"
	"time"

	"github.com/projektfredrika/kirjailijat/internal/tabular"
)

// Linker resolves an entity identifier to Wikipedia article titles by site.
type Linker interface {
	Sitelinks(ctx context.Context, qcode string) (map[string]string, error)
}

// StatsClient fetches per-article signals from the encyclopedia.
type StatsClient interface {
	ArticleLength(ctx context.Context, lang, title string) (int, error)
	Pageviews(ctx context.Context, lang, title, start, end string) (int64, error)
}

// EnrichedRow is a matched row plus the per-language stats columns.
type EnrichedRow struct {
	tabular.Row
	Titles  map[string]string
	Lengths map[string]int
	Views   map[string]int64
}

type Service struct {
	linker Linker
	stats  StatsClient
	langs  []string
	delay  time.Duration
	now    func() time.Time
	logger *slog.Logger
}

func NewService(linker Linker, stats StatsClient, langs []string, delay time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if len(langs) == 0 {
		langs = []string{"sv", "fi", "en"}
	}
	return &Service{
		linker: linker,
		stats:  stats,
		langs:  langs,
		delay:  delay,
		now:    time.Now,
		logger: logger,
	}
}

// Run fetches stats for every row with an identifier over the trailing
// 12-month window. Rows without an identifier, entities without articles and
// failed requests all produce empty stats for that row; the batch always runs
// to completion unless the context is cancelled.
func (s *Service) Run(ctx context.Context, rows []tabular.Row) ([]EnrichedRow, error) {
	start, end := viewWindow(s.now())

	out := make([]EnrichedRow, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		er := EnrichedRow{
			Row:     row,
			Titles:  map[string]string{},
			Lengths: map[string]int{},
			Views:   map[string]int64{},
		}
		if row.WD == "" {
			out = append(out, er)
			continue
		}

		links, err := s.linker.Sitelinks(ctx, row.WD)
		if err != nil {
			s.logger.Warn("enrich.sitelinks.error", "row", i+1, "qcode", row.WD, "error", err)
			out = append(out, er)
			continue
		}

		for _, lang := range s.langs {
			title := links[lang+"wiki"]
			if title == "" {
				continue
			}
			er.Titles[lang] = title

			length, err := s.stats.ArticleLength(ctx, lang, title)
			if err != nil {
				s.logger.Warn("enrich.length.error",
					"row", i+1, "lang", lang, "title", title, "error", err)
			} else {
				er.Lengths[lang] = length
			}

			views, err := s.stats.Pageviews(ctx, lang, title, start, end)
			if err != nil {
				s.logger.Warn("enrich.views.error",
					"row", i+1, "lang", lang, "title", title, "error", err)
			} else {
				er.Views[lang] = views
			}

			if s.delay > 0 {
				select {
				case <-ctx.Done():
					return out, ctx.Err()
				case <-time.After(s.delay):
				}
			}
		}

		s.logger.Info("enrich.row.done", "row", i+1, "qcode", row.WD, "articles", len(er.Titles))
		out = append(out, er)
	}

	s.logger.Info("enrich.done", "rows", len(out))
	return out, nil
}

// viewWindow is the trailing 365 days in the YYYYMMDD form the metrics API
// takes.
func viewWindow(now time.Time) (string, string) {
	return now.AddDate(0, 0, -365).Format("20060102"), now.Format("20060102")
}
