// Package pipeline chains the four batch stages for one invocation. Each
// stage still reads and writes its artifact files, so a chained run leaves
// the same audit trail as four manual ones.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/projektfredrika/kirjailijat/internal/document"
	"github.com/projektfredrika/kirjailijat/internal/enrich"
	"github.com/projektfredrika/kirjailijat/internal/extract"
	"github.com/projektfredrika/kirjailijat/internal/match"
	"github.com/projektfredrika/kirjailijat/internal/tabular"
)

// Paths names the artifact files the stages exchange.
type Paths struct {
	Markdown   string
	Debug      string
	RowsCSV    string
	MatchedCSV string
	Workbook   string
}

// DefaultPaths mirrors the numbered artifact names of the manual workflow.
func DefaultPaths() Paths {
	return Paths{
		Markdown:   "01_output.md",
		Debug:      "01_output_debug.txt",
		RowsCSV:    "02_output.csv",
		MatchedCSV: "03_output.csv",
		Workbook:   "04_output.xlsx",
	}
}

type Processor struct {
	logger    *slog.Logger
	extractor *extract.Extractor
	nameRepl  map[string]string
	matcher   *match.Service
	enricher  *enrich.Service
	langs     []string
}

func NewProcessor(
	extractor *extract.Extractor,
	nameRepl map[string]string,
	matcher *match.Service,
	enricher *enrich.Service,
	langs []string,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:    logger,
		extractor: extractor,
		nameRepl:  nameRepl,
		matcher:   matcher,
		enricher:  enricher,
		langs:     langs,
	}
}

// Run executes extract, tabulate, match and enrich in order.
func (p *Processor) Run(ctx context.Context, paths Paths) error {
	_, stats, err := p.extractor.Run(ctx, paths.Markdown, paths.Debug)
	if err != nil {
		return fmt.Errorf("extract stage: %w", err)
	}
	p.logger.Info("pipeline.extract.done", "headers", stats.Headers, "lines", stats.Lines)

	rows, err := Tabulate(paths.Markdown, paths.RowsCSV, p.nameRepl, p.logger)
	if err != nil {
		return fmt.Errorf("tabulate stage: %w", err)
	}
	p.logger.Info("pipeline.tabulate.done", "rows", rows)

	matched, err := p.runMatch(ctx, paths)
	if err != nil {
		return fmt.Errorf("match stage: %w", err)
	}
	p.logger.Info("pipeline.match.done", "rows", len(matched))

	enriched, err := p.enricher.Run(ctx, matched)
	if err != nil {
		return fmt.Errorf("enrich stage: %w", err)
	}
	if err := enrich.WriteWorkbook(paths.Workbook, enriched, p.langs); err != nil {
		return fmt.Errorf("enrich stage: %w", err)
	}
	p.logger.Info("pipeline.enrich.done", "rows", len(enriched), "workbook", paths.Workbook)
	return nil
}

func (p *Processor) runMatch(ctx context.Context, paths Paths) ([]tabular.Row, error) {
	rows, err := tabular.ReadCSVFile(paths.RowsCSV)
	if err != nil {
		return nil, err
	}
	matched, err := p.matcher.Run(ctx, rows)
	if err != nil {
		return nil, err
	}
	if err := tabular.WriteCSVFile(paths.MatchedCSV, matched, true); err != nil {
		return nil, err
	}
	return matched, nil
}

// Tabulate is the second stage as a standalone operation: it reconstructs the
// document from the markdown artifact, segments it into records and writes
// the rows CSV. It returns the number of rows written.
func Tabulate(mdPath, csvPath string, nameRepl map[string]string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	src, err := os.ReadFile(mdPath)
	if err != nil {
		return 0, fmt.Errorf("read document artifact: %w", err)
	}
	doc, err := document.ReadMarkdown(src)
	if err != nil {
		return 0, err
	}

	rows := tabular.FromDocument(doc, nameRepl)
	if err := tabular.WriteCSVFile(csvPath, rows, false); err != nil {
		return 0, err
	}

	crossRefs := 0
	for _, r := range rows {
		if r.KS == 1 {
			crossRefs++
		}
	}
	logger.Info("tabulate.done",
		"records", len(rows),
		"cross_references", crossRefs,
		"headers", doc.HeaderCount(),
	)
	return len(rows), nil
}
