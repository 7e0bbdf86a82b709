// Command kirjailijat runs the dictionary digitization pipeline: PDF text
// extraction, record segmentation, Wikidata matching and Wikipedia stats
// enrichment. Each stage is its own subcommand; run chains all four.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/projektfredrika/kirjailijat/internal/common"
	"github.com/projektfredrika/kirjailijat/internal/enrich"
	"github.com/projektfredrika/kirjailijat/internal/extract"
	"github.com/projektfredrika/kirjailijat/internal/match"
	"github.com/projektfredrika/kirjailijat/internal/pipeline"
	"github.com/projektfredrika/kirjailijat/internal/profile"
	"github.com/projektfredrika/kirjailijat/internal/rules"
	"github.com/projektfredrika/kirjailijat/internal/tabular"
	"github.com/projektfredrika/kirjailijat/internal/wikidata"
	"github.com/projektfredrika/kirjailijat/internal/wikipedia"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		profilePath string
		verbose     bool
	)

	root := &cobra.Command{
		Use:           "kirjailijat",
		Short:         "Convert biographical dictionary PDFs into enriched tabular data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
	}
	root.PersistentFlags().StringVar(&profilePath, "profile", "profile.yaml", "publication profile YAML")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	paths := pipeline.DefaultPaths()

	root.AddCommand(
		newExtractCmd(&profilePath, paths),
		newTabulateCmd(&profilePath, paths),
		newMatchCmd(paths),
		newEnrichCmd(paths),
		newRunCmd(&profilePath, paths),
	)
	return root
}

func newExtractCmd(profilePath *string, defaults pipeline.Paths) *cobra.Command {
	var out, debug string
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the PDF text layer into a classified line document",
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := buildExtractor(*profilePath)
			if err != nil {
				return err
			}
			_, _, err = ex.Run(cmd.Context(), out, debug)
			return err
		},
	}
	cmd.Flags().StringVar(&out, "out", defaults.Markdown, "document artifact path")
	cmd.Flags().StringVar(&debug, "debug-out", defaults.Debug, "debug artifact path")
	return cmd
}

func newTabulateCmd(profilePath *string, defaults pipeline.Paths) *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "tabulate",
		Short: "Segment the document into records and write the rows CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			nameRepl, err := loadNameReplacements(*profilePath)
			if err != nil {
				return err
			}
			_, err = pipeline.Tabulate(in, out, nameRepl, slog.Default())
			return err
		},
	}
	cmd.Flags().StringVar(&in, "in", defaults.Markdown, "document artifact path")
	cmd.Flags().StringVar(&out, "out", defaults.RowsCSV, "rows CSV path")
	return cmd
}

func newMatchCmd(defaults pipeline.Paths) *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Attach Wikidata identifiers to rows by name search",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := common.LoadConfig()
			svc, journal, err := buildMatcher(cfg)
			if err != nil {
				return err
			}
			if journal != nil {
				defer func() { _ = journal.Close() }()
			}

			rows, err := tabular.ReadCSVFile(in)
			if err != nil {
				return err
			}
			matched, err := svc.Run(cmd.Context(), rows)
			if err != nil {
				return err
			}
			return tabular.WriteCSVFile(out, matched, true)
		},
	}
	cmd.Flags().StringVar(&in, "in", defaults.RowsCSV, "rows CSV path")
	cmd.Flags().StringVar(&out, "out", defaults.MatchedCSV, "matched CSV path")
	return cmd
}

func newEnrichCmd(defaults pipeline.Paths) *cobra.Command {
	var in, out string
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fetch Wikipedia stats for matched rows and write the workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := common.LoadConfig()
			svc := buildEnricher(cfg)

			rows, err := tabular.ReadCSVFile(in)
			if err != nil {
				return err
			}
			enriched, err := svc.Run(cmd.Context(), rows)
			if err != nil {
				return err
			}
			return enrich.WriteWorkbook(out, enriched, cfg.Lookup.Languages)
		},
	}
	cmd.Flags().StringVar(&in, "in", defaults.MatchedCSV, "matched CSV path")
	cmd.Flags().StringVar(&out, "out", defaults.Workbook, "workbook path")
	return cmd
}

func newRunCmd(profilePath *string, defaults pipeline.Paths) *cobra.Command {
	paths := defaults
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run all four stages in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := common.LoadConfig()

			ex, err := buildExtractor(*profilePath)
			if err != nil {
				return err
			}
			nameRepl, err := loadNameReplacements(*profilePath)
			if err != nil {
				return err
			}
			matcher, journal, err := buildMatcher(cfg)
			if err != nil {
				return err
			}
			if journal != nil {
				defer func() { _ = journal.Close() }()
			}
			enricher := buildEnricher(cfg)

			proc := pipeline.NewProcessor(ex, nameRepl, matcher, enricher, cfg.Lookup.Languages, slog.Default())
			return proc.Run(cmd.Context(), paths)
		},
	}
	cmd.Flags().StringVar(&paths.Markdown, "md", defaults.Markdown, "document artifact path")
	cmd.Flags().StringVar(&paths.Debug, "debug-out", defaults.Debug, "debug artifact path")
	cmd.Flags().StringVar(&paths.RowsCSV, "rows", defaults.RowsCSV, "rows CSV path")
	cmd.Flags().StringVar(&paths.MatchedCSV, "matched", defaults.MatchedCSV, "matched CSV path")
	cmd.Flags().StringVar(&paths.Workbook, "workbook", defaults.Workbook, "workbook path")
	return cmd
}

func buildExtractor(profilePath string) (*extract.Extractor, error) {
	prof, err := profile.Load(profilePath)
	if err != nil {
		return nil, err
	}
	set, err := rules.Load(rules.Paths{
		Replacements: prof.Rules.Replacements,
		Headers:      prof.Rules.Headers,
		NonHeaders:   prof.Rules.NonHeaders,
	}, slog.Default())
	if err != nil {
		return nil, err
	}
	return extract.NewExtractor(prof, set, slog.Default()), nil
}

func loadNameReplacements(profilePath string) (map[string]string, error) {
	prof, err := profile.Load(profilePath)
	if err != nil {
		return nil, err
	}
	return tabular.LoadNameReplacements(prof.Tabulate.NameReplacements)
}

func buildMatcher(cfg *common.Config) (*match.Service, *match.Journal, error) {
	wd := wikidata.NewClient(wikidata.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTP.Timeout,
	}, slog.Default())

	var journal *match.Journal
	if cfg.Lookup.JournalPath != "" {
		var err error
		journal, err = match.OpenJournal(cfg.Lookup.JournalPath)
		if err != nil {
			return nil, nil, err
		}
	}
	return match.NewService(wd, journal, cfg.Lookup.MatchDelay, slog.Default()), journal, nil
}

func buildEnricher(cfg *common.Config) *enrich.Service {
	wd := wikidata.NewClient(wikidata.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTP.Timeout,
	}, slog.Default())
	wp := wikipedia.NewClient(wikipedia.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.HTTP.Timeout,
	}, slog.Default())
	return enrich.NewService(wd, wp, cfg.Lookup.Languages, cfg.Lookup.StatsDelay, slog.Default())
}
