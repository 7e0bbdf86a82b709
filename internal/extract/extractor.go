// Package extract converts a publication PDF's text layer into a classified
// line document, the first stage of the pipeline.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/projektfredrika/kirjailijat/internal/document"
	"github.com/projektfredrika/kirjailijat/internal/profile"
	"github.com/projektfredrika/kirjailijat/internal/rules"
)

// Extractor reconstructs a Document from the publication PDF named by its
// profile.
type Extractor struct {
	prof   profile.Profile
	rules  *rules.Set
	logger *slog.Logger
}

func NewExtractor(prof profile.Profile, set *rules.Set, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if set == nil {
		set = rules.Empty()
	}
	return &Extractor{prof: prof, rules: set, logger: logger}
}

// Stats summarizes one extraction run.
type Stats struct {
	Pages        int
	SkippedPages int
	Lines        int
	Headers      int
}

// Run extracts the configured page range, classifies every line, and writes
// the markdown artifact plus the per-line debug artifact. Unreadable pages
// are skipped with a warning; only failures to open the PDF or write the
// artifacts abort the run.
func (e *Extractor) Run(ctx context.Context, mdPath, debugPath string) (document.Document, Stats, error) {
	f, r, err := pdf.Open(e.prof.PDF)
	if err != nil {
		return document.Document{}, Stats{}, fmt.Errorf("open pdf %s: %w", e.prof.PDF, err)
	}
	defer func() { _ = f.Close() }()

	first := e.prof.Pages.First
	if first < 1 {
		first = 1
	}
	last := e.prof.Pages.Last
	if last == 0 || last > r.NumPage() {
		last = r.NumPage()
	}

	doc := document.Document{PageHeads: map[int]string{}}
	var stats Stats
	var debug strings.Builder

	// Skipped pages are unnumbered extras (plates, illustrations); the
	// continuous counter tracks the printed page numbers across them.
	continuous := first

	for pageNum := first; pageNum <= last; pageNum++ {
		if err := ctx.Err(); err != nil {
			return document.Document{}, stats, err
		}
		if e.prof.Skipped(pageNum) {
			e.logger.Info("extract.page.skipped", "page", pageNum)
			stats.SkippedPages++
			continue
		}

		pl, ok := e.layoutOf(r, pageNum)
		if !ok {
			stats.SkippedPages++
			continuous++
			continue
		}
		stats.Pages++

		if pl.head != "" {
			doc.PageHeads[continuous] = pl.head
		}
		fmt.Fprintf(&debug, "PAGE %d (source %d)\n", continuous, pageNum)
		if pl.head != "" {
			fmt.Fprintf(&debug, "HEAD: %s\n", pl.head)
		}

		for _, column := range pl.columns {
			for _, ln := range column {
				ln.text = e.rules.Apply(ln.text)

				if ln.distance >= e.prof.Heuristic.BlankDistance {
					doc.Append(document.Line{Page: continuous})
					debug.WriteString("\n")
				}

				d := classify(ln, e.rules, e.prof.Heuristic)
				doc.Append(document.Line{
					Text:   ln.text,
					Header: d.header,
					Page:   continuous,
				})
				stats.Lines++
				if d.header {
					stats.Headers++
				}
				writeDebugLine(&debug, ln, d)
			}
		}
		debug.WriteString("\n")
		continuous++
	}

	if mdPath != "" {
		if err := writeMarkdownFile(mdPath, doc); err != nil {
			return doc, stats, err
		}
	}
	if debugPath != "" {
		if err := os.WriteFile(debugPath, []byte(debug.String()), 0o644); err != nil {
			return doc, stats, fmt.Errorf("write debug artifact: %w", err)
		}
	}

	e.rules.ReportUnused()
	e.logger.Info("extract.done",
		"pages", stats.Pages,
		"skipped_pages", stats.SkippedPages,
		"lines", stats.Lines,
		"headers", stats.Headers,
	)
	return doc, stats, nil
}

// layoutOf reads and lays out one page. Malformed pages make the underlying
// parser panic on some scans, so the recovery here turns that into the same
// skip-with-warning path as a null page.
func (e *Extractor) layoutOf(r *pdf.Reader, pageNum int) (pl pageLayout, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Warn("extract.page.unreadable", "page", pageNum, "error", fmt.Sprint(rec))
			ok = false
		}
	}()

	p := r.Page(pageNum)
	if p.V.IsNull() {
		e.logger.Warn("extract.page.empty", "page", pageNum)
		return pageLayout{}, false
	}

	w, h := pageSize(p)
	content := p.Content()
	if len(content.Text) == 0 {
		e.logger.Warn("extract.page.no_text", "page", pageNum)
		return pageLayout{}, false
	}
	return layoutPage(content.Text, w, h, e.prof.Layout), true
}

// pageSize reads the MediaBox, falling back to A4 when it is absent or
// malformed.
func pageSize(p pdf.Page) (w, h float64) {
	box := p.V.Key("MediaBox")
	if box.Kind() == pdf.Array && box.Len() == 4 {
		x0, y0 := numAt(box, 0), numAt(box, 1)
		x1, y1 := numAt(box, 2), numAt(box, 3)
		if x1 > x0 && y1 > y0 {
			return x1 - x0, y1 - y0
		}
	}
	return 595.0, 842.0
}

func numAt(arr pdf.Value, i int) float64 {
	v := arr.Index(i)
	switch v.Kind() {
	case pdf.Integer:
		return float64(v.Int64())
	case pdf.Real:
		return v.Float64()
	}
	return 0
}

func writeDebugLine(b *strings.Builder, ln line, d decision) {
	dist := "N/A"
	if ln.distance >= 0 {
		dist = fmt.Sprintf("%.1fpx", ln.distance)
	}
	mark := ""
	if d.header {
		mark = "## "
	}
	note := ""
	if d.forced {
		note = " [forced]"
	}
	fmt.Fprintf(b, "[height: %.1fpx, distance: %s, x: %.1fpx]%s %s%s\n",
		ln.height, dist, ln.x, note, mark, ln.text)
}

func writeMarkdownFile(path string, doc document.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if err := document.WriteMarkdown(f, doc); err != nil {
		return fmt.Errorf("write markdown artifact: %w", err)
	}
	return f.Close()
}
