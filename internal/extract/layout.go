package extract

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/projektfredrika/kirjailijat/internal/profile"
)

// line is one assembled text line with the layout metrics the classifier and
// the debug artifact need.
type line struct {
	text string
	// height is the average glyph size of the line in points.
	height float64
	// x is the left edge of the first run.
	x float64
	// y is the baseline, PDF coordinates (origin bottom-left).
	y float64
	// distance is the vertical drop from the previous line of the same
	// column, or -1 for the first line of a column.
	distance float64
}

// pageLayout is the reconstructed content of one page: the running head from
// the header zone and the body lines of both columns in reading order.
type pageLayout struct {
	head    string
	columns [][]line
}

// layoutPage reconstructs a two-column dictionary page from positioned glyph
// runs. Runs are grouped into rows by baseline proximity, rows are ordered
// top to bottom, and the left column is read before the right one.
func layoutPage(texts []pdf.Text, pageW, pageH float64, cfg profile.Layout) pageLayout {
	var usable []pdf.Text
	for _, t := range texts {
		if strings.TrimSpace(t.S) != "" {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return pageLayout{}
	}

	// PDF origin is bottom-left, so the header zone sits above this Y.
	headFloor := pageH * (1 - cfg.HeaderZone)
	var head, body []pdf.Text
	for _, t := range usable {
		if t.Y >= headFloor {
			head = append(head, t)
		} else {
			body = append(body, t)
		}
	}

	var pl pageLayout
	pl.head = assembleRow(head, cfg)

	mid := pageW / 2
	var left, right []pdf.Text
	for _, t := range body {
		if t.X < mid {
			left = append(left, t)
		} else {
			right = append(right, t)
		}
	}
	for _, col := range [][]pdf.Text{left, right} {
		if lines := assembleColumn(col, cfg); len(lines) > 0 {
			pl.columns = append(pl.columns, lines)
		}
	}
	return pl
}

// assembleColumn groups a column's runs into lines and computes the vertical
// distance between consecutive lines.
func assembleColumn(texts []pdf.Text, cfg profile.Layout) []line {
	rows := groupRows(texts, cfg.RowTolerance)

	var lines []line
	prevY := -1.0
	for _, row := range rows {
		sort.Slice(row, func(i, j int) bool { return row[i].X < row[j].X })

		text := assembleRow(row, cfg)
		if text == "" {
			continue
		}

		var heightSum float64
		for _, t := range row {
			heightSum += t.FontSize
		}
		ln := line{
			text:     text,
			height:   heightSum / float64(len(row)),
			x:        row[0].X,
			y:        row[0].Y,
			distance: -1,
		}
		if prevY >= 0 {
			ln.distance = prevY - ln.y
		}
		prevY = ln.y
		lines = append(lines, ln)
	}
	return lines
}

// groupRows buckets runs by baseline within the row tolerance and returns the
// buckets top to bottom (descending Y).
func groupRows(texts []pdf.Text, tolerance float64) [][]pdf.Text {
	type bucket struct {
		yMin, yMax float64
		texts      []pdf.Text
	}
	var buckets []bucket
	for _, t := range texts {
		placed := false
		for i := range buckets {
			if t.Y >= buckets[i].yMin-tolerance && t.Y <= buckets[i].yMax+tolerance {
				buckets[i].texts = append(buckets[i].texts, t)
				if t.Y < buckets[i].yMin {
					buckets[i].yMin = t.Y
				}
				if t.Y > buckets[i].yMax {
					buckets[i].yMax = t.Y
				}
				placed = true
				break
			}
		}
		if !placed {
			buckets = append(buckets, bucket{yMin: t.Y, yMax: t.Y, texts: []pdf.Text{t}})
		}
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].yMax > buckets[j].yMax })

	rows := make([][]pdf.Text, len(buckets))
	for i, b := range buckets {
		rows[i] = b.texts
	}
	return rows
}

// assembleRow joins a row's runs left to right, inserting a space wherever the
// horizontal gap exceeds the word-gap fraction of the font size.
func assembleRow(row []pdf.Text, cfg profile.Layout) string {
	if len(row) == 0 {
		return ""
	}
	sorted := make([]pdf.Text, len(row))
	copy(sorted, row)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var b strings.Builder
	b.WriteString(sorted[0].S)
	prevEnd := sorted[0].X + sorted[0].W
	for _, t := range sorted[1:] {
		gap := t.X - prevEnd
		threshold := cfg.WordGap * t.FontSize
		if threshold <= 0 {
			threshold = 3.0
		}
		if gap > threshold && !strings.HasSuffix(b.String(), " ") && !strings.HasPrefix(t.S, " ") {
			b.WriteString(" ")
		}
		b.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	return strings.TrimSpace(b.String())
}
