package enrich

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook writes the enriched rows as an XLSX workbook: the row fields,
// the identifier columns, then per-language title, length and views. Column
// order is stable across runs. Q-code and title cells are hyperlinked so the
// manual review pass can jump straight to the sources.
func WriteWorkbook(path string, rows []EnrichedRow, langs []string) error {
	f := excelize.NewFile()
	const sheet = "Authors"

	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	headers := []string{
		"name", "aka", "page_start", "page_end", "row_count", "chars_count",
		"ks", "firstlast", "dob", "birth", "death",
		"wd", "wd_fi", "wd_dob",
	}
	for _, lang := range langs {
		headers = append(headers, "title_"+lang)
	}
	for _, lang := range langs {
		headers = append(headers, "length_"+lang)
	}
	for _, lang := range langs {
		headers = append(headers, "views_"+lang)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"366092"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	linkStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "0000FF", Underline: "single"},
	})
	if err != nil {
		return fmt.Errorf("link style: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheet, "A1", lastHeader, headerStyle)

	for rowIdx, er := range rows {
		rowNum := rowIdx + 2
		write := func(col int, v any) string {
			cell, _ := excelize.CoordinatesToCellName(col, rowNum)
			_ = f.SetCellValue(sheet, cell, v)
			return cell
		}

		col := 1
		write(col, er.Name)
		col++
		write(col, er.Aka)
		col++
		write(col, blankZero(er.PageStart))
		col++
		write(col, blankZero(er.PageEnd))
		col++
		write(col, er.RowCount)
		col++
		write(col, er.CharsCount)
		col++
		write(col, er.KS)
		col++
		write(col, er.FirstLast)
		col++
		write(col, er.DOB)
		col++
		write(col, blankZero(er.Birth))
		col++
		write(col, blankZero(er.Death))
		col++

		cell := write(col, er.WD)
		if er.WD != "" {
			_ = f.SetCellHyperLink(sheet, cell, "https://www.wikidata.org/wiki/"+er.WD, "External")
			_ = f.SetCellStyle(sheet, cell, cell, linkStyle)
		}
		col++
		write(col, er.WDFi)
		col++
		write(col, er.WDDob)
		col++

		for _, lang := range langs {
			title := er.Titles[lang]
			cell := write(col, title)
			if title != "" {
				_ = f.SetCellHyperLink(sheet, cell, articleURL(lang, title), "External")
				_ = f.SetCellStyle(sheet, cell, cell, linkStyle)
			}
			col++
		}
		for _, lang := range langs {
			if n, ok := er.Lengths[lang]; ok {
				write(col, n)
			}
			col++
		}
		for _, lang := range langs {
			if n, ok := er.Views[lang]; ok {
				write(col, n)
			}
			col++
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 28) // name
	_ = f.SetColWidth(sheet, "B", "B", 40) // aka
	_ = f.SetColWidth(sheet, "H", "H", 28) // firstlast
	_ = f.SetColWidth(sheet, "L", "L", 12) // wd

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return f.Close()
}

func articleURL(lang, title string) string {
	escaped := url.PathEscape(strings.ReplaceAll(title, " ", "_"))
	return fmt.Sprintf("https://%s.wikipedia.org/wiki/%s", lang, escaped)
}

// blankZero keeps absent years and pages out of the workbook instead of
// rendering them as 0.
func blankZero(n int) any {
	if n == 0 {
		return ""
	}
	return n
}
