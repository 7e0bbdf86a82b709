package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Column order is part of the file contract between stages; it never changes
// within a schema version.
var baseColumns = []string{
	"name", "aka", "page_start", "page_end", "row_count", "chars_count",
	"ks", "firstlast", "dob", "birth", "death", "text",
}

var matchColumns = []string{"wd", "wd_fi", "wd_dob"}

// WriteCSV writes rows as UTF-8 delimited text with a header row. When
// withMatch is true the identifier columns from the match stage are included.
func WriteCSV(w io.Writer, rows []Row, withMatch bool) error {
	cw := csv.NewWriter(w)

	header := baseColumns
	if withMatch {
		header = append(append([]string{}, baseColumns...), matchColumns...)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		rec := []string{
			r.Name, r.Aka,
			itoa(r.PageStart), itoa(r.PageEnd),
			strconv.Itoa(r.RowCount), strconv.Itoa(r.CharsCount),
			strconv.Itoa(r.KS), r.FirstLast, r.DOB,
			itoa(r.Birth), itoa(r.Death), r.Text,
		}
		if withMatch {
			rec = append(rec, r.WD, r.WDFi, r.WDDob)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads rows from either the base or the matched schema; columns are
// resolved by the header row, so the two stages share one reader.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	idx := map[string]int{}
	for i, name := range records[0] {
		idx[name] = i
	}
	field := func(rec []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, Row{
			Name:       field(rec, "name"),
			Aka:        field(rec, "aka"),
			PageStart:  parseInt(field(rec, "page_start")),
			PageEnd:    parseInt(field(rec, "page_end")),
			RowCount:   parseInt(field(rec, "row_count")),
			CharsCount: parseInt(field(rec, "chars_count")),
			KS:         parseInt(field(rec, "ks")),
			FirstLast:  field(rec, "firstlast"),
			DOB:        field(rec, "dob"),
			Birth:      parseInt(field(rec, "birth")),
			Death:      parseInt(field(rec, "death")),
			Text:       field(rec, "text"),
			WD:         field(rec, "wd"),
			WDFi:       field(rec, "wd_fi"),
			WDDob:      field(rec, "wd_dob"),
		})
	}
	return rows, nil
}

// WriteCSVFile writes rows to a file path.
func WriteCSVFile(path string, rows []Row, withMatch bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if err := WriteCSV(f, rows, withMatch); err != nil {
		return err
	}
	return f.Close()
}

// ReadCSVFile reads rows from a file path.
func ReadCSVFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(f)
}

// itoa renders zero as an empty cell; absent years and pages stay blank in
// the output rather than reading as the year 0.
func itoa(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
