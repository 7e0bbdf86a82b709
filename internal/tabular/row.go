// Package tabular turns segmented records into the fixed-schema rows the
// enrichment stages consume, and reads/writes them as delimited text.
package tabular

import (
	"regexp"
	"strings"

	"github.com/projektfredrika/kirjailijat/internal/document"
)

// Row is the tabular form of one biographical record. The match stage fills
// WD, WDFi and WDDob; the stats columns live only in the final workbook.
type Row struct {
	Name       string
	Aka        string
	PageStart  int
	PageEnd    int
	RowCount   int
	CharsCount int
	// KS is 1 for cross-reference entries ("ks." = "see"), which point at
	// another entry instead of carrying their own biography.
	KS        int
	FirstLast string
	DOB       string
	Birth     int
	Death     int
	Text      string

	WD    string
	WDFi  string
	WDDob string
}

// headerRE matches "Surname, First (1850–1920)" with an en dash, em dash or
// hyphen, a missing death year, or a bare birth year.
var headerRE = regexp.MustCompile(`^(.*\S)\s*\((\d{4})\s*(?:[–—-]\s*(\d{4})?)?\)\s*$`)

var dobRE = regexp.MustCompile(`^(\d{1,2}\.\d{1,2}\.\d{4})`)

// ParseHeader extracts the structured fields from a header line. ok is false
// when the line does not fit the convention; callers then keep the raw line.
func ParseHeader(line string) (name string, birth, death int, ok bool) {
	m := headerRE.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", 0, 0, false
	}
	name = strings.TrimSpace(m[1])
	birth = atoi(m[2])
	if m[3] != "" {
		death = atoi(m[3])
	}
	return name, birth, death, true
}

// FromRecord derives a row from a record. nameRepl maps misparsed names (in
// either "Surname, First" or "First Surname" form) to corrected ones and may
// be nil. A header that fails to parse degrades to a row whose name holds the
// raw line and whose year fields stay zero; the record is never dropped.
func FromRecord(rec document.Record, nameRepl map[string]string) Row {
	raw := rec.Header.Text
	name, birth, death, ok := ParseHeader(raw)
	if !ok {
		name = strings.TrimSpace(raw)
	}
	name = applyNameReplacement(name, nameRepl)

	row := Row{
		Name:      name,
		PageStart: rec.PageStart,
		PageEnd:   rec.PageEnd,
		Birth:     birth,
		Death:     death,
		FirstLast: firstLast(name),
	}

	// The aka block is everything up to the first blank separator: alternate
	// names, pseudonyms, or a "ks." cross-reference to another entry.
	var akaLines []string
	i := 0
	for ; i < len(rec.Body); i++ {
		if rec.Body[i].Blank() {
			break
		}
		akaLines = append(akaLines, rec.Body[i].Text)
	}
	row.Aka = strings.Join(akaLines, "; ")
	if strings.HasPrefix(strings.ToLower(row.Aka), "ks.") {
		row.KS = 1
	}

	// The first non-blank line after the aka block opens with the date of
	// birth when the entry has one.
	for j := i; j < len(rec.Body); j++ {
		if rec.Body[j].Blank() {
			continue
		}
		if m := dobRE.FindStringSubmatch(rec.Body[j].Text); m != nil {
			row.DOB = m[1]
		}
		break
	}

	var textLines []string
	for _, ln := range rec.Body {
		if ln.Blank() {
			continue
		}
		row.RowCount++
		row.CharsCount += len([]rune(ln.Text))
		textLines = append(textLines, ln.Text)
	}
	row.Text = strings.Join(textLines, "\n")

	return row
}

// FromDocument segments a document and derives one row per record, preserving
// record order.
func FromDocument(d document.Document, nameRepl map[string]string) []Row {
	records := document.Segment(d)
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, FromRecord(rec, nameRepl))
	}
	return rows
}

func applyNameReplacement(name string, repl map[string]string) string {
	if len(repl) == 0 {
		return name
	}
	if r, ok := repl[name]; ok {
		return r
	}
	// Correction files sometimes key on the natural name order.
	if fl := firstLast(name); fl != name {
		if r, ok := repl[fl]; ok {
			return r
		}
	}
	return name
}

// firstLast converts "Surname, First" to "First Surname". Names without a
// comma are returned unchanged.
func firstLast(name string) string {
	surname, first, ok := strings.Cut(name, ",")
	if !ok {
		return name
	}
	return strings.TrimSpace(first) + " " + strings.TrimSpace(surname)
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
