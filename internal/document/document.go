// Package document holds the linearized representation of a publication and
// the segmentation of its lines into biographical records.
package document

// Line is one reconstructed text line of the publication.
type Line struct {
	// Text is the corrected line content. Empty text marks a blank
	// separator line.
	Text string
	// Header is true when the line opens a new biographical entry.
	Header bool
	// Page is the continuous 1-based page number the line was read from,
	// or 0 when unknown.
	Page int
}

// Blank reports whether the line is a separator.
func (l Line) Blank() bool { return l.Text == "" }

// Document is the ordered line sequence of one publication.
type Document struct {
	Lines []Line
	// PageHeads maps page numbers to the running-head text of that page,
	// carried into the markdown artifact for manual auditing.
	PageHeads map[int]string
}

// Append adds a line.
func (d *Document) Append(l Line) {
	d.Lines = append(d.Lines, l)
}

// HeaderCount returns the number of header-classified lines.
func (d *Document) HeaderCount() int {
	n := 0
	for _, l := range d.Lines {
		if l.Header {
			n++
		}
	}
	return n
}

// Record is one biographical entry: a header line and the body lines that
// follow it up to the next header or the end of the document.
type Record struct {
	Header    Line
	Body      []Line
	PageStart int
	PageEnd   int
}

// Lines returns the record's lines in document order, header first. Joining
// the records of a segmentation reproduces the source line sequence.
func (r Record) Lines() []Line {
	out := make([]Line, 0, 1+len(r.Body))
	out = append(out, r.Header)
	out = append(out, r.Body...)
	return out
}

// Segment splits a document into records. It is a pure fold over the line
// sequence: each header line closes the open record and starts the next one;
// lines before the first header belong to no record and are dropped. A
// document with no header lines yields no records.
func Segment(d Document) []Record {
	var records []Record
	var cur *Record

	for _, line := range d.Lines {
		if line.Header {
			if cur != nil {
				records = append(records, *cur)
			}
			cur = &Record{
				Header:    line,
				PageStart: line.Page,
				PageEnd:   line.Page,
			}
			continue
		}
		if cur == nil {
			continue
		}
		cur.Body = append(cur.Body, line)
		if line.Page > cur.PageEnd {
			cur.PageEnd = line.Page
		}
	}
	if cur != nil {
		records = append(records, *cur)
	}
	return records
}
