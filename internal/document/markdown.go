package document

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// The reconstructed document is persisted as markdown: header lines become
// level-2 headings, body lines stay verbatim, and a page marker comment
// precedes each page's content. The artifact is readable in any editor, which
// is the point: classification mistakes are found by humans scrolling it.

var pageMarkerRE = regexp.MustCompile(`^<!--\s*Page\s+(\d+)(?::\s*(.*?))?\s*-->`)

// WriteMarkdown serializes a document to its markdown artifact.
func WriteMarkdown(w io.Writer, d Document) error {
	bw := bufio.NewWriter(w)
	page := 0
	for i, ln := range d.Lines {
		if ln.Page > 0 && ln.Page != page {
			if i > 0 {
				fmt.Fprintln(bw)
			}
			if head := d.PageHeads[ln.Page]; head != "" {
				fmt.Fprintf(bw, "<!-- Page %d: %s -->\n\n", ln.Page, head)
			} else {
				fmt.Fprintf(bw, "<!-- Page %d -->\n\n", ln.Page)
			}
			page = ln.Page
		}
		switch {
		case ln.Blank():
			fmt.Fprintln(bw)
		case ln.Header:
			fmt.Fprintf(bw, "## %s\n", ln.Text)
		default:
			fmt.Fprintln(bw, ln.Text)
		}
	}
	return bw.Flush()
}

// ReadMarkdown reconstructs a document from its markdown artifact. Level-2
// headings and page marker comments are recognized through the parsed tree;
// every other source line is carried over verbatim so that no content is lost
// to markdown syntax in the biography text.
func ReadMarkdown(src []byte) (Document, error) {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	lineStarts := buildLineIndex(src)
	lineOf := func(off int) int {
		return sort.Search(len(lineStarts), func(i int) bool { return lineStarts[i] > off }) - 1
	}

	type marker struct {
		page int
		head string
	}
	headerAt := map[int]string{}
	markerAt := map[int]marker{}
	consumed := map[int]bool{}

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if node.Level == 2 && node.Lines().Len() > 0 {
				seg := node.Lines().At(0)
				headerAt[lineOf(seg.Start)] = strings.TrimSpace(string(seg.Value(src)))
			}
		case *ast.HTMLBlock:
			if node.Lines().Len() == 0 {
				return ast.WalkContinue, nil
			}
			first := node.Lines().At(0)
			m := pageMarkerRE.FindStringSubmatch(strings.TrimSpace(string(first.Value(src))))
			if m == nil {
				return ast.WalkContinue, nil
			}
			page := 0
			fmt.Sscanf(m[1], "%d", &page)
			markerAt[lineOf(first.Start)] = marker{page: page, head: strings.TrimSpace(m[2])}
			for i := 0; i < node.Lines().Len(); i++ {
				consumed[lineOf(node.Lines().At(i).Start)] = true
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return Document{}, fmt.Errorf("walk markdown: %w", err)
	}

	srcLines := splitSourceLines(src)

	// Blank lines directly around a page marker are layout the writer added,
	// not document content; skip them so read-after-write is stable.
	structural := map[int]bool{}
	for i := range markerAt {
		if i-1 >= 0 && strings.TrimSpace(srcLines[i-1]) == "" {
			structural[i-1] = true
		}
		if i+1 < len(srcLines) && strings.TrimSpace(srcLines[i+1]) == "" {
			structural[i+1] = true
		}
	}

	doc := Document{PageHeads: map[int]string{}}
	page := 0
	for i, raw := range srcLines {
		if mk, ok := markerAt[i]; ok {
			page = mk.page
			if mk.head != "" {
				doc.PageHeads[page] = mk.head
			}
			continue
		}
		if consumed[i] || structural[i] {
			continue
		}
		if h, ok := headerAt[i]; ok {
			doc.Append(Line{Text: h, Header: true, Page: page})
			continue
		}
		doc.Append(Line{Text: strings.TrimRight(raw, " \t"), Page: page})
	}
	return doc, nil
}

func buildLineIndex(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' && i+1 < len(src) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func splitSourceLines(src []byte) []string {
	lines := strings.Split(string(src), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
