package segment

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/hrstools/codebook/model"
)

// HTMLSegmenter implements the exit-track grammar. Exit codebooks are
// HTML documents whose variable blocks live in tables: a row whose first
// cell is a variable-name token opens a block, and the rows that follow
// are its value-code table. Section headers appear either as heading
// elements or as single-cell rows.
type HTMLSegmenter struct{}

// NewExitHTML returns the grammar for exit-track codebook HTML files.
func NewExitHTML() *HTMLSegmenter {
	return &HTMLSegmenter{}
}

// Track returns the grammar's source track.
func (s *HTMLSegmenter) Track() model.Track {
	return model.TrackExit
}

// Segment parses the document tree and walks its headings and table rows
// in document order. Tag soup never fails the document; the tokenizer
// repairs what it can and anything unplaceable becomes an orphan.
func (s *HTMLSegmenter) Segment(content string) *Result {
	res := &Result{}

	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		res.Blocks = append(res.Blocks, Block{
			Kind:   KindMalformed,
			Line:   1,
			Reason: "unparseable HTML document",
		})
		res.Blocks = append(res.Blocks, Block{Kind: KindEndOfDocument, Line: 1})
		return res
	}

	w := &htmlWalker{res: res}
	w.walk(doc)
	w.flush()

	res.Blocks = append(res.Blocks, Block{Kind: KindEndOfDocument, Line: w.row})
	return res
}

// htmlWalker accumulates blocks while traversing the parsed tree. The row
// counter stands in for source line numbers, which the tokenizer does not
// preserve.
type htmlWalker struct {
	res  *Result
	open *Block
	row  int
}

func (w *htmlWalker) flush() {
	if w.open != nil {
		w.res.Blocks = append(w.res.Blocks, *w.open)
		w.open = nil
	}
}

func (w *htmlWalker) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "h1", "h2", "h3", "h4":
			w.heading(nodeText(n))
			return
		case "tr":
			w.tableRow(n)
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

// heading emits a section header when the heading text matches the
// section marker shape. Other headings (titles, release banners) are
// preamble and are skipped without becoming orphans.
func (w *htmlWalker) heading(text string) {
	m := sectionRe.FindStringSubmatch(text)
	if m == nil {
		return
	}
	w.flush()
	w.res.Blocks = append(w.res.Blocks, Block{
		Kind:  KindSectionHeader,
		Code:  strings.ToUpper(m[1]),
		Name:  strings.TrimSpace(m[2]),
		Level: ParseLevel(strings.TrimSpace(m[3])),
		Line:  w.row,
	})
}

func (w *htmlWalker) tableRow(tr *html.Node) {
	w.row++
	cells := rowCells(tr)
	if len(cells) == 0 {
		return
	}

	// A single-cell row carrying a section marker is a header row.
	if len(cells) == 1 {
		if m := sectionRe.FindStringSubmatch(cells[0]); m != nil {
			w.flush()
			w.res.Blocks = append(w.res.Blocks, Block{
				Kind:  KindSectionHeader,
				Code:  strings.ToUpper(m[1]),
				Name:  strings.TrimSpace(m[2]),
				Level: ParseLevel(strings.TrimSpace(m[3])),
				Line:  w.row,
			})
			return
		}
	}

	if len(cells) >= 2 && IsVarName(cells[0]) {
		w.flush()
		w.open = &Block{
			Kind:    KindVariable,
			VarName: cells[0],
			Rows:    [][]string{cells},
			Line:    w.row,
		}
		return
	}

	if w.open != nil {
		w.open.Rows = append(w.open.Rows, cells)
		return
	}

	w.res.Orphans = append(w.res.Orphans, Orphan{
		Line: w.row,
		Text: strings.Join(cells, " "),
	})
}

// rowCells extracts the trimmed text of each td/th cell, dropping rows of
// empty cells.
func rowCells(tr *html.Node) []string {
	var cells []string
	nonEmpty := false
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.Data != "td" && c.Data != "th" {
			continue
		}
		text := nodeText(c)
		if text != "" {
			nonEmpty = true
		}
		cells = append(cells, text)
	}
	if !nonEmpty {
		return nil
	}
	return cells
}

// nodeText collects the node's text content with runs of whitespace
// collapsed to single spaces.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
