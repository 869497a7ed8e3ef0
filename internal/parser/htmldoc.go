package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/scorigami/scorigami/internal/ledger"
)

// fieldAttr is the cell attribute holding the field identifier.
const fieldAttr = "data-stat"

// ParseHTML reads a ledger page and returns its records.
// A document without any table body is malformed.
func ParseHTML(r io.Reader) ([]ledger.ScoreRecord, error) {
	rows, err := HTMLRows(r)
	if err != nil {
		return nil, err
	}
	return Parse(rows), nil
}

// HTMLRows returns every row under a <tbody> in the document.
func HTMLRows(r io.Reader) ([]Row, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	var (
		rows   []Row
		bodies int
	)
	walk(doc, func(n *html.Node) bool {
		if n.DataAtom != atom.Tbody {
			return true
		}
		bodies++
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == atom.Tr && !isHeaderRow(c) {
				rows = append(rows, htmlRow{node: c})
			}
		}
		return false
	})
	if bodies == 0 {
		return nil, fmt.Errorf("%w: no table body found", ErrMalformedDocument)
	}
	return rows, nil
}

// htmlRow adapts a <tr> node to Row.
type htmlRow struct {
	node *html.Node
}

func (r htmlRow) Fields() []Field {
	var out []Field
	for c := r.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.DataAtom != atom.Td && c.DataAtom != atom.Th) {
			continue
		}
		tag := attr(c, fieldAttr)
		if tag == "" {
			continue
		}
		out = append(out, Field{Tag: tag, Text: text(c)})
	}
	return out
}

// isHeaderRow reports the header rows the source repeats inside long tables.
func isHeaderRow(n *html.Node) bool {
	for _, cls := range strings.Fields(attr(n, "class")) {
		if cls == "thead" {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// text returns the whitespace-normalised text content of n.
func text(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// walk visits n depth-first; visit returns false to skip n's children.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}
