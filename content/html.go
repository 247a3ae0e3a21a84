package content

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attr is one attribute of a script element.
type Attr struct {
	Key, Val string
}

// Script is an executable script element found in a fragment.
type Script struct {
	Attrs []Attr
	Text  string
}

// Src returns the src attribute, if any.
func (s Script) Src() string {
	for _, a := range s.Attrs {
		if a.Key == "src" {
			return a.Val
		}
	}
	return ""
}

// Markup renders the script as a fresh element with the same attributes
// and inline text.
func (s Script) Markup() string {
	n := &html.Node{Type: html.ElementNode, Data: "script", DataAtom: atom.Script}
	for _, a := range s.Attrs {
		n.Attr = append(n.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	if s.Text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: s.Text})
	}
	var b strings.Builder
	html.Render(&b, n)
	return b.String()
}

// ExtractScripts returns the script elements of a fragment in document
// order.
func ExtractScripts(fragment string) ([]Script, error) {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return nil, err
	}

	var scripts []Script
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Script {
			s := Script{}
			for _, a := range n.Attr {
				s.Attrs = append(s.Attrs, Attr{Key: a.Key, Val: a.Val})
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					s.Text += c.Data
				}
			}
			scripts = append(scripts, s)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return scripts, nil
}

// blockElements end a line of plain text.
var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.H1: true, atom.H2: true,
	atom.H3: true, atom.H4: true, atom.Br: true, atom.Section: true,
	atom.Article: true, atom.Tr: true, atom.Pre: true, atom.Blockquote: true,
}

// PlainText returns the visible text of a fragment, one block per line.
// Script and style contents are dropped.
func PlainText(fragment string) string {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(strings.Join(strings.Fields(n.Data), " "))
			if strings.HasSuffix(n.Data, " ") {
				b.WriteByte(' ')
			}
			return
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.DataAtom] {
			b.WriteByte('\n')
		}
	}
	for _, n := range nodes {
		walk(n)
	}

	lines := strings.Split(b.String(), "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func parseFragment(fragment string) ([]*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return nil, fmt.Errorf("content: parsing fragment: %w", err)
	}
	return nodes, nil
}
