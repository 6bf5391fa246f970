package site

import (
	"golang.org/x/net/html"
)

// Page is a top-level document destined for one output file. Before alias
// derivation pages map one-to-one onto source files; alias derivation may add
// locale or route variants of a resolved page.
type Page struct {
	Fname      string // source file path
	Path       string // output path relative to the output directory
	Locale     string // BCP 47 tag for locale variants, empty for the default
	ChildNodes []*html.Node
}

// ReplaceChildren swaps the page's node list. Resolver passes replace the
// sequence rather than mutating it in place.
func (p *Page) ReplaceChildren(nodes []*html.Node) {
	p.ChildNodes = nodes
}

// Clone returns a deep copy of the page including its node trees.
func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	return &Page{
		Fname:      p.Fname,
		Path:       p.Path,
		Locale:     p.Locale,
		ChildNodes: CloneNodes(p.ChildNodes),
	}
}
