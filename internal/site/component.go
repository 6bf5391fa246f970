package site

import (
	"golang.org/x/net/html"
)

// Component is a reusable named markup fragment. Other documents embed it by
// using its TagName as a custom element; the resolver replaces such elements
// with a structural copy of the component's content.
type Component struct {
	Fname   string     // source file path
	TagName string     // custom-element-style reference key, unique per state
	RawData string     // serialized markup after resolution
	Node    *html.Node // container owning the component's content nodes
	Props   map[string]any
}

// NewComponent wraps the given content nodes in a fresh container. The
// component owns the container and may replace it wholesale on each
// resolution pass.
func NewComponent(fname, tagName string, content []*html.Node) *Component {
	c := &Component{
		Fname:   fname,
		TagName: tagName,
		Node:    newContainer(),
		Props:   make(map[string]any),
	}
	for _, n := range content {
		c.Node.AppendChild(n)
	}
	return c
}

// Content returns the component's content nodes. Callers must not mutate the
// returned nodes; use CloneContent for an owned copy.
func (c *Component) Content() []*html.Node {
	return childList(c.Node)
}

// CloneContent returns detached deep copies of the component's content nodes,
// ready to be inserted into a host tree.
func (c *Component) CloneContent() []*html.Node {
	return CloneNodes(childList(c.Node))
}

// ReplaceContent swaps the component's content for the given nodes and
// re-serializes RawData.
func (c *Component) ReplaceContent(content []*html.Node) error {
	container := newContainer()
	for _, n := range content {
		container.AppendChild(n)
	}
	raw, err := RenderNodes(childList(container))
	if err != nil {
		return err
	}
	c.Node = container
	c.RawData = raw
	return nil
}

// Clone returns a deep copy of the component.
func (c *Component) Clone() *Component {
	if c == nil {
		return nil
	}
	return &Component{
		Fname:   c.Fname,
		TagName: c.TagName,
		RawData: c.RawData,
		Node:    CloneNode(c.Node),
		Props:   cloneProps(c.Props),
	}
}

func newContainer() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "template"}
}
