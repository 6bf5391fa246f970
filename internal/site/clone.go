package site

import (
	"strings"

	"golang.org/x/net/html"
)

// CloneNode returns a detached deep copy of the node and its subtree.
// x/net/html provides no clone primitive, so the copy is built by hand;
// parent and sibling links of the returned root are nil.
func CloneNode(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for k := n.FirstChild; k != nil; k = k.NextSibling {
		c.AppendChild(CloneNode(k))
	}
	return c
}

// CloneNodes deep-copies a node sequence, preserving order.
func CloneNodes(nodes []*html.Node) []*html.Node {
	if nodes == nil {
		return nil
	}
	out := make([]*html.Node, len(nodes))
	for i, n := range nodes {
		out[i] = CloneNode(n)
	}
	return out
}

// DetachChildren removes and returns a node's children in document order.
func DetachChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for n.FirstChild != nil {
		c := n.FirstChild
		n.RemoveChild(c)
		out = append(out, c)
	}
	return out
}

// AppendChildren attaches the given nodes as the node's trailing children.
// Each node must be detached.
func AppendChildren(n *html.Node, kids []*html.Node) {
	for _, k := range kids {
		n.AppendChild(k)
	}
}

// RenderNodes serializes a node sequence to markup.
func RenderNodes(nodes []*html.Node) (string, error) {
	var sb strings.Builder
	for _, n := range nodes {
		if err := html.Render(&sb, n); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func childList(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}
