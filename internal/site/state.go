// Package site defines the in-memory document model for one build pass: the
// component catalog, the page catalog and the shared scratch state threaded
// through the plugin hook pipeline. Document trees are x/net/html nodes.
package site

import (
	"golang.org/x/net/html"
)

// Asset describes an output file produced alongside the rendered pages.
type Asset struct {
	Fname string // source file path
	Path  string // output path relative to the output directory
}

// Out collects build artifacts that are not pages.
type Out struct {
	Assets []Asset
}

// State is the working build context for a single pass. It is created empty
// at the start of a bundle, may be replaced wholesale by plugin hooks (always
// via a deep copy of the hook's return value) and is discarded at the end of
// the pass. A rebuild starts from an empty State again.
type State struct {
	PagesList      []*Page
	ComponentsList []*Component
	Body           *html.Node
	GlobalProps    map[string]any
	Out            Out
}

// NewState returns an empty state for a fresh build pass.
func NewState() *State {
	return &State{
		Body:        &html.Node{Type: html.ElementNode, Data: "body"},
		GlobalProps: make(map[string]any),
	}
}

// ComponentByTag returns the component registered under the given tag name,
// or nil. Tag names are unique within ComponentsList and matched lowercase,
// which is how the HTML tokenizer emits element names.
func (s *State) ComponentByTag(tag string) *Component {
	for _, c := range s.ComponentsList {
		if c.TagName == tag {
			return c
		}
	}
	return nil
}

// Clone returns a deep structural copy of the state. This is the ownership
// boundary between plugin-held objects and the pipeline: mutating the
// original after cloning never affects the copy.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := &State{
		Body:        CloneNode(s.Body),
		GlobalProps: cloneProps(s.GlobalProps),
	}
	if s.PagesList != nil {
		c.PagesList = make([]*Page, len(s.PagesList))
		for i, p := range s.PagesList {
			c.PagesList[i] = p.Clone()
		}
	}
	if s.ComponentsList != nil {
		c.ComponentsList = make([]*Component, len(s.ComponentsList))
		for i, cm := range s.ComponentsList {
			c.ComponentsList[i] = cm.Clone()
		}
	}
	c.Out.Assets = append([]Asset(nil), s.Out.Assets...)
	return c
}

// cloneProps deep-copies a property map. Nested maps and slices are copied
// recursively; scalar and opaque values are copied by assignment.
func cloneProps(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneProps(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case *html.Node:
		return CloneNode(t)
	default:
		return v
	}
}
