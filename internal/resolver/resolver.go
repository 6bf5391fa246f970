// Package resolver expands component references inside document node trees.
// A single pass replaces every element whose tag name matches a catalogued
// component with a structural copy of that component's content; references
// carried inside the inserted content surface on the next pass. Page
// assembly applies two passes; references nested deeper than that are
// emitted verbatim rather than raised as errors.
package resolver

import (
	"context"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/generator"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// Resolve walks a node sequence and substitutes component references with a
// structural copy of their markup. It is pure with respect to its input: the
// input nodes are never mutated and a freshly built sequence is returned.
// Sibling order mirrors the input; a component expanding to several
// top-level nodes contributes them in source order in place of the reference
// element. Non-matching nodes pass through structurally unchanged but are
// still traversed, since their children may reference components. The
// generator is consulted to materialize CMS-sourced content before matching.
func Resolve(ctx context.Context, st *site.State, nodes []*html.Node, gen generator.Generator, settings *config.Settings) ([]*html.Node, error) {
	return resolveOwned(ctx, st, site.CloneNodes(nodes), gen, settings)
}

// resolveOwned resolves nodes the caller owns; they are consumed and must
// not be used afterwards.
func resolveOwned(ctx context.Context, st *site.State, owned []*html.Node, gen generator.Generator, settings *config.Settings) ([]*html.Node, error) {
	out := make([]*html.Node, 0, len(owned))
	for _, n := range owned {
		expanded, err := resolveNode(ctx, st, n, gen, settings)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

func resolveNode(ctx context.Context, st *site.State, n *html.Node, gen generator.Generator, settings *config.Settings) ([]*html.Node, error) {
	if err := gen.Materialize(ctx, n, ""); err != nil {
		return nil, err
	}

	if n.Type == html.ElementNode {
		if c := st.ComponentByTag(n.Data); c != nil {
			// The reference element is dropped entirely and replaced by the
			// component's content. Inserted content is not re-matched here;
			// one pass expands exactly one level of nesting.
			return c.CloneContent(), nil
		}
	}

	kids := site.DetachChildren(n)
	resolved, err := resolveOwned(ctx, st, kids, gen, settings)
	if err != nil {
		return nil, err
	}
	site.AppendChildren(n, resolved)
	return []*html.Node{n}, nil
}
