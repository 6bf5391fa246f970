// Package assemble applies the component resolver to the page and component
// catalogs and derives alias page variants from the resolved set.
package assemble

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/generator"
	"git.home.luguber.info/inful/sitebuilder/internal/resolver"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// ResolveComponents re-resolves each component's own children once, so a
// component embedding another component carries the expanded markup in its
// catalog entry before any page is assembled.
func ResolveComponents(ctx context.Context, st *site.State, gen generator.Generator, settings *config.Settings) error {
	for _, c := range st.ComponentsList {
		resolved, err := resolver.Resolve(ctx, st, c.Content(), gen, settings)
		if err != nil {
			return fmt.Errorf("resolve component %s: %w", c.TagName, err)
		}
		if err := c.ReplaceContent(resolved); err != nil {
			return fmt.Errorf("serialize component %s: %w", c.TagName, err)
		}
	}
	return nil
}

// ResolvePages runs the component resolver twice over every page's children,
// feeding the first pass's output into the second. The second pass catches
// references introduced by the first substitution; anything nested deeper
// stays unresolved in the output.
func ResolvePages(ctx context.Context, st *site.State, gen generator.Generator, settings *config.Settings) error {
	for _, p := range st.PagesList {
		first, err := resolver.Resolve(ctx, st, p.ChildNodes, gen, settings)
		if err != nil {
			return fmt.Errorf("resolve page %s: %w", p.Fname, err)
		}
		second, err := resolver.Resolve(ctx, st, first, gen, settings)
		if err != nil {
			return fmt.Errorf("resolve page %s: %w", p.Fname, err)
		}
		p.ReplaceChildren(second)
	}
	return nil
}
