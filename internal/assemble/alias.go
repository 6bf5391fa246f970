package assemble

import (
	"context"
	"fmt"
	"path"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/generator"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// DeriveAliases replaces the state's page list with the final set: every
// resolved page plus a locale variant per configured non-default locale.
// Derivation consumes the already-expanded trees, never the raw ones. An
// alias mapping to an output path that is already taken supersedes the
// earlier entry at that path; everything else is kept.
func DeriveAliases(ctx context.Context, st *site.State, gen generator.Generator, settings *config.Settings) error {
	final := make([]*site.Page, 0, len(st.PagesList))
	index := make(map[string]int, len(st.PagesList))
	add := func(p *site.Page) {
		if i, ok := index[p.Path]; ok {
			final[i] = p
			return
		}
		index[p.Path] = len(final)
		final = append(final, p)
	}

	for _, p := range st.PagesList {
		add(p)
	}
	for _, loc := range settings.Locales {
		if loc == settings.DefaultLocale {
			continue
		}
		for _, p := range st.PagesList {
			alias, err := localizePage(ctx, p, gen, loc)
			if err != nil {
				return err
			}
			add(alias)
		}
	}

	st.PagesList = final
	return nil
}

// localizePage clones a resolved page into its locale variant: the output
// path gains a locale prefix, root elements are tagged with lang and the
// generator refreshes materialized CMS content in that locale.
func localizePage(ctx context.Context, p *site.Page, gen generator.Generator, locale string) (*site.Page, error) {
	alias := p.Clone()
	alias.Locale = locale
	alias.Path = path.Join(locale, p.Path)
	for _, n := range alias.ChildNodes {
		setLang(n, locale)
		if err := gen.Localize(ctx, n, locale); err != nil {
			return nil, fmt.Errorf("localize page %s for %s: %w", p.Fname, locale, err)
		}
	}
	return alias, nil
}

func setLang(n *html.Node, locale string) {
	if n.Type != html.ElementNode {
		return
	}
	for i, a := range n.Attr {
		if a.Key == "lang" {
			n.Attr[i].Val = locale
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "lang", Val: locale})
}
