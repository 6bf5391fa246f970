// Package generator materializes dynamic CMS content into document nodes
// during component resolution. Elements carrying a data-cms attribute have
// their content fetched from the configured API domain and inlined before
// component matching proceeds.
package generator

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// AttrCMS marks an element whose content is sourced from the CMS. Its value
// is the content path below the API domain.
const AttrCMS = "data-cms"

// AttrCMSSource records the content path on an element after its content has
// been materialized. Alias derivation uses it to fetch localized variants of
// the same content.
const AttrCMSSource = "data-cms-source"

// Generator materializes dynamic content embedded in a node. Implementations
// mutate the given subtree in place; a non-empty locale requests the
// localized variant of the content. Failures propagate as node-resolution
// failures.
type Generator interface {
	// Materialize inlines CMS content into every pending data-cms element in
	// the subtree rooted at n.
	Materialize(ctx context.Context, n *html.Node, locale string) error

	// Localize refreshes already-materialized elements in the subtree with
	// the locale's variant of their content. Used during alias derivation on
	// resolved page trees.
	Localize(ctx context.Context, n *html.Node, locale string) error
}

// New returns the CMS-backed generator when an API domain is configured and
// a no-op generator otherwise.
func New(settings *config.Settings) Generator {
	if settings.APIDomain == "" {
		return Noop{}
	}
	return &CMS{
		authKey:   settings.AuthKey,
		apiDomain: strings.TrimSuffix(settings.APIDomain, "/"),
		client:    &http.Client{Timeout: 30 * time.Second},
		cache:     make(map[string][]*html.Node),
	}
}

// Noop is the generator used when no CMS is configured; it leaves every node
// untouched.
type Noop struct{}

func (Noop) Materialize(ctx context.Context, n *html.Node, locale string) error { return nil }

func (Noop) Localize(ctx context.Context, n *html.Node, locale string) error { return nil }

// CMS fetches content over HTTP using the configured auth key. Responses are
// cached per content path and locale for the lifetime of one build pass.
type CMS struct {
	authKey   string
	apiDomain string
	client    *http.Client
	cache     map[string][]*html.Node
}

// Materialize walks the subtree rooted at n and inlines CMS content into
// every element carrying a data-cms attribute. The attribute is rewritten to
// data-cms-source so repeated passes leave materialized elements unchanged
// while localization can still find them.
func (g *CMS) Materialize(ctx context.Context, n *html.Node, locale string) error {
	return g.visit(ctx, n, locale, AttrCMS)
}

// Localize refreshes content of elements materialized earlier, fetching the
// locale's variant by the recorded source path.
func (g *CMS) Localize(ctx context.Context, n *html.Node, locale string) error {
	return g.visit(ctx, n, locale, AttrCMSSource)
}

func (g *CMS) visit(ctx context.Context, n *html.Node, locale, attrKey string) error {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode {
		if path, ok := attrValue(n, attrKey); ok {
			content, err := g.fetch(ctx, path, locale)
			if err != nil {
				return fmt.Errorf("materialize %s: %w", path, err)
			}
			_ = site.DetachChildren(n)
			site.AppendChildren(n, site.CloneNodes(content))
			if attrKey == AttrCMS {
				removeAttr(n, AttrCMS)
				n.Attr = append(n.Attr, html.Attribute{Key: AttrCMSSource, Val: path})
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := g.visit(ctx, c, locale, attrKey); err != nil {
			return err
		}
	}
	return nil
}

func (g *CMS) fetch(ctx context.Context, path, locale string) ([]*html.Node, error) {
	key := path + "\x00" + locale
	if nodes, ok := g.cache[key]; ok {
		return nodes, nil
	}

	url := g.apiDomain + "/" + strings.TrimPrefix(path, "/")
	if locale != "" {
		url += "?locale=" + locale
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if g.authKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.authKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cms responded with status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	nodes, err := site.ParseFragment(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse cms fragment: %w", err)
	}
	g.cache[key] = nodes
	return nodes, nil
}

func attrValue(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key && a.Val != "" {
			return a.Val, true
		}
	}
	return "", false
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}
