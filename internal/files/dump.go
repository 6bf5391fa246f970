package files

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// outletTag is the element in a template shell that page content replaces.
const outletTag = "page-outlet"

// DumpPages writes every page in the state to the output directory, copies
// recorded assets and, when configured, emits a sitemap. Pages are wrapped
// in the template shell when one is set; the state itself is left untouched.
func (f *Files) DumpPages(st *site.State, baseDir string, settings *config.Settings) error {
	var tmpl []byte
	if settings.Template != "" {
		data, err := os.ReadFile(settings.Template)
		if err != nil {
			return fmt.Errorf("read template %s: %w", settings.Template, err)
		}
		tmpl = data
	}

	for _, p := range st.PagesList {
		target := filepath.Join(baseDir, filepath.FromSlash(p.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create page directory: %w", err)
		}
		markup, err := renderPage(p, tmpl, settings)
		if err != nil {
			return fmt.Errorf("render page %s: %w", p.Path, err)
		}
		if err := os.WriteFile(target, []byte(markup), 0o644); err != nil {
			return fmt.Errorf("write page %s: %w", p.Path, err)
		}
	}

	for _, a := range st.Out.Assets {
		if err := copyAsset(a, baseDir); err != nil {
			return err
		}
	}

	if settings.Sitemap && settings.SiteURL != "" {
		if err := writeSitemap(st, baseDir, settings); err != nil {
			return err
		}
	}
	return nil
}

// renderPage serializes one page, optionally wrapped in the template shell.
// Analytics injection needs a head element, so it only applies to wrapped
// output.
func renderPage(p *site.Page, tmpl []byte, settings *config.Settings) (string, error) {
	if tmpl == nil {
		return site.RenderNodes(p.ChildNodes)
	}

	doc, err := html.Parse(bytes.NewReader(tmpl))
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	outlet := findElement(doc, outletTag)
	if outlet == nil {
		return "", fmt.Errorf("template has no <%s> element", outletTag)
	}
	for _, n := range site.CloneNodes(p.ChildNodes) {
		outlet.Parent.InsertBefore(n, outlet)
	}
	outlet.Parent.RemoveChild(outlet)

	if p.Locale != "" {
		if root := findElement(doc, "html"); root != nil {
			setAttr(root, "lang", p.Locale)
		}
	}
	if settings.AnalyticsDomain != "" {
		if head := findElement(doc, "head"); head != nil {
			script := &html.Node{Type: html.ElementNode, Data: "script", Attr: []html.Attribute{
				{Key: "defer", Val: ""},
				{Key: "src", Val: "https://" + settings.AnalyticsDomain + "/script.js"},
			}}
			head.AppendChild(script)
		}
	}

	var sb strings.Builder
	if err := html.Render(&sb, doc); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func copyAsset(a site.Asset, baseDir string) error {
	target := filepath.Join(baseDir, filepath.FromSlash(a.Path))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create asset directory: %w", err)
	}

	src, err := os.Open(a.Fname)
	if err != nil {
		return fmt.Errorf("open asset %s: %w", a.Fname, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create asset %s: %w", target, err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy asset %s: %w", a.Path, err)
	}
	return nil
}

// writeSitemap emits sitemap.xml with one entry per emitted page. Index
// files collapse to their directory URL.
func writeSitemap(st *site.State, baseDir string, settings *config.Settings) error {
	base := strings.TrimSuffix(settings.SiteURL, "/")

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, p := range st.PagesList {
		loc := base + "/" + strings.TrimSuffix(p.Path, "index.html")
		sb.WriteString("  <url><loc>" + loc + "</loc></url>\n")
	}
	sb.WriteString("</urlset>\n")

	target := filepath.Join(baseDir, "sitemap.xml")
	if err := os.WriteFile(target, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write sitemap: %w", err)
	}
	return nil
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
