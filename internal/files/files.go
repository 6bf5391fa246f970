// Package files is the file and directory collaborator of the build
// pipeline: it parses component and page sources into the document model and
// writes the resolved site to the output directory. Parse failures here are
// the build's only fatal condition.
package files

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// Files implements the file collaborator. It is stateless; one value can
// serve any number of build passes.
type Files struct{}

// New returns the file collaborator.
func New() *Files { return &Files{} }

// CreateDir creates the configured output directory.
func (f *Files) CreateDir(settings *config.Settings) error {
	if err := os.MkdirAll(settings.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

// LoadFile loads the first file matching the glob pattern and decodes it as
// YAML or JSON by extension. Returns nil without error when nothing matches.
func (f *Files) LoadFile(glob string) (map[string]any, error) {
	matches, err := filepath.Glob(glob)
	if err != nil {
		return nil, fmt.Errorf("bad glob %q: %w", glob, err)
	}
	if len(matches) == 0 {
		return nil, nil
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", matches[0], err)
	}

	out := make(map[string]any)
	switch strings.ToLower(filepath.Ext(matches[0])) {
	case ".json":
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", matches[0], err)
		}
	default:
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("decode %s: %w", matches[0], err)
		}
	}
	return out, nil
}

// ParseComponents walks a components directory and appends every .html file
// to the state's component catalog. The file base name (lowercased, without
// extension) becomes the component's tag name; duplicate tag names across
// directories are a fatal parse error since the catalog key must be unique.
func (f *Files) ParseComponents(st *site.State, dir string, settings *config.Settings) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}

		tag := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		if existing := st.ComponentByTag(tag); existing != nil {
			return fmt.Errorf("duplicate component tag %q (%s and %s)", tag, existing.Fname, path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read component %s: %w", path, err)
		}
		nodes, err := site.ParseFragment(string(data))
		if err != nil {
			return fmt.Errorf("parse component %s: %w", path, err)
		}

		c := site.NewComponent(path, tag, nodes)
		c.RawData = string(data)
		st.ComponentsList = append(st.ComponentsList, c)
		slog.Debug("parsed component", logfields.Component(tag), logfields.Dir(dir))
		return nil
	})
	if err != nil {
		return fmt.Errorf("parse components in %s: %w", dir, err)
	}
	return nil
}

// ParsePages walks a source directory and appends every matching page file
// to the state's page catalog. Files matching the entry pattern are parsed
// as HTML fragments; .md files are rendered through goldmark first. Anything
// else is recorded as an asset to be copied verbatim at dump time.
func (f *Files) ParsePages(st *site.State, dir string, settings *config.Settings) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		base := filepath.Base(path)
		isEntry, err := filepath.Match(settings.Entry, base)
		if err != nil {
			return fmt.Errorf("bad entry pattern %q: %w", settings.Entry, err)
		}
		isMarkdown := strings.EqualFold(filepath.Ext(path), ".md")

		if !isEntry && !isMarkdown {
			st.Out.Assets = append(st.Out.Assets, site.Asset{Fname: path, Path: rel})
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read page %s: %w", path, err)
		}

		markup := string(data)
		outPath := rel
		if isMarkdown {
			var sb strings.Builder
			if err := goldmark.Convert(data, &sb); err != nil {
				return fmt.Errorf("render markdown %s: %w", path, err)
			}
			markup = sb.String()
			outPath = strings.TrimSuffix(rel, filepath.Ext(rel)) + ".html"
		}

		nodes, err := site.ParseFragment(markup)
		if err != nil {
			return fmt.Errorf("parse page %s: %w", path, err)
		}

		st.PagesList = append(st.PagesList, &site.Page{
			Fname:      path,
			Path:       outPath,
			ChildNodes: nodes,
		})
		slog.Debug("parsed page", logfields.Page(outPath), logfields.Dir(dir))
		return nil
	})
	if err != nil {
		return fmt.Errorf("parse pages in %s: %w", dir, err)
	}
	return nil
}
