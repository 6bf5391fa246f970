package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// fixture writes a minimal site tree and returns ready-to-use settings.
func fixture(t *testing.T, files map[string]string) *config.Settings {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	s := &config.Settings{
		ComponentsDirs: []string{filepath.Join(root, "components")},
		SrcDirs:        []string{filepath.Join(root, "pages")},
		OutDir:         filepath.Join(root, "dist"),
	}
	s.ApplyDefaults()
	return s
}

func TestBundleResolvesNestedComponentsEndToEnd(t *testing.T) {
	settings := fixture(t, map[string]string{
		"components/c-box.html":   `<div class="box"><c-label></c-label></div>`,
		"components/c-label.html": `<span>Y</span>`,
		"pages/index.html":        `<main><c-box></c-box></main>`,
	})

	b := New(settings, nil, nil)
	require.True(t, b.Bundle(context.Background()))

	out, err := os.ReadFile(filepath.Join(settings.OutDir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, `<main><div class="box"><span>Y</span></div></main>`, string(out))
}

func TestBundleEmitsUnknownReferencesVerbatim(t *testing.T) {
	// A tag with no catalog entry is not an error; it passes through to the
	// output untouched.
	settings := fixture(t, map[string]string{
		"components/c-box.html": `<div>X</div>`,
		"pages/index.html":      `<main><c-missing></c-missing></main>`,
	})

	b := New(settings, nil, nil)
	require.True(t, b.Bundle(context.Background()))

	out, err := os.ReadFile(filepath.Join(settings.OutDir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "<c-missing>")
}

func TestBundleFatalComponentParseSkipsLaterHooks(t *testing.T) {
	// Duplicate component tag names across directories are a fatal parse
	// error.
	root := t.TempDir()
	for _, dir := range []string{"one", "two"} {
		p := filepath.Join(root, dir)
		require.NoError(t, os.MkdirAll(p, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(p, "c-box.html"), []byte(`<div>X</div>`), 0o644))
	}
	pages := filepath.Join(root, "pages")
	require.NoError(t, os.MkdirAll(pages, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pages, "index.html"), []byte(`<main></main>`), 0o644))

	settings := &config.Settings{
		ComponentsDirs: []string{filepath.Join(root, "one"), filepath.Join(root, "two")},
		SrcDirs:        []string{pages},
		OutDir:         filepath.Join(root, "dist"),
	}
	settings.ApplyDefaults()

	var beforeRan, afterRan, bundleRan bool
	p := plugin.Plugin{
		Name: "tracker",
		BeforeBuild: func(ctx *plugin.HookContext, st *site.State) (*site.State, error) {
			beforeRan = true
			return nil, nil
		},
		AfterBuild: func(ctx *plugin.HookContext, st *site.State) (*site.State, error) {
			afterRan = true
			return nil, nil
		},
		Bundle: func(ctx *plugin.HookContext, st *site.State) (*site.State, error) {
			bundleRan = true
			return nil, nil
		},
	}

	b := New(settings, []plugin.Plugin{p}, nil)
	assert.False(t, b.Bundle(context.Background()))

	assert.True(t, beforeRan, "beforeBuild runs before parsing")
	assert.False(t, afterRan, "afterBuild must not run after a fatal parse failure")
	assert.False(t, bundleRan, "bundle must not run after a fatal parse failure")
}

func TestBundlePluginFailureDoesNotFailBuild(t *testing.T) {
	settings := fixture(t, map[string]string{
		"components/c-box.html": `<div>X</div>`,
		"pages/index.html":      `<main><c-box></c-box></main>`,
	})

	var secondInvoked bool
	plugins := []plugin.Plugin{
		{
			Name: "broken",
			BeforeBuild: func(ctx *plugin.HookContext, st *site.State) (*site.State, error) {
				return nil, errors.New("boom")
			},
		},
		{
			Name: "healthy",
			BeforeBuild: func(ctx *plugin.HookContext, st *site.State) (*site.State, error) {
				secondInvoked = true
				return nil, nil
			},
		},
	}

	b := New(settings, plugins, nil)
	assert.True(t, b.Bundle(context.Background()))
	assert.True(t, secondInvoked)
}

func TestBundleStateReplacementFlowsThroughPipeline(t *testing.T) {
	settings := fixture(t, map[string]string{
		"components/c-box.html": `<div>X</div>`,
		"pages/index.html":      `<main><c-box></c-box></main>`,
	})

	var sawProp bool
	plugins := []plugin.Plugin{
		{
			Name: "writer",
			BeforeBuild: func(ctx *plugin.HookContext, st *site.State) (*site.State, error) {
				next := st.Clone()
				next.GlobalProps["mark"] = "set-before"
				return next, nil
			},
		},
		{
			Name: "reader",
			AfterBuild: func(ctx *plugin.HookContext, st *site.State) (*site.State, error) {
				sawProp = st.GlobalProps["mark"] == "set-before"
				return nil, nil
			},
		},
	}

	b := New(settings, plugins, nil)
	assert.True(t, b.Bundle(context.Background()))
	assert.True(t, sawProp, "global props must survive from beforeBuild to afterBuild")
}

func TestBundleAliasedPagesAreWritten(t *testing.T) {
	settings := fixture(t, map[string]string{
		"components/c-box.html": `<div>X</div>`,
		"pages/index.html":      `<main><c-box></c-box></main>`,
	})
	settings.Locales = []string{"en", "de"}
	settings.DefaultLocale = "en"

	b := New(settings, nil, nil)
	require.True(t, b.Bundle(context.Background()))

	_, err := os.Stat(filepath.Join(settings.OutDir, "index.html"))
	assert.NoError(t, err)
	out, err := os.ReadFile(filepath.Join(settings.OutDir, "de", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(out), `lang="de"`)
}
