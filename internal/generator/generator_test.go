package generator

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

func cmsServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			http.Error(w, "missing auth", http.StatusUnauthorized)
			return
		}
		locale := r.URL.Query().Get("locale")
		if locale == "" {
			locale = "en"
		}
		fmt.Fprintf(w, `<p>%s content for %s</p>`, locale, r.URL.Path)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestNewSelectsGenerator(t *testing.T) {
	assert.IsType(t, Noop{}, New(&config.Settings{}))
	assert.IsType(t, &CMS{}, New(&config.Settings{APIDomain: "https://cms.example.com"}))
}

func TestMaterializeInlinesContentAndRewritesAttr(t *testing.T) {
	srv, _ := cmsServer(t)
	gen := New(&config.Settings{APIDomain: srv.URL, AuthKey: "secret"})

	nodes, err := site.ParseFragment(`<div data-cms="/news/latest">placeholder</div>`)
	require.NoError(t, err)
	root := nodes[0]

	require.NoError(t, gen.Materialize(context.Background(), root, ""))

	out, err := site.RenderNodes(nodes)
	require.NoError(t, err)
	assert.Contains(t, out, "en content for /news/latest")
	assert.NotContains(t, out, "placeholder")
	assert.NotContains(t, out, `data-cms="`)
	assert.Contains(t, out, `data-cms-source="/news/latest"`)
}

func TestMaterializeIsIdempotentAndCached(t *testing.T) {
	srv, hits := cmsServer(t)
	gen := New(&config.Settings{APIDomain: srv.URL, AuthKey: "secret"})

	nodes, err := site.ParseFragment(
		`<div><span data-cms="/a">x</span><span data-cms="/a">y</span></div>`)
	require.NoError(t, err)
	root := nodes[0]

	require.NoError(t, gen.Materialize(context.Background(), root, ""))
	assert.Equal(t, 1, *hits, "identical paths share one fetch per pass")

	require.NoError(t, gen.Materialize(context.Background(), root, ""))
	assert.Equal(t, 1, *hits, "materialized elements are not refetched")
}

func TestLocalizeRefetchesBySourceAttr(t *testing.T) {
	srv, _ := cmsServer(t)
	gen := New(&config.Settings{APIDomain: srv.URL, AuthKey: "secret"})

	nodes, err := site.ParseFragment(`<div data-cms="/news/latest"></div>`)
	require.NoError(t, err)
	root := nodes[0]

	require.NoError(t, gen.Materialize(context.Background(), root, ""))
	require.NoError(t, gen.Localize(context.Background(), root, "de"))

	out, err := site.RenderNodes(nodes)
	require.NoError(t, err)
	assert.Contains(t, out, "de content for /news/latest")
	assert.Contains(t, out, `data-cms-source="/news/latest"`, "the source attr survives localization")
}

func TestMaterializeSurfacesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	gen := New(&config.Settings{APIDomain: srv.URL})

	nodes, err := site.ParseFragment(`<div data-cms="/x"></div>`)
	require.NoError(t, err)

	err = gen.Materialize(context.Background(), nodes[0], "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestNoopLeavesNodesUntouched(t *testing.T) {
	nodes, err := site.ParseFragment(`<div data-cms="/x">keep</div>`)
	require.NoError(t, err)

	gen := Noop{}
	require.NoError(t, gen.Materialize(context.Background(), nodes[0], ""))
	require.NoError(t, gen.Localize(context.Background(), nodes[0], "de"))

	out, err := site.RenderNodes(nodes)
	require.NoError(t, err)
	assert.Equal(t, `<div data-cms="/x">keep</div>`, out)
}
