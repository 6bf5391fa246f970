// Package server runs the development server: it serves the output
// directory over HTTP, watches the source tree and triggers a fresh build
// pass on every change. Each pass reloads settings and starts from an empty
// state; overlapping passes are not synchronized against each other, which
// is accepted in the watch workflow.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/files"
	"git.home.luguber.info/inful/sitebuilder/internal/history"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
)

// Server hosts the dev workflow around the build pipeline.
type Server struct {
	settingsPath string
	registry     *plugin.Registry
	recorder     *metrics.Recorder
	store        *history.Store
	files        *files.Files
	overrides    []func(*config.Settings)
}

// New assembles a dev server. The history store may be nil. Overrides (CLI
// flags) are re-applied on every settings reload.
func New(settingsPath string, reg *plugin.Registry, rec *metrics.Recorder, store *history.Store, overrides ...func(*config.Settings)) *Server {
	if reg == nil {
		reg = plugin.DefaultRegistry()
	}
	return &Server{
		settingsPath: settingsPath,
		registry:     reg,
		recorder:     rec,
		store:        store,
		files:        files.New(),
		overrides:    overrides,
	}
}

// Run builds once, then serves the output directory and rebuilds on source
// changes until the context is canceled. The initial settings decide the
// bind address, headers and watched directories; later passes reload
// settings but the server endpoints stay on the initial address.
func (s *Server) Run(ctx context.Context) error {
	settings, _, err := build.Prepare(ctx, s.settingsPath, s.registry, s.files, s.overrides...)
	if err != nil {
		return err
	}

	s.runPass(ctx)

	httpServer := s.newHTTPServer(settings)
	go func() {
		slog.Info("dev server listening", slog.String("addr", settings.Addr()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("dev server failed", logfields.Error(err))
		}
	}()

	stopWatch, err := s.watch(ctx, settings)
	if err != nil {
		shutdown(httpServer)
		return err
	}
	defer stopWatch()

	stopCron, err := s.schedule(ctx, settings)
	if err != nil {
		slog.Warn("periodic rebuild disabled", logfields.Error(err))
	} else {
		defer stopCron()
	}

	<-ctx.Done()
	shutdown(httpServer)
	return nil
}

// runPass executes one full build pass with freshly loaded settings. Errors
// keep the previous output in place; the server keeps serving.
func (s *Server) runPass(ctx context.Context) {
	settings, plugins, err := build.Prepare(ctx, s.settingsPath, s.registry, s.files, s.overrides...)
	if err != nil {
		slog.Error("build pass skipped", logfields.Error(err))
		return
	}
	b := build.New(settings, plugins, s.files)
	b.Recorder = s.recorder
	b.History = s.store
	b.Bundle(ctx)
}

func (s *Server) newHTTPServer(settings *config.Settings) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(settings.OutDir)))
	mux.Handle("/metrics", s.recorder.Handler())
	mux.HandleFunc("/builds", s.handleBuilds)

	var handler http.Handler = mux
	if settings.CrossOriginIsolation {
		handler = crossOriginIsolation(handler)
	}
	return &http.Server{
		Addr:              settings.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// handleBuilds reports recent build outcomes from the history store.
func (s *Server) handleBuilds(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "build history not configured", http.StatusNotFound)
		return
	}
	records, err := s.store.Recent(r.Context(), 20)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(records)
}

// crossOriginIsolation adds the COOP/COEP header pair required for
// SharedArrayBuffer and friends.
func crossOriginIsolation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
		next.ServeHTTP(w, r)
	})
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
