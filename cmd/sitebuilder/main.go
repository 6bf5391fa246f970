package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/history"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
	"git.home.luguber.info/inful/sitebuilder/internal/server"
)

var CLI struct {
	Settings string `short:"s" help:"Settings file path" default:"sitebuilder.yaml"`
	Verbose  bool   `short:"v" help:"Enable verbose logging"`
	Quiet    bool   `short:"q" help:"Suppress all log output"`

	Build struct {
		Output string `short:"o" help:"Override output directory"`
	} `cmd:"" help:"Build the site once"`

	Serve struct {
		Host string `help:"Override dev server host"`
		Port int    `short:"p" help:"Override dev server port"`
	} `cmd:"" help:"Serve the site and rebuild on source changes"`

	Init struct {
		Force bool `help:"Overwrite existing settings file"`
	} `cmd:"" help:"Initialize a new settings file"`
}

func main() {
	kctx := kong.Parse(&CLI)

	setupLogging(CLI.Verbose, CLI.Quiet)

	switch kctx.Command() {
	case "build":
		if !runBuild() {
			os.Exit(1)
		}
	case "serve":
		if err := runServe(); err != nil {
			slog.Error("serve failed", logfields.Error(err))
			os.Exit(1)
		}
	case "init":
		if err := config.Init(CLI.Settings, CLI.Init.Force); err != nil {
			slog.Error("init failed", logfields.Error(err))
			os.Exit(1)
		}
		slog.Info("settings file created", slog.String("path", CLI.Settings))
	}
}

func setupLogging(verbose, quiet bool) {
	if quiet {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
}

// runBuild performs exactly one build pass and returns its result
// synchronously.
func runBuild() bool {
	ctx := context.Background()

	settings, plugins, err := build.Prepare(ctx, CLI.Settings, plugin.DefaultRegistry(), nil, func(s *config.Settings) {
		if CLI.Build.Output != "" {
			s.OutDir = CLI.Build.Output
		}
		if CLI.Quiet {
			s.Quiet = true
		}
	})
	if err != nil {
		slog.Error("failed to prepare build", logfields.Error(err))
		return false
	}
	if settings.Quiet && !CLI.Quiet {
		setupLogging(false, true)
	}

	b := build.New(settings, plugins, nil)
	if settings.HistoryDB != "" {
		store, err := history.Open(settings.HistoryDB)
		if err != nil {
			slog.Warn("build history disabled", logfields.Error(err))
		} else {
			defer func() { _ = store.Close() }()
			b.History = store
		}
	}
	return b.Bundle(ctx)
}

func runServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	overrides := func(s *config.Settings) {
		if CLI.Serve.Host != "" {
			s.Host = CLI.Serve.Host
		}
		if CLI.Serve.Port != 0 {
			s.Port = CLI.Serve.Port
		}
	}

	// Peek at the settings for serve-mode collaborators; the server reloads
	// settings for every pass on its own.
	settings, err := config.Load(CLI.Settings)
	if err != nil {
		return err
	}

	var store *history.Store
	if settings.HistoryDB != "" {
		store, err = history.Open(settings.HistoryDB)
		if err != nil {
			slog.Warn("build history disabled", logfields.Error(err))
			store = nil
		} else {
			defer func() { _ = store.Close() }()
		}
	}

	recorder := metrics.NewRecorder(nil)
	return server.New(CLI.Settings, plugin.DefaultRegistry(), recorder, store, overrides).Run(ctx)
}
