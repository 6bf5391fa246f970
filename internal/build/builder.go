// Package build orchestrates one build pass: it threads the document state
// through the plugin hook checkpoints, the file collaborator and the
// component resolver in a fixed stage sequence. Parse failures are the only
// fatal condition; plugin failures degrade in place.
package build

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuilder/internal/assemble"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/files"
	"git.home.luguber.info/inful/sitebuilder/internal/generator"
	"git.home.luguber.info/inful/sitebuilder/internal/history"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// Stage names, fixed in pipeline order.
const (
	StageHooksBeforeBuild = "hooks-before-build"
	StageCreateOutput     = "create-output"
	StageParseComponents  = "parse-components"
	StageParsePages       = "parse-pages"
	StageResolveComps     = "resolve-components"
	StageAssemblePages    = "assemble-pages"
	StageDeriveAliases    = "derive-aliases"
	StageHooksAfterBuild  = "hooks-after-build"
	StageDump             = "dump"
	StageHooksBundle      = "hooks-bundle"
)

// Builder sequences one or more build passes over a fixed settings value and
// plugin list. Recorder and History are optional; a nil value disables them.
type Builder struct {
	Settings *config.Settings
	Plugins  []plugin.Plugin
	Files    *files.Files
	Recorder *metrics.Recorder
	History  *history.Store
}

// New assembles a builder. The plugin list is invoked in the given order at
// every checkpoint, never reordered or deduplicated.
func New(settings *config.Settings, plugins []plugin.Plugin, f *files.Files) *Builder {
	if f == nil {
		f = files.New()
	}
	return &Builder{Settings: settings, Plugins: plugins, Files: f}
}

// buildState carries mutable state across the stages of a single pass.
type buildState struct {
	buildID string
	state   *site.State
	gen     generator.Generator
	hookCtx *plugin.HookContext
	timings map[string]time.Duration
}

// Bundle runs exactly one build pass and reports success. Each pass starts
// from an empty state; nothing survives into the next pass except what was
// written to the output directory. A fatal stage failure is logged and
// reported as false without running the remaining stages or hooks.
// Cancellation is not supported beyond the passed context: once started, the
// pass runs to completion or to its first fatal failure.
func (b *Builder) Bundle(ctx context.Context) bool {
	start := time.Now()
	bs := &buildState{
		buildID: uuid.NewString(),
		state:   site.NewState(),
		gen:     generator.New(b.Settings),
		timings: make(map[string]time.Duration),
	}
	bs.hookCtx = plugin.NewHookContext(ctx, b.Files, slog.Default(), bs.buildID)

	slog.Info("build started", logfields.BuildID(bs.buildID))

	stages := []StageDef{
		{StageHooksBeforeBuild, b.stageHooks(plugin.CheckpointBeforeBuild)},
		{StageCreateOutput, b.stageCreateOutput},
		{StageParseComponents, b.stageParseComponents},
		{StageParsePages, b.stageParsePages},
		{StageResolveComps, b.stageResolveComponents},
		{StageAssemblePages, b.stageAssemblePages},
		{StageDeriveAliases, b.stageDeriveAliases},
		{StageHooksAfterBuild, b.stageHooks(plugin.CheckpointAfterBuild)},
		{StageDump, b.stageDump},
		{StageHooksBundle, b.stageHooks(plugin.CheckpointBundle)},
	}

	err := b.runStages(ctx, bs, stages)
	dur := time.Since(start)
	success := err == nil

	if err != nil {
		slog.Error("build failed", logfields.BuildID(bs.buildID), logfields.Error(err))
	} else {
		slog.Info("build finished",
			logfields.BuildID(bs.buildID),
			slog.Int("pages", len(bs.state.PagesList)),
			slog.Int("components", len(bs.state.ComponentsList)),
			logfields.DurationMS(float64(dur.Milliseconds())))
	}

	b.Recorder.ObserveBuild(dur, success, len(bs.state.PagesList), len(bs.state.ComponentsList))
	b.recordHistory(ctx, bs, start, dur, success)
	return success
}

func (b *Builder) recordHistory(ctx context.Context, bs *buildState, start time.Time, dur time.Duration, success bool) {
	if b.History == nil {
		return
	}
	rec := history.Record{
		BuildID:    bs.buildID,
		StartedAt:  start,
		Duration:   dur,
		Pages:      len(bs.state.PagesList),
		Components: len(bs.state.ComponentsList),
		Success:    success,
	}
	if err := b.History.Append(ctx, rec); err != nil {
		slog.Warn("failed to record build history", logfields.Error(err))
	}
}

// stageHooks runs every plugin's hook for a state checkpoint. Hook failures
// are isolated inside the pipeline; this stage never fails the build.
func (b *Builder) stageHooks(checkpoint plugin.Checkpoint) Stage {
	return func(ctx context.Context, bs *buildState) error {
		bs.state = plugin.RunStateHooks(bs.hookCtx, checkpoint, b.Plugins, bs.state)
		return nil
	}
}

func (b *Builder) stageCreateOutput(ctx context.Context, bs *buildState) error {
	return b.Files.CreateDir(b.Settings)
}

func (b *Builder) stageParseComponents(ctx context.Context, bs *buildState) error {
	for _, dir := range b.Settings.ComponentsDirs {
		if err := b.Files.ParseComponents(bs.state, dir, b.Settings); err != nil {
			return newFatalStageError(StageParseComponents, err)
		}
	}
	return nil
}

func (b *Builder) stageParsePages(ctx context.Context, bs *buildState) error {
	for _, dir := range b.Settings.SrcDirs {
		if err := b.Files.ParsePages(bs.state, dir, b.Settings); err != nil {
			return newFatalStageError(StageParsePages, err)
		}
	}
	return nil
}

func (b *Builder) stageResolveComponents(ctx context.Context, bs *buildState) error {
	return assemble.ResolveComponents(ctx, bs.state, bs.gen, b.Settings)
}

func (b *Builder) stageAssemblePages(ctx context.Context, bs *buildState) error {
	return assemble.ResolvePages(ctx, bs.state, bs.gen, b.Settings)
}

func (b *Builder) stageDeriveAliases(ctx context.Context, bs *buildState) error {
	return assemble.DeriveAliases(ctx, bs.state, bs.gen, b.Settings)
}

func (b *Builder) stageDump(ctx context.Context, bs *buildState) error {
	return b.Files.DumpPages(bs.state, b.Settings.OutDir, b.Settings)
}
