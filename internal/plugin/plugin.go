// Package plugin provides the extension mechanism of the build pipeline.
// Plugins observe and optionally replace the build state (or settings) at
// four checkpoints; a plugin failure is isolated and never aborts the build.
package plugin

import (
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// Checkpoint names a point in the build sequence where plugins run.
type Checkpoint string

const (
	// CheckpointConfiguration runs after the settings file is loaded, before
	// any parsing. Hooks may replace the settings.
	CheckpointConfiguration Checkpoint = "configuration"

	// CheckpointBeforeBuild runs before components and pages are parsed.
	CheckpointBeforeBuild Checkpoint = "beforeBuild"

	// CheckpointAfterBuild runs after all pages are resolved and aliased,
	// before output is written.
	CheckpointAfterBuild Checkpoint = "afterBuild"

	// CheckpointBundle runs after output is written; used for side-effecting
	// export steps.
	CheckpointBundle Checkpoint = "bundle"
)

// IsValid returns true if the checkpoint is recognized.
func (c Checkpoint) IsValid() bool {
	switch c {
	case CheckpointConfiguration, CheckpointBeforeBuild, CheckpointAfterBuild, CheckpointBundle:
		return true
	default:
		return false
	}
}

// String returns the string representation of the checkpoint.
func (c Checkpoint) String() string { return string(c) }

// ConfigurationHook may replace the settings. Returning nil leaves the
// working settings unchanged.
type ConfigurationHook func(ctx *HookContext, settings *config.Settings) (*config.Settings, error)

// StateHook may replace the build state. Returning nil leaves the working
// state unchanged.
type StateHook func(ctx *HookContext, st *site.State) (*site.State, error)

// Plugin is a named set of optional hooks. Dispatch checks slot presence; a
// nil slot means the plugin does not participate at that checkpoint. Name is
// used only for diagnostics.
type Plugin struct {
	Name string

	Configuration ConfigurationHook
	BeforeBuild   StateHook
	AfterBuild    StateHook
	Bundle        StateHook
}

// StateHookFor returns the plugin's hook for a state checkpoint, or nil.
func (p Plugin) StateHookFor(c Checkpoint) StateHook {
	switch c {
	case CheckpointBeforeBuild:
		return p.BeforeBuild
	case CheckpointAfterBuild:
		return p.AfterBuild
	case CheckpointBundle:
		return p.Bundle
	default:
		return nil
	}
}

// HookError reports a failure inside a plugin hook.
type HookError struct {
	PluginName string
	Checkpoint Checkpoint
	Err        error
}

// Error implements the error interface.
func (e *HookError) Error() string {
	return fmt.Sprintf("plugin %s failed during %s: %v", e.PluginName, e.Checkpoint, e.Err)
}

// Unwrap returns the underlying error for error inspection.
func (e *HookError) Unwrap() error { return e.Err }
