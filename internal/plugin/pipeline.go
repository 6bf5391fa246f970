package plugin

import (
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// RunStateHooks invokes every plugin's hook for the given state checkpoint in
// list order. Each hook receives a deep copy of the working state; a non-nil
// return value replaces the working state with a deep copy of it, so neither
// direction of the exchange leaves a live alias between plugin-owned and
// pipeline-owned objects. A hook failure (returned error or panic) is logged
// with the plugin's name and the pipeline proceeds with the state unchanged
// from before that plugin's invocation. The (possibly replaced) state is
// returned; this function never fails.
func RunStateHooks(hctx *HookContext, checkpoint Checkpoint, plugins []Plugin, st *site.State) *site.State {
	for _, p := range plugins {
		hook := p.StateHookFor(checkpoint)
		if hook == nil {
			continue
		}
		next, err := invokeStateHook(hook, hctx, st.Clone())
		if err != nil {
			he := &HookError{PluginName: p.Name, Checkpoint: checkpoint, Err: err}
			slog.Warn("plugin hook failed, continuing",
				logfields.Plugin(p.Name),
				logfields.Checkpoint(checkpoint.String()),
				logfields.Error(he))
			continue
		}
		if next != nil {
			st = next.Clone()
		}
	}
	return st
}

// RunConfigurationHooks invokes every plugin's configuration hook in list
// order with the same replacement and isolation contract as RunStateHooks.
func RunConfigurationHooks(hctx *HookContext, plugins []Plugin, settings *config.Settings) *config.Settings {
	for _, p := range plugins {
		if p.Configuration == nil {
			continue
		}
		next, err := invokeConfigurationHook(p.Configuration, hctx, settings.Clone())
		if err != nil {
			he := &HookError{PluginName: p.Name, Checkpoint: CheckpointConfiguration, Err: err}
			slog.Warn("plugin hook failed, continuing",
				logfields.Plugin(p.Name),
				logfields.Checkpoint(CheckpointConfiguration.String()),
				logfields.Error(he))
			continue
		}
		if next != nil {
			settings = next.Clone()
		}
	}
	return settings
}

func invokeStateHook(hook StateHook, hctx *HookContext, st *site.State) (out *site.State, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("hook panicked: %v", r)
		}
	}()
	return hook(hctx, st)
}

func invokeConfigurationHook(hook ConfigurationHook, hctx *HookContext, s *config.Settings) (out *config.Settings, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("hook panicked: %v", r)
		}
	}()
	return hook(hctx, s)
}
