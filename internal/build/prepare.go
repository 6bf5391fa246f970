package build

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/files"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
)

// Prepare loads settings from disk, applies the caller's overrides (CLI
// flags) and runs the configuration checkpoint. The settings file has
// already been deduplicated and normalized by the loader, so plugins observe
// the final source directory list. A hook may replace the settings
// wholesale, including the plugin name list, so plugins are re-resolved
// against the registry afterwards.
func Prepare(ctx context.Context, settingsPath string, reg *plugin.Registry, f *files.Files, overrides ...func(*config.Settings)) (*config.Settings, []plugin.Plugin, error) {
	if reg == nil {
		reg = plugin.DefaultRegistry()
	}
	if f == nil {
		f = files.New()
	}

	settings, err := config.Load(settingsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load settings: %w", err)
	}
	for _, o := range overrides {
		o(settings)
	}

	plugins, err := reg.Resolve(settings.Plugins)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve plugins: %w", err)
	}

	hctx := plugin.NewHookContext(ctx, f, slog.Default(), "")
	settings = plugin.RunConfigurationHooks(hctx, plugins, settings)

	plugins, err = reg.Resolve(settings.Plugins)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve plugins after configuration hooks: %w", err)
	}
	return settings, plugins, nil
}
