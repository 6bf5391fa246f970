package plugin

import (
	"context"
	"log/slog"
)

// FileUtil is the read-only file capability handed to hooks. It is satisfied
// by the files collaborator; plugins never receive direct mutation access to
// pipeline-internal state through it.
type FileUtil interface {
	// LoadFile loads the first file matching the glob pattern and returns
	// its decoded mapping, or nil when nothing matches.
	LoadFile(glob string) (map[string]any, error)
}

// HookContext carries the capabilities every hook receives. The context is
// owned by the pipeline; hooks must treat it as read-only.
type HookContext struct {
	Context context.Context
	Files   FileUtil
	Logger  *slog.Logger
	BuildID string
}

// NewHookContext assembles a hook context for one build pass.
func NewHookContext(ctx context.Context, files FileUtil, logger *slog.Logger, buildID string) *HookContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &HookContext{
		Context: ctx,
		Files:   files,
		Logger:  logger,
		BuildID: buildID,
	}
}
