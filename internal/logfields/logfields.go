package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyPage       = "page"
	KeyComponent  = "component"
	KeyPlugin     = "plugin"
	KeyCheckpoint = "checkpoint"
	KeyDir        = "directory"
	KeyLocale     = "locale"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr      { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Page(path string) slog.Attr       { return slog.String(KeyPage, path) }
func Component(tag string) slog.Attr   { return slog.String(KeyComponent, tag) }
func Plugin(name string) slog.Attr     { return slog.String(KeyPlugin, name) }
func Checkpoint(name string) slog.Attr { return slog.String(KeyCheckpoint, name) }
func Dir(path string) slog.Attr        { return slog.String(KeyDir, path) }
func Locale(tag string) slog.Attr      { return slog.String(KeyLocale, tag) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
