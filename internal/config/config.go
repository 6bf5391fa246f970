// Package config holds the resolved build settings for one sitebuilder run.
// Settings are constructed once from defaults + YAML file + CLI overrides and
// treated as read-only afterwards; a plugin's configuration hook may replace
// the whole value but never mutates fields in place.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSettingsName is the base name of the settings file looked up in the
// root directory when no explicit path is given.
const DefaultSettingsName = "sitebuilder"

// Duration is a time.Duration that decodes YAML duration strings ("10m") as
// well as plain nanosecond integers.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(n)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Settings represents the resolved configuration for one build pass.
type Settings struct {
	Name         string `yaml:"name"`
	SettingsName string `yaml:"settings_name,omitempty"` // base name of the settings file

	RootDir        string   `yaml:"root_dir,omitempty"`
	PagesDir       string   `yaml:"pages_dir,omitempty"`
	ComponentsDirs []string `yaml:"components_dirs,omitempty"`
	SrcDirs        []string `yaml:"src_dirs,omitempty"`
	OutDir         string   `yaml:"out_dir,omitempty"`
	Entry          string   `yaml:"entry,omitempty"`    // glob matched against page file names
	Template       string   `yaml:"template,omitempty"` // optional HTML shell wrapped around each page

	AuthKey         string `yaml:"auth_key,omitempty"`
	APIDomain       string `yaml:"api_domain,omitempty"`
	AnalyticsDomain string `yaml:"analytics_domain,omitempty"`

	Host                 string `yaml:"host,omitempty"`
	Port                 int    `yaml:"port,omitempty"`
	CrossOriginIsolation bool   `yaml:"cross_origin_isolation,omitempty"`

	Sitemap bool   `yaml:"sitemap,omitempty"`
	SiteURL string `yaml:"site_url,omitempty"`

	Locales       []string `yaml:"locales,omitempty"`
	DefaultLocale string   `yaml:"default_locale,omitempty"`

	// Plugins lists plugin names in invocation order; the command layer
	// resolves them against the plugin registry. The pipeline never reorders
	// or deduplicates this list.
	Plugins []string `yaml:"plugins,omitempty"`

	RebuildEvery Duration `yaml:"rebuild_every,omitempty"` // optional periodic rebuild in serve mode
	HistoryDB    string        `yaml:"history_db,omitempty"`    // optional SQLite build-history path

	Quiet bool `yaml:"quiet,omitempty"`
}

// Load loads settings from the specified YAML file. Environment variables in
// the file body are expanded, a .env file is loaded first when present,
// defaults are applied, locales are validated and the configured source
// directories are deduplicated (redundant sub-paths removed) so plugins see
// an already-normalized list.
func Load(path string) (*Settings, error) {
	if err := loadEnvFile(); err != nil {
		// A missing .env is not an error; anything else is worth surfacing.
		fmt.Fprintf(os.Stderr, "Note: .env file not loaded: %v\n", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var s Settings
	if err := yaml.Unmarshal([]byte(expanded), &s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	s.ApplyDefaults()
	if err := s.Normalize(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Clone returns a deep copy of the settings. Replacement values returned by
// plugin configuration hooks are cloned before the pipeline adopts them so a
// plugin cannot retain a live alias into the canonical settings.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	c := *s
	c.ComponentsDirs = append([]string(nil), s.ComponentsDirs...)
	c.SrcDirs = append([]string(nil), s.SrcDirs...)
	c.Locales = append([]string(nil), s.Locales...)
	c.Plugins = append([]string(nil), s.Plugins...)
	return &c
}

// Addr returns the host:port pair the dev server binds to.
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
