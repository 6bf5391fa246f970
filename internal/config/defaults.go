package config

import (
	"fmt"

	"golang.org/x/text/language"
)

// ApplyDefaults fills unset fields with sensible defaults. Zero values for
// every knob trigger a working local configuration.
func (s *Settings) ApplyDefaults() {
	if s.Name == "" {
		s.Name = "site"
	}
	if s.SettingsName == "" {
		s.SettingsName = DefaultSettingsName
	}
	if s.RootDir == "" {
		s.RootDir = "."
	}
	if s.PagesDir == "" {
		s.PagesDir = "./pages"
	}
	if len(s.ComponentsDirs) == 0 {
		s.ComponentsDirs = []string{"./components"}
	}
	if len(s.SrcDirs) == 0 {
		s.SrcDirs = []string{s.PagesDir}
	}
	if s.OutDir == "" {
		s.OutDir = "./dist"
	}
	if s.Entry == "" {
		s.Entry = "*.html"
	}
	if s.Host == "" {
		s.Host = "localhost"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.DefaultLocale == "" && len(s.Locales) > 0 {
		s.DefaultLocale = s.Locales[0]
	}
}

// Normalize validates cross-field constraints and removes redundant source
// directory entries. It must run before any plugin configuration hook fires.
func (s *Settings) Normalize() error {
	for _, loc := range s.Locales {
		if _, err := language.Parse(loc); err != nil {
			return fmt.Errorf("invalid locale %q: %w", loc, err)
		}
	}
	if s.DefaultLocale != "" {
		if _, err := language.Parse(s.DefaultLocale); err != nil {
			return fmt.Errorf("invalid default locale %q: %w", s.DefaultLocale, err)
		}
	}
	if s.Sitemap && s.SiteURL == "" {
		return fmt.Errorf("sitemap generation requires site_url")
	}
	s.SrcDirs = DedupSrcDirs(s.SrcDirs)
	return nil
}
