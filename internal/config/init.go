package config

import (
	"fmt"
	"os"
)

const exampleSettings = `# sitebuilder settings
name: my-site

pages_dir: ./pages
components_dirs:
  - ./components
src_dirs:
  - ./pages
out_dir: ./dist

# Glob matched against page file names; .md files are always picked up.
entry: "*.html"

# Optional HTML shell wrapped around every page. The template's
# <page-outlet> element is replaced by the page content.
# template: ./template.html

# CMS content (elements with a data-cms attribute).
# api_domain: https://cms.example.com
# auth_key: ${CMS_AUTH_KEY}

# analytics_domain: analytics.example.com

# Dev server.
host: localhost
port: 8080
# cross_origin_isolation: true
# rebuild_every: 10m
# history_db: ./builds.db

# sitemap: true
# site_url: https://example.com

# locales: [en, de]
# default_locale: en

# Plugins run in this order at every checkpoint.
# plugins:
#   - my-plugin
`

// Init creates a new settings file with commented example content.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("settings file already exists: %s (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(exampleSettings), 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}
