package config

// SiteConfig holds site-specific crawl overrides for a single host.
// This allows tuning politeness and budgets per site without separate runs.
type SiteConfig struct {
	// MaxPages overrides the global page budget for this site.
	// If zero, the global MaxPages is used.
	MaxPages int `yaml:"maxPages,omitempty"`

	// DelayMs overrides the per-worker request delay in milliseconds.
	// If zero, the global delay is used.
	DelayMs int `yaml:"delayMs,omitempty"`

	// Concurrency overrides the worker count for this site.
	// If zero, the global Concurrency is used.
	Concurrency int `yaml:"concurrency,omitempty"`

	// UserAgent overrides the User-Agent header for this site.
	UserAgent string `yaml:"userAgent,omitempty"`
}

// File represents the structure of the .linkscan configuration file.
type File struct {
	// Sites maps hostnames to their site-specific configurations.
	// Keys are bare hostnames without scheme (e.g., "docs.example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains default site configuration applied to all sites
	// unless overridden in the site-specific configuration.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a specific host.
// It merges the site-specific configuration with defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with site-specific configuration if present
	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.MaxPages != 0 {
			result.MaxPages = siteConfig.MaxPages
		}
		if siteConfig.DelayMs != 0 {
			result.DelayMs = siteConfig.DelayMs
		}
		if siteConfig.Concurrency != 0 {
			result.Concurrency = siteConfig.Concurrency
		}
		if siteConfig.UserAgent != "" {
			result.UserAgent = siteConfig.UserAgent
		}
	}

	return result
}
