package config

// SiteConfig holds per-host crawl overrides, primarily pre-supplied
// credentials for crawling authenticated areas.
type SiteConfig struct {
	// Cookie is an HTTP cookie header value sent with requests to the host.
	// Format: "name=value" or "name1=value1; name2=value2".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are additional HTTP headers for requests to the host,
	// e.g. an Authorization bearer token.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Depth overrides the global max depth for this host. Zero means
	// use the global value.
	Depth int `yaml:"depth,omitempty"`
}

// File represents the .webrecon configuration file.
type File struct {
	// Sites maps hostnames to their overrides.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to every host unless overridden per site.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the effective configuration for a host,
// merging host-specific values over the defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	site, ok := cf.Sites[host]
	if !ok {
		return result
	}
	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if site.Depth != 0 {
		result.Depth = site.Depth
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		for k, v := range site.Headers {
			result.Headers[k] = v
		}
	}
	return result
}
