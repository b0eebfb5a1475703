package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig tests the default configuration.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.MaxDepth != DefaultMaxDepth {
		t.Errorf("max depth = %d, want %d", cfg.MaxDepth, DefaultMaxDepth)
	}
	if cfg.Delay != time.Second {
		t.Errorf("delay = %v, want 1s", cfg.Delay)
	}
	if !cfg.RespectRobots {
		t.Error("expected robots respected by default")
	}
	if cfg.OverrideRobots {
		t.Error("expected override disabled by default")
	}
	if !cfg.Headless {
		t.Error("expected headless browser by default")
	}
	if cfg.OutputFormat != OutputText {
		t.Errorf("output format = %q, want text", cfg.OutputFormat)
	}
	if len(cfg.SubdomainMethods) != 2 {
		t.Errorf("subdomain methods = %v, want dns and wordlist", cfg.SubdomainMethods)
	}
}

// TestConfigValidate tests the fatal misconfiguration taxonomy.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.SeedURL = "https://example.com"
		return cfg
	}

	t.Run("valid config passes", func(t *testing.T) {
		t.Parallel()
		if err := valid().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "missing seed",
			mutate:  func(c *Config) { c.SeedURL = "" },
			wantErr: ErrNoSeed,
		},
		{
			name:    "negative depth",
			mutate:  func(c *Config) { c.MaxDepth = -1 },
			wantErr: ErrInvalidDepth,
		},
		{
			name:    "zero max pages",
			mutate:  func(c *Config) { c.MaxPages = 0 },
			wantErr: ErrInvalidMaxPages,
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Concurrency = 0 },
			wantErr: ErrInvalidConcurrency,
		},
		{
			name:    "negative delay",
			mutate:  func(c *Config) { c.Delay = -time.Second },
			wantErr: ErrInvalidDelay,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative body size",
			mutate:  func(c *Config) { c.MaxBodySize = -1 },
			wantErr: ErrInvalidMaxBodySize,
		},
		{
			name:    "unknown output format",
			mutate:  func(c *Config) { c.OutputFormat = "xml" },
			wantErr: ErrInvalidOutputFormat,
		},
		{
			name:    "unknown subdomain method",
			mutate:  func(c *Config) { c.SubdomainMethods = []string{"zone-transfer"} },
			wantErr: ErrInvalidSubdomainMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("depth zero is valid", func(t *testing.T) {
		t.Parallel()

		cfg := valid()
		cfg.MaxDepth = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error for depth 0: %v", err)
		}
	})

	t.Run("zero delay is valid", func(t *testing.T) {
		t.Parallel()

		cfg := valid()
		cfg.Delay = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error for zero delay: %v", err)
		}
	})
}

// TestLoadConfigFile tests site-config loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads sites and defaults", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".webrecon")
		content := `
defaults:
  headers:
    X-Engagement-Id: "PT-42"
sites:
  target.example.com:
    cookie: "session=abc"
    depth: 3
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		site := cf.GetSiteConfig("target.example.com")
		if site.Cookie != "session=abc" {
			t.Errorf("cookie = %q, want session=abc", site.Cookie)
		}
		if site.Depth != 3 {
			t.Errorf("depth = %d, want 3", site.Depth)
		}
		if site.Headers["X-Engagement-Id"] != "PT-42" {
			t.Errorf("headers = %v, want inherited default header", site.Headers)
		}
	})

	t.Run("unknown host falls back to defaults", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: SiteConfig{Cookie: "fallback=1"},
			Sites:    map[string]SiteConfig{},
		}

		site := cf.GetSiteConfig("other.example.com")
		if site.Cookie != "fallback=1" {
			t.Errorf("cookie = %q, want fallback=1", site.Cookie)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".webrecon")
		if err := os.WriteFile(path, []byte("sites: [not: a: map"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for malformed YAML")
		}
	})
}

// TestFindConfigFile tests config file resolution.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path wins", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("sites: {}"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile = %q, want %q", got, path)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing")); got != "" {
			t.Errorf("FindConfigFile = %q, want empty", got)
		}
	})
}

// TestXDGDirs tests XDG path construction.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if dir := XDGDataDir(); filepath.Base(dir) != AppName {
		t.Errorf("data dir = %q, want suffix %q", dir, AppName)
	}
	if dir := XDGConfigDir(); filepath.Base(dir) != AppName {
		t.Errorf("config dir = %q, want suffix %q", dir, AppName)
	}
}
