package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/webrecon/webrecon/internal/config"
	"github.com/webrecon/webrecon/internal/engine"
	"github.com/webrecon/webrecon/internal/model"
)

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if !strings.HasPrefix(cmd.Use, "crawl") {
			t.Errorf("expected use to start with 'crawl', got %q", cmd.Use)
		}
	})

	t.Run("has expected flags", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{
			"max-depth", "max-pages", "delay", "concurrency", "timeout",
			"user-agent", "retry", "include-subdomains",
			"respect-robots", "override-robots",
			"js-rendering", "headless", "disable-js-analysis",
			"enable-subdomain-enum", "enable-endpoint-guess", "enable-hidden-file-scan",
			"subdomain-wordlist", "endpoint-wordlist", "hidden-file-wordlist",
			"subdomain-methods", "config", "format", "output", "db",
		} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected flag %q", name)
			}
		}
	})

	t.Run("robots respected by default", func(t *testing.T) {
		t.Parallel()

		flag := cmd.Flags().Lookup("respect-robots")
		if flag == nil {
			t.Fatal("expected respect-robots flag")
		}
		if flag.DefValue != "true" {
			t.Errorf("respect-robots default = %q, want true", flag.DefValue)
		}
	})
}

// TestBuildConfig tests flag-to-config translation.
func TestBuildConfig(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.SeedURL != "https://example.com" {
			t.Errorf("seed = %q, want https://example.com", cfg.SeedURL)
		}
		if cfg.MaxDepth != config.DefaultMaxDepth {
			t.Errorf("max depth = %d, want %d", cfg.MaxDepth, config.DefaultMaxDepth)
		}
		if !cfg.RespectRobots {
			t.Error("expected robots respected by default")
		}
		if cfg.OverrideRobots {
			t.Error("expected override disabled by default")
		}
		if cfg.UseJSRendering {
			t.Error("expected JS rendering disabled by default")
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("flag overrides", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		for flag, value := range map[string]string{
			"max-depth":   "2",
			"max-pages":   "50",
			"delay":       "250ms",
			"concurrency": "3",
			"retry":       "true",
			"format":      "json",
			"db":          "/tmp/recon.db",
		} {
			if err := cmd.Flags().Set(flag, value); err != nil {
				t.Fatalf("failed to set %s: %v", flag, err)
			}
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.MaxDepth != 2 {
			t.Errorf("max depth = %d, want 2", cfg.MaxDepth)
		}
		if cfg.MaxPages != 50 {
			t.Errorf("max pages = %d, want 50", cfg.MaxPages)
		}
		if cfg.Delay != 250*time.Millisecond {
			t.Errorf("delay = %v, want 250ms", cfg.Delay)
		}
		if !cfg.RetryOnFailure {
			t.Error("expected retry enabled")
		}
		if cfg.OutputFormat != config.OutputJSON {
			t.Errorf("format = %q, want json", cfg.OutputFormat)
		}
		if cfg.DBPath != "/tmp/recon.db" {
			t.Errorf("db path = %q, want /tmp/recon.db", cfg.DBPath)
		}
	})

	t.Run("invalid format fails validation", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("format", "xml"); err != nil {
			t.Fatalf("failed to set format: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := cfg.Validate(); err == nil {
			t.Error("expected validation error for unknown format")
		}
	})

	t.Run("explicit missing config file is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("config", filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
			t.Fatalf("failed to set config: %v", err)
		}

		if _, err := buildConfig(cmd, []string{"https://example.com"}); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})

	t.Run("loads explicit config file", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "site.yaml")
		content := "sites:\n  example.com:\n    cookie: \"session=abc\"\n    depth: 2\n"
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("config", configPath); err != nil {
			t.Fatalf("failed to set config: %v", err)
		}

		cfg, err := buildConfig(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		site := cfg.Sites.GetSiteConfig("example.com")
		if site.Cookie != "session=abc" {
			t.Errorf("cookie = %q, want session=abc", site.Cookie)
		}
		if site.Depth != 2 {
			t.Errorf("depth = %d, want 2", site.Depth)
		}
	})
}

// TestBuildFetcher tests fetcher selection.
func TestBuildFetcher(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	if f := buildFetcher(cfg, config.SiteConfig{}); f == nil {
		t.Error("expected HTTP fetcher")
	}

	cfg.UseJSRendering = true
	if f := buildFetcher(cfg, config.SiteConfig{}); f == nil {
		t.Error("expected render fetcher")
	}
}

// TestBuildDiscoverers tests auxiliary pass assembly.
func TestBuildDiscoverers(t *testing.T) {
	t.Parallel()

	logger := slog.Default()
	seed := mustParseURL(t, "https://example.com")

	t.Run("nil when all disabled", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		runner, err := buildDiscoverers(cfg, "example.com", seed, engine.NewHostThrottle(0), engine.NewRequestBudget(0), logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if runner != nil {
			t.Error("expected nil runner with no discoverers enabled")
		}
	})

	t.Run("builds runner with built-in wordlists", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.EnableSubdomainEnum = true
		cfg.EnableEndpointGuess = true
		cfg.EnableHiddenFileScan = true

		runner, err := buildDiscoverers(cfg, "example.com", seed, engine.NewHostThrottle(0), engine.NewRequestBudget(0), logger)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if runner == nil {
			t.Error("expected a runner")
		}
	})

	t.Run("missing wordlist file is an error", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		cfg.EnableEndpointGuess = true
		cfg.EndpointWordlist = filepath.Join(t.TempDir(), "missing.txt")

		if _, err := buildDiscoverers(cfg, "example.com", seed, engine.NewHostThrottle(0), engine.NewRequestBudget(0), logger); err == nil {
			t.Error("expected error for missing wordlist")
		}
	})
}

// TestOutputReport tests report serialization to files.
func TestOutputReport(t *testing.T) {
	t.Parallel()

	newReport := func() *model.CrawlReport {
		r := model.NewCrawlReport("https://example.com")
		r.Summary.PagesCrawled = 1
		return r
	}

	t.Run("writes JSON file with restricted permissions", func(t *testing.T) {
		t.Parallel()

		outPath := filepath.Join(t.TempDir(), "out", "report.json")
		cfg := config.NewConfig()
		cfg.OutputFormat = config.OutputJSON
		cfg.OutputFile = outPath

		if err := outputReport(cfg, newReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		var decoded model.CrawlReport
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		info, err := os.Stat(outPath)
		if err != nil {
			t.Fatalf("failed to stat report: %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("file mode = %o, want 600", perm)
		}
	})

	t.Run("writes markdown file", func(t *testing.T) {
		t.Parallel()

		outPath := filepath.Join(t.TempDir(), "report.md")
		cfg := config.NewConfig()
		cfg.OutputFormat = config.OutputMarkdown
		cfg.OutputFile = outPath

		if err := outputReport(cfg, newReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if !strings.Contains(string(data), "# Crawl Report") {
			t.Error("expected markdown header")
		}
	})
}

// TestRunCrawlInvalidSeed tests early failure on unusable seeds.
func TestRunCrawlInvalidSeed(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.SeedURL = "://not-a-url"
	cfg.Sites = &config.File{}

	if err := runCrawl(context.Background(), cfg, slog.Default()); err == nil {
		t.Error("expected error for invalid seed URL")
	}
}

// TestRunCrawlUnreachableSeed tests that a seed that cannot be fetched at
// all fails the run instead of producing an empty report.
func TestRunCrawlUnreachableSeed(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.SeedURL = "http://127.0.0.1:1/"
	cfg.Sites = &config.File{}
	cfg.RespectRobots = false
	cfg.Timeout = 2 * time.Second
	cfg.RetryOnFailure = false
	cfg.OutputFile = filepath.Join(t.TempDir(), "report.txt")

	err := runCrawl(context.Background(), cfg, slog.Default())
	if err == nil {
		t.Fatal("expected error for unreachable seed host")
	}
	if !strings.Contains(err.Error(), "unreachable") {
		t.Errorf("error = %q, want mention of unreachable seed", err)
	}
}

// mustParseURL is a test helper for URL literals.
func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", raw, err)
	}
	return u
}
