package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These are chosen to be polite against the target by default; a crawl
// with defaults issues at most one request per second per host.
const (
	// DefaultMaxDepth limits the link distance from the seed URL.
	// Five levels reaches the vast majority of site content while keeping
	// pathological link structures (calendars, faceted search) bounded.
	DefaultMaxDepth = 5

	// DefaultMaxPages caps total fetches per run. This is the primary
	// guard against runaway crawls on infinitely-generating sites.
	DefaultMaxPages = 1000

	// DefaultDelay is the minimum time between requests to one host.
	// robots.txt Crawl-delay overrides this when it is larger.
	DefaultDelay = 1 * time.Second

	// DefaultConcurrency is the worker pool size. Since the per-host delay
	// serializes requests to a single host, concurrency above one only
	// helps when subdomains or auxiliary probes put multiple hosts in play.
	DefaultConcurrency = 5

	// DefaultTimeout is the per-request timeout. It covers the full fetch
	// including JS-rendering wait when rendering is enabled.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies the crawler in target logs. Operators of
	// tested systems must be able to attribute scanner traffic.
	DefaultUserAgent = "webrecon/1.0 (+https://github.com/webrecon/webrecon)"

	// DefaultMaxBodySize caps response bodies to prevent memory exhaustion
	// from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is used for XDG directory paths.
	AppName = "webrecon"
)

// OutputFormat selects the report serialization.
type OutputFormat string

// Supported report output formats.
const (
	OutputText     OutputFormat = "text"
	OutputJSON     OutputFormat = "json"
	OutputMarkdown OutputFormat = "markdown"
)

// Config holds all options for a crawl run.
//
// Design decision: a single flat struct instead of nested sub-configs.
// The option count is manageable and flat fields map one-to-one onto CLI
// flags, which keeps cmd/ wiring mechanical.
type Config struct {
	// SeedURL is the starting point of the crawl. Required.
	SeedURL string

	// MaxDepth is the maximum link distance from the seed.
	MaxDepth int

	// MaxPages is the maximum number of pages to fetch.
	MaxPages int

	// Delay is the default minimum interval between requests to one host.
	Delay time.Duration

	// Concurrency is the number of crawl workers.
	Concurrency int

	// Timeout is the per-fetch timeout.
	Timeout time.Duration

	// RespectRobots enables robots.txt enforcement. When OverrideRobots is
	// also set, rules are parsed and logged but not enforced.
	RespectRobots bool

	// OverrideRobots fetches robots-disallowed URLs anyway. The denial is
	// still recorded so the report shows which rules were overridden.
	OverrideRobots bool

	// IncludeSubdomains widens the scope to the seed's registrable domain.
	IncludeSubdomains bool

	// UseJSRendering fetches pages through a headless browser so that
	// client-rendered content and dynamically inserted links are visible.
	UseJSRendering bool

	// Headless controls browser visibility when JS rendering is enabled.
	// Disabling it is useful for debugging rendering issues.
	Headless bool

	// RetryOnFailure permits a single retry with backoff per failed fetch.
	// Off by default to avoid amplifying load against the target.
	RetryOnFailure bool

	// UserAgent is sent with every request and matched against robots.txt
	// user-agent groups.
	UserAgent string

	// MaxBodySize caps response body reads in bytes.
	MaxBodySize int64

	// OutputFormat selects the report format written to OutputFile/stdout.
	OutputFormat OutputFormat

	// OutputFile is the report destination. Empty means stdout.
	OutputFile string

	// DBPath, when set, additionally writes the report to a SQLite
	// database at this path.
	DBPath string

	// Auxiliary discoverers. Each is independently toggleable and shares
	// the crawl's page budget and politeness limits.
	EnableSubdomainEnum   bool
	EnableEndpointGuess   bool
	EnableHiddenFileScan  bool
	DisableJSAnalysis     bool
	SubdomainWordlist     string
	EndpointWordlist      string
	HiddenFileWordlist    string
	SubdomainMethods      []string
	SessionParamDenylist  string
	CSRFFieldPattern      string
	IgnoredExtensions     []string

	// ConfigFilePath is an explicit site-config file path. Empty triggers
	// the default search (.webrecon in CWD, then home directory).
	ConfigFilePath string

	// Sites holds per-site credentials loaded from the config file.
	Sites *File

	// Verbose switches logging from Warn to Debug level.
	Verbose bool
}

// NewConfig returns a Config populated with defaults.
// Callers override individual fields from CLI flags afterwards.
func NewConfig() *Config {
	return &Config{
		MaxDepth:      DefaultMaxDepth,
		MaxPages:      DefaultMaxPages,
		Delay:         DefaultDelay,
		Concurrency:   DefaultConcurrency,
		Timeout:       DefaultTimeout,
		RespectRobots: true,
		Headless:      true,
		UserAgent:     DefaultUserAgent,
		MaxBodySize:   DefaultMaxBodySize,
		OutputFormat:  OutputText,
		SubdomainMethods: []string{"dns", "wordlist"},
		SessionParamDenylist: `(?i)^(sessionid|session_id|phpsessid|jsessionid|sid|token|csrf_token)$`,
		CSRFFieldPattern:     `(?i)(csrf|xsrf|_token|authenticity_token)`,
		IgnoredExtensions: []string{
			".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".webp",
			".css", ".woff", ".woff2", ".ttf", ".eot",
			".pdf", ".zip", ".tar", ".gz", ".exe", ".dmg",
			".mp3", ".mp4", ".avi", ".mov",
		},
	}
}

// XDGDataDir returns the XDG data directory for webrecon.
// On Linux this is ~/.local/share/webrecon.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for webrecon.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It is called once after CLI parsing, before any network activity, so
// misconfiguration fails fast with a clear message.
func (c *Config) Validate() error {
	if c.SeedURL == "" {
		return ErrNoSeed
	}
	if c.MaxDepth < 0 {
		return ErrInvalidDepth
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	switch c.OutputFormat {
	case OutputText, OutputJSON, OutputMarkdown:
	default:
		return ErrInvalidOutputFormat
	}
	for _, m := range c.SubdomainMethods {
		if m != "dns" && m != "wordlist" {
			return ErrInvalidSubdomainMethod
		}
	}
	return nil
}
