package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/webrecon/webrecon/internal/config"
	"github.com/webrecon/webrecon/internal/database"
	"github.com/webrecon/webrecon/internal/discover"
	"github.com/webrecon/webrecon/internal/engine"
	"github.com/webrecon/webrecon/internal/extract"
	"github.com/webrecon/webrecon/internal/fetch"
	"github.com/webrecon/webrecon/internal/log"
	"github.com/webrecon/webrecon/internal/model"
	"github.com/webrecon/webrecon/internal/report"
	"github.com/webrecon/webrecon/internal/robots"
	"github.com/webrecon/webrecon/internal/scope"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <seed-url>",
		Short: "Map the attack surface of a web application",
		Long: `Crawl fetches the target site breadth-first from the seed URL and builds
an attack-surface report:

- Pages with titles, status codes, response headers, and cookies
- Forms with field inventories, hidden fields, and CSRF tokens
- API endpoints from HTML and JavaScript analysis
- External scripts and WebSocket URLs

Auxiliary discoverers run after the crawl when enabled:

- Subdomain enumeration (DNS and wordlist)
- Endpoint guessing against common API paths
- Hidden file probing (.env, .git/config, backups)

All requests are read-only. robots.txt is respected by default; pass
--override-robots only when the engagement explicitly permits it.

Examples:
  # Crawl with defaults (depth 5, 1000 pages, robots respected)
  webrecon crawl https://target.example.com

  # Deep crawl with JS rendering and all auxiliary discoverers
  webrecon crawl --js-rendering --enable-subdomain-enum \
    --enable-endpoint-guess --enable-hidden-file-scan \
    https://target.example.com

  # JSON report to a file, plus SQLite history
  webrecon crawl -f json -o report.json --db recon.db https://target.example.com

  # Authenticated crawl using a site config file
  webrecon crawl -c .webrecon https://target.example.com

Configuration file (.webrecon) example:
  sites:
    target.example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      depth: 3`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("max-depth", "d", config.DefaultMaxDepth,
		"Maximum link distance from the seed URL")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to fetch")
	cmd.Flags().DurationP("delay", "D", config.DefaultDelay,
		"Minimum delay between requests to one host")
	cmd.Flags().IntP("concurrency", "n", config.DefaultConcurrency,
		"Number of crawl workers")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Per-request timeout")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().Bool("retry", false,
		"Retry failed fetches once with backoff")
	cmd.Flags().Bool("include-subdomains", false,
		"Widen scope to every host under the seed's registrable domain")

	// robots.txt flags
	cmd.Flags().Bool("respect-robots", true,
		"Honor robots.txt disallow rules and Crawl-delay")
	cmd.Flags().Bool("override-robots", false,
		"Fetch robots-disallowed URLs anyway (denials are still recorded)")

	// JS rendering flags
	cmd.Flags().Bool("js-rendering", false,
		"Fetch pages through a headless browser so client-rendered content is visible")
	cmd.Flags().Bool("headless", true,
		"Run the rendering browser without a display (only with --js-rendering)")
	cmd.Flags().Bool("disable-js-analysis", false,
		"Skip static analysis of inline and external JavaScript")

	// Auxiliary discoverer flags
	cmd.Flags().Bool("enable-subdomain-enum", false,
		"Enumerate subdomains after the crawl")
	cmd.Flags().Bool("enable-endpoint-guess", false,
		"Probe common API endpoint paths after the crawl")
	cmd.Flags().Bool("enable-hidden-file-scan", false,
		"Probe for hidden and sensitive files after the crawl")
	cmd.Flags().String("subdomain-wordlist", "",
		"Wordlist file for subdomain enumeration (default: built-in list)")
	cmd.Flags().String("endpoint-wordlist", "",
		"Wordlist file for endpoint guessing (default: built-in list)")
	cmd.Flags().String("hidden-file-wordlist", "",
		"Wordlist file for hidden file scanning (default: built-in list)")
	cmd.Flags().StringSlice("subdomain-methods", []string{"dns", "wordlist"},
		"Subdomain enumeration methods (dns, wordlist)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Site configuration file path (default: .webrecon in current or home directory)")

	// Report flags
	cmd.Flags().StringP("format", "f", string(config.OutputText),
		"Report format: text, json, or markdown")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().String("db", "",
		"Additionally save the report to a SQLite database at this path")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Signal-driven cancellation. On SIGINT/SIGTERM the crawl stops
	// accepting work, drains, and still writes a partial report.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.SeedURL = args[0]

	var err error

	if cfg.MaxDepth, err = cmd.Flags().GetInt("max-depth"); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = cmd.Flags().GetInt("max-pages"); err != nil {
		return nil, err
	}
	if cfg.Delay, err = cmd.Flags().GetDuration("delay"); err != nil {
		return nil, err
	}
	if cfg.Concurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.RetryOnFailure, err = cmd.Flags().GetBool("retry"); err != nil {
		return nil, err
	}
	if cfg.IncludeSubdomains, err = cmd.Flags().GetBool("include-subdomains"); err != nil {
		return nil, err
	}
	if cfg.RespectRobots, err = cmd.Flags().GetBool("respect-robots"); err != nil {
		return nil, err
	}
	if cfg.OverrideRobots, err = cmd.Flags().GetBool("override-robots"); err != nil {
		return nil, err
	}
	if cfg.UseJSRendering, err = cmd.Flags().GetBool("js-rendering"); err != nil {
		return nil, err
	}
	if cfg.Headless, err = cmd.Flags().GetBool("headless"); err != nil {
		return nil, err
	}
	if cfg.DisableJSAnalysis, err = cmd.Flags().GetBool("disable-js-analysis"); err != nil {
		return nil, err
	}
	if cfg.EnableSubdomainEnum, err = cmd.Flags().GetBool("enable-subdomain-enum"); err != nil {
		return nil, err
	}
	if cfg.EnableEndpointGuess, err = cmd.Flags().GetBool("enable-endpoint-guess"); err != nil {
		return nil, err
	}
	if cfg.EnableHiddenFileScan, err = cmd.Flags().GetBool("enable-hidden-file-scan"); err != nil {
		return nil, err
	}
	if cfg.SubdomainWordlist, err = cmd.Flags().GetString("subdomain-wordlist"); err != nil {
		return nil, err
	}
	if cfg.EndpointWordlist, err = cmd.Flags().GetString("endpoint-wordlist"); err != nil {
		return nil, err
	}
	if cfg.HiddenFileWordlist, err = cmd.Flags().GetString("hidden-file-wordlist"); err != nil {
		return nil, err
	}
	if cfg.SubdomainMethods, err = cmd.Flags().GetStringSlice("subdomain-methods"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = cmd.Flags().GetString("config"); err != nil {
		return nil, err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}
	cfg.OutputFormat = config.OutputFormat(format)

	if cfg.OutputFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if cfg.DBPath, err = cmd.Flags().GetString("db"); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Load site-specific configurations. An explicitly given path must
	// exist; the default search silently falls back to an empty config.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Sites, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.Sites = &config.File{Sites: make(map[string]config.SiteConfig)}
	}

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// runCrawl wires the crawl engine from the configuration and executes it.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	seed, err := url.Parse(cfg.SeedURL)
	if err != nil {
		return fmt.Errorf("invalid seed URL %q: %w", cfg.SeedURL, err)
	}

	siteCfg := cfg.Sites.GetSiteConfig(seed.Hostname())
	maxDepth := cfg.MaxDepth
	if siteCfg.Depth > 0 {
		maxDepth = siteCfg.Depth
	}

	policy, err := scope.NewScopePolicy(seed, cfg.IncludeSubdomains, maxDepth, cfg.MaxPages)
	if err != nil {
		return fmt.Errorf("failed to build crawl scope: %w", err)
	}

	normalizer, err := scope.NewNormalizer(policy, cfg.SessionParamDenylist, cfg.IgnoredExtensions)
	if err != nil {
		return fmt.Errorf("failed to build URL normalizer: %w", err)
	}

	csrfPattern, err := regexp.Compile(cfg.CSRFFieldPattern)
	if err != nil {
		return fmt.Errorf("invalid CSRF field pattern: %w", err)
	}

	fetcher := buildFetcher(cfg, siteCfg)

	// Crawl workers and auxiliary probers share one per-host throttle and
	// one request budget: probing is part of the run, not a second
	// unthrottled traffic stream.
	throttle := engine.NewHostThrottle(cfg.Delay)
	budget := engine.NewRequestBudget(cfg.MaxPages)

	opts := []engine.SchedulerOption{
		engine.WithWorkers(cfg.Concurrency),
		engine.WithThrottle(throttle),
		engine.WithBudget(budget),
		engine.WithRetry(cfg.RetryOnFailure),
		engine.WithJSAnalysis(!cfg.DisableJSAnalysis),
		engine.WithExtractor(extract.NewHTMLExtractor(csrfPattern)),
		engine.WithSchedulerLogger(logger),
	}

	if cfg.RespectRobots {
		robotsPolicy := robots.New(
			&http.Client{Timeout: cfg.Timeout},
			cfg.UserAgent,
			robots.WithLogger(logger),
			robots.WithEnforcement(!cfg.OverrideRobots),
		)
		opts = append(opts, engine.WithRobotsPolicy(robotsPolicy))
	}

	runner, err := buildDiscoverers(cfg, policy.RegistrableDomain, seed, throttle, budget, logger)
	if err != nil {
		return err
	}
	if runner != nil {
		opts = append(opts, engine.WithDiscoverers(runner))
	}

	logger.Info("starting crawl",
		"seed", cfg.SeedURL,
		"maxDepth", maxDepth,
		"maxPages", cfg.MaxPages,
		"workers", cfg.Concurrency,
		"jsRendering", cfg.UseJSRendering,
	)

	fmt.Printf("Crawling %s...\n", cfg.SeedURL)
	startTime := time.Now()

	sched := engine.NewScheduler(fetcher, normalizer, opts...)
	crawlReport, err := sched.Run(ctx, cfg.SeedURL)
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}

	// A run that could not fetch even the seed is a startup failure, not
	// a crawl with recorded per-URL failures.
	if crawlReport.Summary.PagesCrawled == 0 && !crawlReport.Summary.Cancelled {
		for _, f := range crawlReport.Failures {
			if f.URL == crawlReport.Summary.SeedURL {
				return fmt.Errorf("seed URL unreachable: %s (%s)", f.URL, f.Reason)
			}
		}
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Crawl completed in %s (%d pages)\n\n",
		elapsed.Round(time.Millisecond), crawlReport.Summary.PagesCrawled)

	if err := outputReport(cfg, crawlReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.DBPath != "" {
		if err := saveReport(ctx, cfg.DBPath, crawlReport, logger); err != nil {
			logger.Error("failed to save report", "db", cfg.DBPath, "error", err)
		}
	}

	return nil
}

// buildFetcher selects the plain HTTP fetcher or the rendering fetcher and
// applies pre-supplied credentials from the site configuration.
func buildFetcher(cfg *config.Config, siteCfg config.SiteConfig) fetch.Fetcher {
	if cfg.UseJSRendering {
		return fetch.NewRenderFetcher(fetch.RenderOptions{
			UserAgent:          cfg.UserAgent,
			Headers:            siteCfg.Headers,
			Cookie:             siteCfg.Cookie,
			Timeout:            cfg.Timeout,
			MaxBodySize:        cfg.MaxBodySize,
			Headless:           cfg.Headless,
			ConcurrentSessions: cfg.Concurrency,
		})
	}

	return fetch.NewHTTPFetcher(fetch.Options{
		UserAgent:   cfg.UserAgent,
		Headers:     siteCfg.Headers,
		Cookie:      siteCfg.Cookie,
		Timeout:     cfg.Timeout,
		MaxBodySize: cfg.MaxBodySize,
	})
}

// buildDiscoverers assembles the auxiliary discovery runner.
// It returns nil when no discoverer is enabled. The throttle and budget
// are the crawl engine's own, so probe traffic is spaced and counted
// exactly like page fetches.
func buildDiscoverers(cfg *config.Config, domain string, seed *url.URL, throttle *engine.HostThrottle, budget *engine.RequestBudget, logger *slog.Logger) (*discover.Runner, error) {
	if !cfg.EnableSubdomainEnum && !cfg.EnableEndpointGuess && !cfg.EnableHiddenFileScan {
		return nil, nil
	}

	// A failed discoverer never voids the crawl results that were already
	// collected, so the runner continues past individual pass failures.
	runner := discover.NewRunner(
		discover.WithLogger(logger),
		discover.WithContinueOnError(true),
	)

	probeOpts := []discover.GuesserOption{
		discover.WithProbeTimeout(cfg.Timeout),
		discover.WithProbeUserAgent(cfg.UserAgent),
		discover.WithProbeConcurrency(cfg.Concurrency),
		discover.WithProbeThrottle(throttle),
		discover.WithProbeBudget(budget),
		discover.WithProbeLogger(logger),
	}

	if cfg.EnableSubdomainEnum {
		words, err := discover.SubdomainWords(cfg.SubdomainWordlist)
		if err != nil {
			return nil, fmt.Errorf("failed to load subdomain wordlist: %w", err)
		}
		runner.Add(discover.NewSubdomainEnumerator(
			domain, cfg.SubdomainMethods, words,
			discover.WithSubdomainLogger(logger),
			discover.WithSubdomainConcurrency(cfg.Concurrency),
			discover.WithSubdomainHTTPProbing(seed.Scheme, probeOpts...),
		))
	}

	if cfg.EnableEndpointGuess {
		words, err := discover.EndpointWords(cfg.EndpointWordlist)
		if err != nil {
			return nil, fmt.Errorf("failed to load endpoint wordlist: %w", err)
		}
		runner.Add(discover.NewEndpointGuesser(seed, words, probeOpts...))
	}

	if cfg.EnableHiddenFileScan {
		words, err := discover.HiddenFileWords(cfg.HiddenFileWordlist)
		if err != nil {
			return nil, fmt.Errorf("failed to load hidden file wordlist: %w", err)
		}
		runner.Add(discover.NewHiddenFileScanner(seed, words, probeOpts...))
	}

	return runner, nil
}

// outputReport writes the crawl report in the requested format.
func outputReport(cfg *config.Config, crawlReport *model.CrawlReport) error {
	var output *os.File
	if cfg.OutputFile != "" {
		dir := filepath.Dir(cfg.OutputFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports may contain session cookies and auth headers observed
		// during the crawl, so the file is owner-readable only.
		f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var w report.Writer
	switch cfg.OutputFormat {
	case config.OutputJSON:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case config.OutputMarkdown:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := w.Write(crawlReport)
	return err
}

// saveReport persists the report to the SQLite history database.
func saveReport(ctx context.Context, dbPath string, crawlReport *model.CrawlReport, logger *slog.Logger) error {
	db, err := database.Open(dbPath, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	// WithoutCancel so a signal-cancelled run still persists its partial
	// report.
	id, err := db.SaveReport(context.WithoutCancel(ctx), crawlReport)
	if err != nil {
		return err
	}

	logger.Info("report saved", "db", dbPath, "id", id)
	return nil
}
