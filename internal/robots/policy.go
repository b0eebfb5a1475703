package robots

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/webrecon/webrecon/internal/model"
)

// maxRobotsSize caps the robots.txt body read. Real-world files are a few
// kilobytes; the cap guards against a hostile endpoint streaming forever.
const maxRobotsSize = 512 * 1024

// Decision is the policy's answer for one URL.
type Decision struct {
	// Allowed reports whether the crawl may fetch the URL. It is always
	// true when enforcement is off; MatchedRule still carries the rule
	// that would have denied it.
	Allowed bool

	// MatchedRule is the Disallow pattern that matched the URL's path,
	// empty when no rule applies.
	MatchedRule string

	// CrawlDelay is the host's declared delay, zero when absent.
	CrawlDelay time.Duration
}

// Policy answers robots.txt queries for every host touched by a run.
// It is safe for concurrent use by all crawl workers.
type Policy struct {
	client    *http.Client
	userAgent string

	// enforce controls whether Disallow rules actually block fetches.
	// Observation happens in both modes.
	enforce bool

	logger *slog.Logger

	mu    sync.Mutex
	hosts map[string]*hostRules
}

// hostRules caches one host's parsed ruleset and raw observation.
type hostRules struct {
	group       *robotstxt.Group
	observation model.RobotsObservation
}

// Option configures a Policy.
type Option func(*Policy)

// WithLogger sets the logger used for rule observations.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Policy) {
		p.logger = logger
	}
}

// WithEnforcement controls whether Disallow rules block fetches.
// Pass false for override mode: rules are parsed and logged but every
// URL is allowed.
func WithEnforcement(enforce bool) Option {
	return func(p *Policy) {
		p.enforce = enforce
	}
}

// New creates a Policy that fetches robots.txt with the given client and
// evaluates rules for the given user agent.
func New(client *http.Client, userAgent string, opts ...Option) *Policy {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	p := &Policy{
		client:    client,
		userAgent: userAgent,
		enforce:   true,
		hosts:     make(map[string]*hostRules),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Check evaluates the policy for one URL, fetching and parsing the host's
// robots.txt on first contact.
func (p *Policy) Check(ctx context.Context, target *url.URL) Decision {
	rules := p.rulesFor(ctx, target)

	d := Decision{Allowed: true}
	if rules.observation.CrawlDelay > 0 {
		d.CrawlDelay = time.Duration(rules.observation.CrawlDelay * float64(time.Second))
	}

	urlPath := target.Path
	if urlPath == "" {
		urlPath = "/"
	}
	if target.RawQuery != "" {
		urlPath += "?" + target.RawQuery
	}

	if rules.group != nil && !rules.group.Test(urlPath) {
		d.MatchedRule = longestMatch(rules.observation.Disallow, urlPath)
		if p.enforce {
			d.Allowed = false
		}
	}

	return d
}

// Observations returns the raw robots.txt observations collected so far,
// one per contacted host.
func (p *Policy) Observations() []model.RobotsObservation {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]model.RobotsObservation, 0, len(p.hosts))
	for _, r := range p.hosts {
		out = append(out, r.observation)
	}
	return out
}

// rulesFor returns the cached ruleset for the target's host, fetching and
// parsing it on first use.
func (p *Policy) rulesFor(ctx context.Context, target *url.URL) *hostRules {
	host := strings.ToLower(target.Host)

	p.mu.Lock()
	if cached, ok := p.hosts[host]; ok {
		p.mu.Unlock()
		return cached
	}
	p.mu.Unlock()

	rules := p.fetchRules(ctx, target.Scheme, host)

	p.mu.Lock()
	defer p.mu.Unlock()
	// Another worker may have raced us here; first write wins so that all
	// workers see one consistent ruleset per host.
	if cached, ok := p.hosts[host]; ok {
		return cached
	}
	p.hosts[host] = rules
	return rules
}

// fetchRules retrieves and parses robots.txt for one host.
// Any failure produces the empty ruleset: the crawl must not be blocked
// by a missing or broken robots.txt, only by an explicit Disallow.
func (p *Policy) fetchRules(ctx context.Context, scheme, host string) *hostRules {
	rules := &hostRules{observation: model.RobotsObservation{Host: host}}

	robotsURL := scheme + "://" + host + "/robots.txt"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		rules.observation.Unreachable = true
		return rules
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("robots.txt unreachable, treating as empty ruleset",
			"host", host, "error", err)
		rules.observation.Unreachable = true
		return rules
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Debug("no robots.txt", "host", host, "status", resp.StatusCode)
		rules.observation.Unreachable = true
		return rules
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsSize))
	if err != nil {
		rules.observation.Unreachable = true
		return rules
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		p.logger.Warn("robots.txt unparsable, treating as empty ruleset",
			"host", host, "error", err)
		rules.observation.Unreachable = true
		return rules
	}
	rules.group = data.FindGroup(p.userAgent)

	p.observe(body, &rules.observation)
	p.logger.Info("robots.txt parsed",
		"host", host,
		"disallow_rules", len(rules.observation.Disallow),
		"allow_rules", len(rules.observation.Allow),
		"crawl_delay", rules.observation.CrawlDelay,
		"enforced", p.enforce,
	)

	return rules
}

// observe scans the raw directives so the report can show what the site
// declared, independent of enforcement.
func (p *Policy) observe(body []byte, obs *model.RobotsObservation) {
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}

		directive, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(directive)) {
		case "disallow":
			if value != "" {
				obs.Disallow = append(obs.Disallow, value)
			}
		case "allow":
			if value != "" {
				obs.Allow = append(obs.Allow, value)
			}
		case "crawl-delay":
			if delay, err := strconv.ParseFloat(value, 64); err == nil && delay > obs.CrawlDelay {
				obs.CrawlDelay = delay
			}
		}
	}
}

// longestMatch returns the longest pattern matching urlPath, for denial
// attribution in the report. Patterns support the robots.txt '*' wildcard
// and '$' end anchor.
func longestMatch(patterns []string, urlPath string) string {
	best := ""
	for _, pat := range patterns {
		if len(pat) > len(best) && patternMatches(pat, urlPath) {
			best = pat
		}
	}
	return best
}

// patternMatches implements robots.txt path matching: the pattern is a
// prefix match where '*' matches any run of characters and a trailing '$'
// anchors the end of the path.
func patternMatches(pattern, urlPath string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	if anchored {
		pattern = strings.TrimSuffix(pattern, "$")
	}

	parts := strings.Split(pattern, "*")
	pos := 0
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i == 0 {
			if !strings.HasPrefix(urlPath, part) {
				return false
			}
			pos = len(part)
			continue
		}
		idx := strings.Index(urlPath[pos:], part)
		if idx < 0 {
			return false
		}
		pos += idx + len(part)
	}

	if anchored {
		// The last literal part must reach the end of the path.
		return pos == len(urlPath) || (len(parts) > 0 && parts[len(parts)-1] == "")
	}
	return true
}
