package discover

import (
	"context"
	"log/slog"
	"net"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/webrecon/webrecon/internal/model"
)

// Subdomain enumeration methods.
const (
	// MethodDNS resolves each candidate and reports only the ones that
	// answer, plus hosts found in the apex domain's CNAME/MX/NS records.
	MethodDNS = "dns"

	// MethodWordlist reports every candidate without prior resolution,
	// trying each one over HTTP when probing is configured.
	MethodWordlist = "wordlist"
)

// resolver is the subset of net.Resolver the enumerator needs. Tests
// substitute a scripted implementation.
type resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
	LookupCNAME(ctx context.Context, host string) (string, error)
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupNS(ctx context.Context, name string) ([]*net.NS, error)
}

// SubdomainEnumerator discovers subdomains of the crawl target's
// registrable domain.
type SubdomainEnumerator struct {
	domain      string
	methods     []string
	words       []string
	resolver    resolver
	scheme      string
	prober      *prober
	concurrency int
	logger      *slog.Logger
}

// SubdomainOption configures a SubdomainEnumerator.
type SubdomainOption func(*SubdomainEnumerator)

// WithSubdomainResolver overrides the DNS resolver.
func WithSubdomainResolver(r resolver) SubdomainOption {
	return func(e *SubdomainEnumerator) {
		e.resolver = r
	}
}

// WithSubdomainConcurrency bounds parallel DNS lookups.
func WithSubdomainConcurrency(n int) SubdomainOption {
	return func(e *SubdomainEnumerator) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithSubdomainLogger sets a custom logger.
func WithSubdomainLogger(logger *slog.Logger) SubdomainOption {
	return func(e *SubdomainEnumerator) {
		e.logger = logger
	}
}

// WithSubdomainHTTPProbing enables HTTP reachability probing of
// wordlist-mode candidates. scheme is the seed's scheme; the probe
// options carry the shared throttle and budget so candidate probes count
// like any other request.
func WithSubdomainHTTPProbing(scheme string, opts ...GuesserOption) SubdomainOption {
	return func(e *SubdomainEnumerator) {
		e.scheme = scheme
		e.prober = newProber(applyGuesserOptions(opts))
	}
}

// NewSubdomainEnumerator creates an enumerator for domain using the given
// methods ("dns", "wordlist") and candidate words.
func NewSubdomainEnumerator(domain string, methods, words []string, opts ...SubdomainOption) *SubdomainEnumerator {
	e := &SubdomainEnumerator{
		domain:      domain,
		methods:     methods,
		words:       dedupeStrings(words),
		resolver:    net.DefaultResolver,
		concurrency: 10,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements Discoverer.
func (e *SubdomainEnumerator) Name() string {
	return "subdomain-enumeration"
}

// Do runs the configured enumeration methods and appends the findings to
// the report, deduplicated by hostname with resolved findings winning.
func (e *SubdomainEnumerator) Do(ctx context.Context, report *model.CrawlReport) error {
	findings := make(map[string]model.SubdomainFinding)

	for _, method := range e.methods {
		switch method {
		case MethodDNS:
			for _, f := range e.dnsEnumeration(ctx) {
				if prev, ok := findings[f.Host]; !ok || (!prev.Resolved && f.Resolved) {
					findings[f.Host] = f
				}
			}
		case MethodWordlist:
			for _, f := range e.wordlistEnumeration(ctx) {
				if _, ok := findings[f.Host]; !ok {
					findings[f.Host] = f
				}
			}
		default:
			e.logger.Warn("unknown subdomain enumeration method", "method", method)
		}
	}

	hosts := make([]string, 0, len(findings))
	for host := range findings {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	for _, host := range hosts {
		report.Subdomains = append(report.Subdomains, findings[host])
	}
	report.Summary.SubdomainsFound = len(report.Subdomains)

	e.logger.Info("subdomain enumeration finished",
		"domain", e.domain,
		"found", len(findings),
	)
	return nil
}

// dnsEnumeration resolves each wordlist candidate and inspects the apex
// domain's CNAME, MX and NS records for additional in-domain hosts.
func (e *SubdomainEnumerator) dnsEnumeration(ctx context.Context) []model.SubdomainFinding {
	results := make([]*model.SubdomainFinding, len(e.words))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, word := range e.words {
		g.Go(func() error {
			host := word + "." + e.domain
			lookupCtx, cancel := context.WithTimeout(gctx, 3*time.Second)
			defer cancel()
			if addrs, err := e.resolver.LookupHost(lookupCtx, host); err == nil && len(addrs) > 0 {
				results[i] = &model.SubdomainFinding{Host: host, Method: MethodDNS, Resolved: true}
			}
			return nil
		})
	}
	_ = g.Wait()

	var findings []model.SubdomainFinding
	for _, f := range results {
		if f != nil {
			findings = append(findings, *f)
		}
	}
	findings = append(findings, e.apexRecords(ctx)...)
	return findings
}

// apexRecords collects hosts referenced by the apex domain's own records.
func (e *SubdomainEnumerator) apexRecords(ctx context.Context) []model.SubdomainFinding {
	lookupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var findings []model.SubdomainFinding
	add := func(host string) {
		host = strings.TrimSuffix(strings.ToLower(host), ".")
		if host == "" || host == e.domain {
			return
		}
		if !strings.HasSuffix(host, "."+e.domain) {
			return
		}
		findings = append(findings, model.SubdomainFinding{Host: host, Method: MethodDNS, Resolved: true})
	}

	if cname, err := e.resolver.LookupCNAME(lookupCtx, e.domain); err == nil {
		add(cname)
	}
	if mxs, err := e.resolver.LookupMX(lookupCtx, e.domain); err == nil {
		for _, mx := range mxs {
			add(mx.Host)
		}
	}
	if nss, err := e.resolver.LookupNS(lookupCtx, e.domain); err == nil {
		for _, ns := range nss {
			add(ns.Host)
		}
	}
	return findings
}

// wordlistEnumeration reports every candidate without resolving it. When
// HTTP probing is configured each candidate is tried over HTTP and its
// reachability recorded; candidates are reported either way, since an
// unreachable-today host is still a lead worth keeping.
func (e *SubdomainEnumerator) wordlistEnumeration(ctx context.Context) []model.SubdomainFinding {
	findings := make([]model.SubdomainFinding, len(e.words))
	for i, word := range e.words {
		findings[i] = model.SubdomainFinding{
			Host:   word + "." + e.domain,
			Method: MethodWordlist,
		}
	}
	if e.prober == nil {
		return findings
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i := range findings {
		g.Go(func() error {
			base := &url.URL{Scheme: e.scheme, Host: findings[i].Host, Path: "/"}
			if hit := e.prober.probeOne(gctx, base, "/"); hit != nil {
				findings[i].Reachable = true
				findings[i].StatusCode = hit.statusCode
			}
			return nil
		})
	}
	_ = g.Wait()
	return findings
}
