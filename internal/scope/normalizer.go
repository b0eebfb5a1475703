package scope

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/webrecon/webrecon/internal/model"
)

// Rejection reasons returned by Normalize.
// A rejection is not an error condition for the crawl: out-of-scope URLs
// are silently dropped, per the error taxonomy.
var (
	// ErrUnparsable is returned for syntactically invalid URLs.
	ErrUnparsable = errors.New("unparsable URL")

	// ErrSchemeNotAllowed is returned for schemes outside the allowed set
	// (javascript:, mailto:, data:, ftp:, ...).
	ErrSchemeNotAllowed = errors.New("scheme not allowed")

	// ErrIgnoredExtension is returned for static assets the crawl skips
	// (images, stylesheets, fonts, archives, media).
	ErrIgnoredExtension = errors.New("ignored file extension")

	// ErrOutOfScope is returned for hosts outside the scope policy.
	ErrOutOfScope = errors.New("host out of scope")
)

// NewScopePolicy builds the immutable scope for a run from its seed URL.
// The registrable domain is computed with the public suffix list so that
// subdomain matching respects multi-label suffixes like co.uk.
func NewScopePolicy(seed *url.URL, includeSubdomains bool, maxDepth, maxPages int) (*model.ScopePolicy, error) {
	host := seed.Hostname()
	if host == "" {
		return nil, fmt.Errorf("seed URL has no host: %q", seed.String())
	}

	registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// IP addresses and single-label hosts have no registrable domain;
		// fall back to exact-host scope for them.
		registrable = host
	}

	return &model.ScopePolicy{
		BaseHost:          strings.ToLower(seed.Host),
		RegistrableDomain: strings.ToLower(registrable),
		IncludeSubdomains: includeSubdomains,
		AllowedSchemes:    map[string]bool{"http": true, "https": true},
		MaxDepth:          maxDepth,
		MaxPages:          maxPages,
	}, nil
}

// Normalizer canonicalizes and scopes URLs.
type Normalizer struct {
	policy *model.ScopePolicy

	// sessionParams matches query parameter names that carry session
	// state. Such parameters are stripped during normalization so that
	// per-request session tokens cannot generate unbounded "new" URLs.
	sessionParams *regexp.Regexp

	// ignoredExts holds lowercase file extensions that are rejected.
	ignoredExts map[string]bool
}

// NewNormalizer creates a Normalizer for the given policy.
// sessionParamPattern is a regular expression matched against query
// parameter names; matching parameters are removed. An empty pattern
// disables session stripping.
func NewNormalizer(policy *model.ScopePolicy, sessionParamPattern string, ignoredExtensions []string) (*Normalizer, error) {
	n := &Normalizer{
		policy:      policy,
		ignoredExts: make(map[string]bool, len(ignoredExtensions)),
	}

	if sessionParamPattern != "" {
		re, err := regexp.Compile(sessionParamPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid session parameter pattern: %w", err)
		}
		n.sessionParams = re
	}

	for _, ext := range ignoredExtensions {
		n.ignoredExts[strings.ToLower(ext)] = true
	}

	return n, nil
}

// Normalize resolves raw against base (when base is non-nil) and returns
// the canonical in-scope form, or a rejection reason.
//
// Canonicalization: lowercase scheme and host, default ports stripped,
// fragment dropped, empty path becomes "/", query parameters sorted by
// key with the first-seen value retained per key and session-like
// parameters removed. The result is a fixed point: normalizing an
// already-normalized URL returns it unchanged.
func (n *Normalizer) Normalize(raw string, base *url.URL) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "#" {
		return "", ErrUnparsable
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrUnparsable
	}
	if base != nil {
		u = base.ResolveReference(u)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if !n.policy.AllowedSchemes[u.Scheme] {
		return "", ErrSchemeNotAllowed
	}

	u.Host = strings.ToLower(u.Host)
	u.Host = stripDefaultPort(u.Scheme, u.Host)
	if !n.policy.HostInScope(u.Host, u.Hostname()) {
		return "", ErrOutOfScope
	}

	if ext := strings.ToLower(path.Ext(u.Path)); ext != "" && n.ignoredExts[ext] {
		return "", ErrIgnoredExtension
	}

	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}
	u.RawQuery = n.canonicalQuery(u.Query())

	return u.String(), nil
}

// InScope is a convenience wrapper that reports whether raw normalizes
// successfully, discarding the reason.
func (n *Normalizer) InScope(raw string, base *url.URL) bool {
	_, err := n.Normalize(raw, base)
	return err == nil
}

// Policy returns the scope policy the normalizer enforces.
func (n *Normalizer) Policy() *model.ScopePolicy {
	return n.policy
}

// canonicalQuery rebuilds a query string in canonical order.
// Keys are sorted, duplicate keys keep their first value, and
// session-like keys are dropped entirely.
func (n *Normalizer) canonicalQuery(values url.Values) string {
	if len(values) == 0 {
		return ""
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		if n.sessionParams != nil && n.sessionParams.MatchString(k) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(k))
		if v := values[k]; len(v) > 0 && v[0] != "" {
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(v[0]))
		}
	}
	return sb.String()
}

// stripDefaultPort removes :80 from http hosts and :443 from https hosts.
func stripDefaultPort(scheme, host string) string {
	switch {
	case scheme == "http" && strings.HasSuffix(host, ":80"):
		return strings.TrimSuffix(host, ":80")
	case scheme == "https" && strings.HasSuffix(host, ":443"):
		return strings.TrimSuffix(host, ":443")
	}
	return host
}
