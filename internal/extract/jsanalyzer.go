package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/webrecon/webrecon/internal/model"
)

// JSResult holds what the JavaScript analyzer found in one script body.
type JSResult struct {
	// Endpoints are API endpoint candidates with source provenance.
	Endpoints []model.EndpointSpec

	// WebSocketURLs are ws:// and wss:// URLs.
	WebSocketURLs []string

	// JSFiles are script file references from import/require statements.
	JSFiles []string
}

// Call-site patterns for the common HTTP client idioms. Each carries the
// method the idiom implies, or empty when the call form does not fix one.
var (
	fetchLiteralRe   = regexp.MustCompile("(?i)fetch\\(['\"`]([^'\"`]+)['\"`]")
	fetchTemplateRe  = regexp.MustCompile("(?i)fetch\\(`([^`]+)`")
	xhrOpenRe        = regexp.MustCompile("(?i)\\.open\\(['\"`]([A-Za-z]+)['\"`],\\s*['\"`]([^'\"`]+)['\"`]")
	jqueryAjaxRe     = regexp.MustCompile("(?i)\\$\\.ajax\\(\\s*\\{[^}]*url\\s*:\\s*['\"`]([^'\"`]+)['\"`]")
	jqueryGetRe      = regexp.MustCompile("(?i)\\$\\.get\\(['\"`]([^'\"`]+)['\"`]")
	jqueryPostRe     = regexp.MustCompile("(?i)\\$\\.post\\(['\"`]([^'\"`]+)['\"`]")
	jqueryGetJSONRe  = regexp.MustCompile("(?i)\\$\\.getJSON\\(['\"`]([^'\"`]+)['\"`]")
	axiosMethodRe    = regexp.MustCompile("(?i)axios(?:\\.create\\(\\))?\\.(get|post|put|delete|patch)\\(['\"`]([^'\"`]+)['\"`]")
	axiosConfigRe    = regexp.MustCompile("(?i)axios\\(\\s*\\{[^}]*url\\s*:\\s*['\"`]([^'\"`]+)['\"`]")
	websocketRe      = regexp.MustCompile("(?i)new\\s+WebSocket\\(['\"`]([^'\"`]+)['\"`]")
	literalPathRe    = regexp.MustCompile("['\"`](/(?:api|rest|v\\d+)/[^'\"`]+)['\"`]")
	importRe         = regexp.MustCompile("(?i)import\\s+(?:.*\\s+from\\s+)?['\"`]([^'\"`]+\\.js)['\"`]")
	requireRe        = regexp.MustCompile("(?i)require\\(['\"`]([^'\"`]+\\.js)['\"`]\\)")
)

// Dynamic URL construction. These are heuristic reconstructions; whatever
// they yield is tagged as dynamic so consumers know the URL may not be
// reachable as written.
var (
	templateURLRe  = regexp.MustCompile("`([^`]*https?://[^`]*)`")
	templatePathRe = regexp.MustCompile("`([^`]*/(?:api|rest)/[^`]*)`")
	baseConcatRe   = regexp.MustCompile("(?i)(?:baseURL|apiUrl)\\s*\\+\\s*['\"`]([^'\"`]+)['\"`]")
)

// JSAnalyzer scans JavaScript source for URLs, API endpoints and
// WebSocket connections.
type JSAnalyzer struct{}

// NewJSAnalyzer creates a JSAnalyzer.
func NewJSAnalyzer() *JSAnalyzer {
	return &JSAnalyzer{}
}

// Analyze scans one script body. base is the URL of the page or file the
// script came from and anchors relative endpoint references.
func (a *JSAnalyzer) Analyze(script string, base *url.URL) *JSResult {
	result := &JSResult{}
	seen := make(map[string]bool)

	add := func(raw string, source model.EndpointSource, method string) {
		raw = strings.TrimSpace(raw)
		if !usableURL(raw) {
			return
		}
		resolved := resolveRef(base, raw)
		if resolved == "" {
			return
		}
		// Call-site patterns run before the bare literal-path scan, so
		// when the same URL is seen twice the method-carrying entry wins.
		if seen[resolved] {
			return
		}
		seen[resolved] = true
		result.Endpoints = append(result.Endpoints, model.EndpointSpec{
			URL:         resolved,
			Source:      source,
			MethodGuess: method,
		})
	}

	for _, m := range fetchLiteralRe.FindAllStringSubmatch(script, -1) {
		add(m[1], model.SourceJSStatic, "GET")
	}
	for _, m := range fetchTemplateRe.FindAllStringSubmatch(script, -1) {
		add(m[1], model.SourceJSDynamic, "GET")
	}
	for _, m := range xhrOpenRe.FindAllStringSubmatch(script, -1) {
		add(m[2], model.SourceJSStatic, strings.ToUpper(m[1]))
	}
	for _, m := range jqueryAjaxRe.FindAllStringSubmatch(script, -1) {
		add(m[1], model.SourceJSStatic, "")
	}
	for _, m := range jqueryGetRe.FindAllStringSubmatch(script, -1) {
		add(m[1], model.SourceJSStatic, "GET")
	}
	for _, m := range jqueryPostRe.FindAllStringSubmatch(script, -1) {
		add(m[1], model.SourceJSStatic, "POST")
	}
	for _, m := range jqueryGetJSONRe.FindAllStringSubmatch(script, -1) {
		add(m[1], model.SourceJSStatic, "GET")
	}
	for _, m := range axiosMethodRe.FindAllStringSubmatch(script, -1) {
		add(m[2], model.SourceJSStatic, strings.ToUpper(m[1]))
	}
	for _, m := range axiosConfigRe.FindAllStringSubmatch(script, -1) {
		add(m[1], model.SourceJSStatic, "")
	}
	for _, m := range literalPathRe.FindAllStringSubmatch(script, -1) {
		add(m[1], model.SourceJSStatic, "")
	}

	for _, m := range templateURLRe.FindAllStringSubmatch(script, -1) {
		add(m[1], model.SourceJSDynamic, "")
	}
	for _, m := range templatePathRe.FindAllStringSubmatch(script, -1) {
		add(m[1], model.SourceJSDynamic, "")
	}
	for _, m := range baseConcatRe.FindAllStringSubmatch(script, -1) {
		add(m[1], model.SourceJSDynamic, "")
	}

	wsSeen := make(map[string]bool)
	for _, m := range websocketRe.FindAllStringSubmatch(script, -1) {
		raw := strings.TrimSpace(m[1])
		resolved := resolveWS(base, raw)
		if resolved == "" || wsSeen[resolved] {
			continue
		}
		wsSeen[resolved] = true
		result.WebSocketURLs = append(result.WebSocketURLs, resolved)
	}

	fileSeen := make(map[string]bool)
	addFile := func(raw string) {
		raw = strings.TrimSpace(raw)
		if raw == "" || fileSeen[raw] {
			return
		}
		fileSeen[raw] = true
		result.JSFiles = append(result.JSFiles, raw)
	}
	for _, m := range importRe.FindAllStringSubmatch(script, -1) {
		addFile(m[1])
	}
	for _, m := range requireRe.FindAllStringSubmatch(script, -1) {
		addFile(m[1])
	}

	return result
}

// staticAssetRe marks references to style, image and font files, which a
// call site would fetch as assets rather than endpoints.
var staticAssetRe = regexp.MustCompile(`(?i)\.(?:css|png|jpe?g|gif|svg|ico|webp|woff2?|ttf|eot|map)(?:[?#]|$)`)

// usableURL filters out references that cannot name an endpoint:
// fragments, data/mailto/tel URIs, and static assets. Plain paths with
// no API shape stay in; a fetch or axios call site is evidence enough
// that the path is an endpoint. The bare literal-path scan needs no
// filter here because its pattern only matches API-shaped paths.
func usableURL(raw string) bool {
	if raw == "" || strings.HasPrefix(raw, "#") {
		return false
	}
	for _, prefix := range []string{"data:", "mailto:", "tel:", "javascript:"} {
		if strings.HasPrefix(raw, prefix) {
			return false
		}
	}
	return !staticAssetRe.MatchString(raw)
}

// resolveWS resolves a WebSocket reference, accepting ws and wss schemes
// alongside http(s) page-relative references (which become the page scheme).
func resolveWS(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "ws", "wss", "http", "https":
		return u.String()
	}
	return ""
}
