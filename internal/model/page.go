package model

import "time"

// EndpointSource identifies how an API endpoint candidate was discovered.
// Provenance is preserved so that downstream scanners can weight candidates
// by confidence: HTML anchors are certain to exist, while endpoints
// reconstructed from JavaScript string concatenation are best-effort.
type EndpointSource string

// Endpoint discovery sources, ordered roughly by confidence.
const (
	// SourceHTML marks endpoints found as literal anchors or attributes in HTML.
	SourceHTML EndpointSource = "html"

	// SourceJSStatic marks endpoints found as string literals in JavaScript.
	SourceJSStatic EndpointSource = "js-static"

	// SourceJSDynamic marks endpoints reconstructed from dynamic URL
	// construction patterns (template literals, concatenation). These are
	// heuristic and may not be reachable as written.
	SourceJSDynamic EndpointSource = "js-dynamic"

	// SourceNetwork marks endpoints observed in live network traffic
	// during browser-rendered fetches.
	SourceNetwork EndpointSource = "network"
)

// EndpointSpec describes a discovered API endpoint candidate.
type EndpointSpec struct {
	// URL is the absolute endpoint URL.
	URL string `json:"url"`

	// Source records how the endpoint was discovered.
	Source EndpointSource `json:"source"`

	// MethodGuess is the HTTP method implied by the discovery context
	// (e.g. "POST" for axios.post). Empty when unknown.
	MethodGuess string `json:"method_guess,omitempty"`
}

// FormField represents a single input in an HTML form.
type FormField struct {
	// Name is the field's name attribute.
	Name string `json:"name"`

	// Type is the input type (text, password, hidden, select, textarea).
	Type string `json:"type"`

	// Value is the field's default value, if any.
	Value string `json:"value,omitempty"`

	// Hidden is true for input type="hidden" fields.
	Hidden bool `json:"hidden,omitempty"`

	// CSRF is true when the field name matches the configured
	// CSRF-token pattern. The value itself is still recorded because
	// downstream scanners need it to replay the form.
	CSRF bool `json:"csrf,omitempty"`
}

// FormSpec describes an HTML form found on a page.
type FormSpec struct {
	// Action is the resolved absolute form action URL.
	Action string `json:"action"`

	// Method is the HTTP method in upper case. Defaults to GET.
	Method string `json:"method"`

	// Fields contains the form's named inputs, including hidden ones.
	Fields []FormField `json:"fields,omitempty"`
}

// Key returns the deduplication key for a form.
// Two forms with the same action and method are considered the same
// attack surface even when rendered on different pages.
func (f FormSpec) Key() string {
	return f.Action + ":" + f.Method
}

// PageRecord holds everything extracted from one successfully fetched page.
// A record is produced once per page and never mutated afterwards; the
// aggregator owns it from creation.
type PageRecord struct {
	// URL is the normalized URL that was fetched.
	URL string `json:"url"`

	// StatusCode is the HTTP response status.
	StatusCode int `json:"status_code"`

	// ContentType is the response MIME type.
	ContentType string `json:"content_type,omitempty"`

	// Title is the page title for HTML content.
	Title string `json:"title,omitempty"`

	// Depth is the link distance from the seed at which the page was found.
	Depth int `json:"depth"`

	// Forms are the HTML forms found on the page.
	Forms []FormSpec `json:"forms,omitempty"`

	// Links are the in-scope normalized URLs discovered on the page.
	Links []string `json:"links,omitempty"`

	// APIEndpoints are endpoint candidates discovered on the page.
	APIEndpoints []EndpointSpec `json:"api_endpoints,omitempty"`

	// JSFiles are the external script URLs referenced by the page.
	JSFiles []string `json:"js_files,omitempty"`

	// WebSocketURLs are ws:// and wss:// URLs found in page scripts.
	WebSocketURLs []string `json:"websocket_urls,omitempty"`

	// Cookies are the response cookies, name to value.
	Cookies map[string]string `json:"cookies,omitempty"`

	// Headers are the response headers, flattened to the first value.
	Headers map[string]string `json:"headers,omitempty"`

	// FetchedAt is when the page was retrieved.
	FetchedAt time.Time `json:"fetched_at"`
}
