package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Content is the result of fetching one URL.
type Content struct {
	// StatusCode is the HTTP response status.
	StatusCode int

	// Body is the response body, capped at the configured size.
	Body []byte

	// Headers are the response headers.
	Headers http.Header

	// Cookies are the response cookies, name to value.
	Cookies map[string]string

	// FinalURL is the URL after redirects; equal to the requested URL
	// when no redirect occurred.
	FinalURL string

	// ContentType is the response MIME type without parameters.
	ContentType string
}

// IsHTML reports whether the content is an HTML document.
func (c *Content) IsHTML() bool {
	return strings.Contains(c.ContentType, "text/html") ||
		strings.Contains(c.ContentType, "application/xhtml")
}

// Fetcher retrieves a single URL.
//
// Design decision: the engine takes this one-method interface rather than
// a concrete client so tests can substitute a scripted fetcher and the
// rendering implementation can be swapped in by configuration.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Content, error)
}

// Options configures an HTTPFetcher.
type Options struct {
	// UserAgent is sent with every request.
	UserAgent string

	// Headers are extra request headers, e.g. pre-supplied auth headers.
	Headers map[string]string

	// Cookie is a pre-supplied Cookie header value, empty for none.
	Cookie string

	// Timeout is the per-request deadline.
	Timeout time.Duration

	// MaxBodySize caps the response body read, in bytes.
	MaxBodySize int64
}

// HTTPFetcher retrieves pages with a plain HTTP GET.
type HTTPFetcher struct {
	client       *http.Client
	userAgent    string
	extraHeaders map[string]string
	cookie       string
	maxBodySize  int64
}

// NewHTTPFetcher creates an HTTPFetcher with the given options.
func NewHTTPFetcher(opts Options) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = 5 * 1024 * 1024
	}

	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	headers := make(map[string]string, len(opts.Headers))
	for k, v := range opts.Headers {
		headers[k] = v
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		userAgent:    opts.UserAgent,
		extraHeaders: headers,
		cookie:       opts.Cookie,
		maxBodySize:  opts.MaxBodySize,
	}
}

// Fetch downloads a single URL.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Content, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", rawURL, err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")
	for k, v := range f.extraHeaders {
		req.Header.Set(k, v)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, classify(rawURL, err)
	}

	cookies := make(map[string]string)
	for _, c := range resp.Cookies() {
		cookies[c.Name] = c.Value
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Content{
		StatusCode:  resp.StatusCode,
		Body:        body,
		Headers:     resp.Header,
		Cookies:     cookies,
		FinalURL:    finalURL,
		ContentType: mediaType(resp.Header.Get("Content-Type")),
	}, nil
}

// classify wraps a transport error as ErrTimeout or ErrNetwork.
func classify(rawURL string, err error) error {
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %v", ErrTimeout, rawURL, err)
	case errors.As(err, &ne) && ne.Timeout():
		return fmt.Errorf("%w: %s: %v", ErrTimeout, rawURL, err)
	}

	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, rawURL, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrNetwork, rawURL, err)
}

// mediaType strips parameters from a Content-Type header value.
func mediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(strings.ToLower(contentType))
}
