package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// RenderOptions configures a RenderFetcher.
type RenderOptions struct {
	// UserAgent is sent with every request.
	UserAgent string

	// Headers are extra request headers injected into every navigation.
	Headers map[string]string

	// Cookie is a pre-supplied Cookie header value, empty for none.
	Cookie string

	// Timeout is the per-page deadline, covering navigation and rendering.
	Timeout time.Duration

	// MaxBodySize caps the captured DOM size, in bytes.
	MaxBodySize int64

	// Headless controls whether the browser runs without a display.
	Headless bool

	// ConcurrentSessions bounds simultaneous browser sessions.
	ConcurrentSessions int

	// CaptureDelay is how long to wait after navigation before capturing
	// the DOM, giving scripts time to run.
	CaptureDelay time.Duration
}

// RenderFetcher retrieves pages through a headless browser so that
// script-generated markup is visible to extraction.
type RenderFetcher struct {
	opts      RenderOptions
	semaphore chan struct{}
	logger    *slog.Logger
}

// NewRenderFetcher constructs a RenderFetcher with bounded concurrency.
func NewRenderFetcher(opts RenderOptions) *RenderFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = 5 * 1024 * 1024
	}
	if opts.ConcurrentSessions <= 0 {
		opts.ConcurrentSessions = 1
	}
	if opts.CaptureDelay <= 0 {
		opts.CaptureDelay = 1500 * time.Millisecond
	}
	return &RenderFetcher{
		opts:      opts,
		semaphore: make(chan struct{}, opts.ConcurrentSessions),
		logger:    slog.Default(),
	}
}

// Fetch navigates to the URL and captures the rendered DOM.
func (r *RenderFetcher) Fetch(parentCtx context.Context, rawURL string) (*Content, error) {
	select {
	case r.semaphore <- struct{}{}:
		defer func() { <-r.semaphore }()
	case <-parentCtx.Done():
		return nil, parentCtx.Err()
	}

	ctx, cancel := context.WithTimeout(parentCtx, r.opts.Timeout)
	defer cancel()

	execOpts := []chromedp.ExecAllocatorOption{
		chromedp.Flag("headless", r.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
	}
	if r.opts.UserAgent != "" {
		execOpts = append(execOpts, chromedp.UserAgent(r.opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, execOpts...)
	defer allocCancel()

	chromeCtx, chromeCancel := chromedp.NewContext(allocCtx)
	defer chromeCancel()

	extraHeaders := network.Headers{}
	for k, v := range r.opts.Headers {
		extraHeaders[k] = v
	}
	if r.opts.Cookie != "" {
		extraHeaders["Cookie"] = r.opts.Cookie
	}

	var html string
	var finalURL string

	actions := []chromedp.Action{network.Enable()}
	if len(extraHeaders) > 0 {
		actions = append(actions, network.SetExtraHTTPHeaders(extraHeaders))
	}
	actions = append(actions,
		chromedp.Navigate(rawURL),
		chromedp.Sleep(r.opts.CaptureDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&finalURL),
	)

	resp, err := chromedp.RunResponse(chromeCtx, actions...)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: %s: %v", ErrTimeout, rawURL, err)
		}
		return nil, fmt.Errorf("%w: render %s: %v", ErrNetwork, rawURL, err)
	}

	statusCode := http.StatusOK
	headers := http.Header{}
	if resp != nil {
		statusCode = int(resp.Status)
		for k, v := range resp.Headers {
			if s, ok := v.(string); ok {
				headers.Set(k, s)
			}
		}
	}

	if int64(len(html)) > r.opts.MaxBodySize {
		html = html[:r.opts.MaxBodySize]
	}
	if finalURL == "" {
		finalURL = rawURL
	}

	r.logger.Debug("rendered page",
		slog.String("url", rawURL),
		slog.String("final_url", finalURL),
		slog.Int("status", statusCode),
		slog.Int("html_bytes", len(html)))

	return &Content{
		StatusCode:  statusCode,
		Body:        []byte(html),
		Headers:     headers,
		Cookies:     map[string]string{},
		FinalURL:    finalURL,
		ContentType: "text/html",
	}, nil
}
