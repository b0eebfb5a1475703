package extract

import (
	"testing"

	"github.com/webrecon/webrecon/internal/model"
)

func findEndpoint(result *JSResult, url string) (model.EndpointSpec, bool) {
	for _, ep := range result.Endpoints {
		if ep.URL == url {
			return ep, true
		}
	}
	return model.EndpointSpec{}, false
}

func TestJSAnalyzerAnalyze(t *testing.T) {
	t.Parallel()

	base := mustParse(t, "https://example.com/app")
	analyzer := NewJSAnalyzer()

	t.Run("fetch calls", func(t *testing.T) {
		t.Parallel()

		got := analyzer.Analyze(`fetch('/api/users').then(r => r.json());`, base)
		ep, ok := findEndpoint(got, "https://example.com/api/users")
		if !ok {
			t.Fatalf("endpoint not found, got %v", got.Endpoints)
		}
		if ep.Source != model.SourceJSStatic {
			t.Errorf("Source = %q, want %q", ep.Source, model.SourceJSStatic)
		}
		if ep.MethodGuess != "GET" {
			t.Errorf("MethodGuess = %q, want GET", ep.MethodGuess)
		}
	})

	t.Run("xhr open carries the method", func(t *testing.T) {
		t.Parallel()

		got := analyzer.Analyze(`xhr.open('POST', '/api/submit');`, base)
		ep, ok := findEndpoint(got, "https://example.com/api/submit")
		if !ok {
			t.Fatalf("endpoint not found, got %v", got.Endpoints)
		}
		if ep.MethodGuess != "POST" {
			t.Errorf("MethodGuess = %q, want POST", ep.MethodGuess)
		}
	})

	t.Run("jquery helpers", func(t *testing.T) {
		t.Parallel()

		script := `
			$.ajax({url: '/api/posts', method: 'PUT'});
			$.get('/api/list');
			$.post('/api/create');
			$.getJSON('/api/feed.json');
		`
		got := analyzer.Analyze(script, base)
		for _, want := range []struct {
			url    string
			method string
		}{
			{"https://example.com/api/posts", ""},
			{"https://example.com/api/list", "GET"},
			{"https://example.com/api/create", "POST"},
			{"https://example.com/api/feed.json", "GET"},
		} {
			ep, ok := findEndpoint(got, want.url)
			if !ok {
				t.Errorf("endpoint %q not found", want.url)
				continue
			}
			if ep.MethodGuess != want.method {
				t.Errorf("%s MethodGuess = %q, want %q", want.url, ep.MethodGuess, want.method)
			}
		}
	})

	t.Run("axios methods", func(t *testing.T) {
		t.Parallel()

		got := analyzer.Analyze(`axios.delete('/api/items/1'); axios.create().patch('/v2/things');`, base)
		ep, ok := findEndpoint(got, "https://example.com/api/items/1")
		if !ok {
			t.Fatalf("axios.delete endpoint not found, got %v", got.Endpoints)
		}
		if ep.MethodGuess != "DELETE" {
			t.Errorf("MethodGuess = %q, want DELETE", ep.MethodGuess)
		}
		if _, ok := findEndpoint(got, "https://example.com/v2/things"); !ok {
			t.Errorf("axios.create().patch endpoint not found, got %v", got.Endpoints)
		}
	})

	t.Run("websocket urls", func(t *testing.T) {
		t.Parallel()

		got := analyzer.Analyze(`const ws = new WebSocket('wss://example.com/live');`, base)
		if len(got.WebSocketURLs) != 1 || got.WebSocketURLs[0] != "wss://example.com/live" {
			t.Errorf("WebSocketURLs = %v, want [wss://example.com/live]", got.WebSocketURLs)
		}
	})

	t.Run("dynamic template literal urls are tagged dynamic", func(t *testing.T) {
		t.Parallel()

		got := analyzer.Analyze("const u = `https://example.com/api/items/${id}`;", base)
		var found bool
		for _, ep := range got.Endpoints {
			if ep.Source == model.SourceJSDynamic {
				found = true
			}
		}
		if !found {
			t.Errorf("no dynamic endpoint found, got %v", got.Endpoints)
		}
	})

	t.Run("base url concatenation", func(t *testing.T) {
		t.Parallel()

		got := analyzer.Analyze(`const u = baseURL + '/orders';`, base)
		ep, ok := findEndpoint(got, "https://example.com/orders")
		if !ok {
			t.Fatalf("endpoint not found, got %v", got.Endpoints)
		}
		if ep.Source != model.SourceJSDynamic {
			t.Errorf("Source = %q, want %q", ep.Source, model.SourceJSDynamic)
		}
	})

	t.Run("call sites keep plain paths", func(t *testing.T) {
		t.Parallel()

		// A fetch target does not need /api or a version segment in it
		// to count as an endpoint.
		got := analyzer.Analyze(`fetch('/orders');`, base)
		if _, ok := findEndpoint(got, "https://example.com/orders"); !ok {
			t.Fatalf("endpoint not found, got %v", got.Endpoints)
		}
	})

	t.Run("literal api paths without a call site", func(t *testing.T) {
		t.Parallel()

		got := analyzer.Analyze(`const endpoints = ['/api/users', '/rest/orders', '/v1/tokens'];`, base)
		for _, want := range []string{
			"https://example.com/api/users",
			"https://example.com/rest/orders",
			"https://example.com/v1/tokens",
		} {
			if _, ok := findEndpoint(got, want); !ok {
				t.Errorf("endpoint %q not found, got %v", want, got.Endpoints)
			}
		}
	})

	t.Run("ignores non-endpoint references", func(t *testing.T) {
		t.Parallel()

		script := `
			fetch('data:text/plain,hello');
			fetch('mailto:admin@example.com');
			fetch('/css/style.css');
			fetch('#anchor');
		`
		got := analyzer.Analyze(script, base)
		if len(got.Endpoints) != 0 {
			t.Errorf("Endpoints = %v, want empty", got.Endpoints)
		}
	})

	t.Run("import and require references", func(t *testing.T) {
		t.Parallel()

		script := `
			import helper from './helper.js';
			const lib = require('./vendor/lib.js');
		`
		got := analyzer.Analyze(script, base)
		if len(got.JSFiles) != 2 {
			t.Errorf("JSFiles = %v, want 2 entries", got.JSFiles)
		}
	})

	t.Run("deduplicates repeated endpoints", func(t *testing.T) {
		t.Parallel()

		got := analyzer.Analyze(`fetch('/api/users'); fetch('/api/users');`, base)
		if len(got.Endpoints) != 1 {
			t.Errorf("len(Endpoints) = %d, want 1", len(got.Endpoints))
		}
	})
}
