package model

import (
	"testing"
)

// TestNewCrawlReport tests report initialization.
func TestNewCrawlReport(t *testing.T) {
	t.Parallel()

	report := NewCrawlReport("https://example.com")

	if report.Summary.SeedURL != "https://example.com" {
		t.Errorf("seed = %q, want https://example.com", report.Summary.SeedURL)
	}
	if report.Summary.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}
	if report.Cookies == nil || report.Headers == nil {
		t.Error("expected cookie and header maps to be initialized")
	}
}

// TestFormsByMethod tests form grouping.
func TestFormsByMethod(t *testing.T) {
	t.Parallel()

	report := NewCrawlReport("https://example.com")
	report.Forms = []FormSpec{
		{Action: "/login", Method: "POST"},
		{Action: "/search", Method: "GET"},
		{Action: "/legacy"}, // no method declared
	}

	grouped := report.FormsByMethod()
	if len(grouped["POST"]) != 1 {
		t.Errorf("POST forms = %d, want 1", len(grouped["POST"]))
	}
	if len(grouped["GET"]) != 2 {
		t.Errorf("GET forms = %d, want 2 (missing method defaults to GET)", len(grouped["GET"]))
	}
}

// TestEndpointsByType tests endpoint classification.
func TestEndpointsByType(t *testing.T) {
	t.Parallel()

	report := NewCrawlReport("https://example.com")
	report.Endpoints = []EndpointSpec{
		{URL: "https://example.com/api/users"},
		{URL: "https://example.com/rest/orders"},
		{URL: "https://example.com/v2/status"},
		{URL: "https://example.com/plain/page"},
	}

	grouped := report.EndpointsByType()
	for typ, want := range map[string]int{"api": 1, "rest": 1, "versioned": 1, "other": 1} {
		if got := len(grouped[typ]); got != want {
			t.Errorf("%s endpoints = %d, want %d", typ, got, want)
		}
	}
}

// TestEndpointType tests the path-shape classifier.
func TestEndpointType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url  string
		want string
	}{
		{url: "https://example.com/api/users", want: "api"},
		{url: "https://example.com/rest/orders", want: "rest"},
		{url: "https://example.com/v1/items", want: "versioned"},
		{url: "https://example.com/v12/items", want: "versioned"},
		{url: "https://example.com/verify/items", want: "other"},
		{url: "https://example.com/data", want: "other"},
		// /api/ wins over the versioned segment
		{url: "https://example.com/api/v2/users", want: "api"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()

			if got := endpointType(tt.url); got != tt.want {
				t.Errorf("endpointType(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

// TestSortedJSFiles tests deterministic script ordering.
func TestSortedJSFiles(t *testing.T) {
	t.Parallel()

	report := NewCrawlReport("https://example.com")
	report.JSFiles = []string{"https://b.example.com/x.js", "https://a.example.com/y.js"}

	sorted := report.SortedJSFiles()
	if sorted[0] != "https://a.example.com/y.js" {
		t.Errorf("sorted[0] = %q, want a.example.com first", sorted[0])
	}
	// Original slice must stay untouched.
	if report.JSFiles[0] != "https://b.example.com/x.js" {
		t.Error("expected original slice order preserved")
	}
}

// TestAddWarning tests warning accumulation.
func TestAddWarning(t *testing.T) {
	t.Parallel()

	report := NewCrawlReport("https://example.com")
	report.AddWarning("first")
	report.AddWarning("second")

	if len(report.Warnings) != 2 || report.Warnings[1] != "second" {
		t.Errorf("warnings = %v, want [first second]", report.Warnings)
	}
}
