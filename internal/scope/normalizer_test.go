package scope

import (
	"errors"
	"net/url"
	"testing"
)

const sessionPattern = `(?i)^(sessionid|session_id|phpsessid|jsessionid|sid|token|csrf_token)$`

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", raw, err)
	}
	return u
}

func newTestNormalizer(t *testing.T, seed string, includeSubdomains bool) *Normalizer {
	t.Helper()

	policy, err := NewScopePolicy(mustParse(t, seed), includeSubdomains, 5, 100)
	if err != nil {
		t.Fatalf("failed to build policy: %v", err)
	}
	n, err := NewNormalizer(policy, sessionPattern, []string{".png", ".css", ".zip"})
	if err != nil {
		t.Fatalf("failed to build normalizer: %v", err)
	}
	return n
}

// TestNewScopePolicy tests scope derivation from seed URLs.
func TestNewScopePolicy(t *testing.T) {
	t.Parallel()

	t.Run("registrable domain uses public suffix list", func(t *testing.T) {
		t.Parallel()

		policy, err := NewScopePolicy(mustParse(t, "https://app.shop.example.co.uk/x"), true, 5, 100)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if policy.RegistrableDomain != "example.co.uk" {
			t.Errorf("registrable domain = %q, want example.co.uk", policy.RegistrableDomain)
		}
	})

	t.Run("IP address falls back to exact host", func(t *testing.T) {
		t.Parallel()

		policy, err := NewScopePolicy(mustParse(t, "http://192.168.1.10:8080/"), false, 5, 100)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if policy.RegistrableDomain != "192.168.1.10" {
			t.Errorf("registrable domain = %q, want 192.168.1.10", policy.RegistrableDomain)
		}
	})

	t.Run("hostless seed is rejected", func(t *testing.T) {
		t.Parallel()

		if _, err := NewScopePolicy(mustParse(t, "/relative/path"), false, 5, 100); err == nil {
			t.Error("expected error for seed without host")
		}
	})
}

// TestNormalize tests URL canonicalization.
func TestNormalize(t *testing.T) {
	t.Parallel()

	n := newTestNormalizer(t, "https://example.com", false)
	base := mustParse(t, "https://example.com/dir/page")

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "lowercases scheme and host",
			raw:  "HTTPS://EXAMPLE.COM/Path",
			want: "https://example.com/Path",
		},
		{
			name: "strips default https port",
			raw:  "https://example.com:443/a",
			want: "https://example.com/a",
		},
		{
			name: "drops fragment",
			raw:  "https://example.com/a#section",
			want: "https://example.com/a",
		},
		{
			name: "empty path becomes slash",
			raw:  "https://example.com",
			want: "https://example.com/",
		},
		{
			name: "sorts query keys",
			raw:  "https://example.com/s?z=1&a=2",
			want: "https://example.com/s?a=2&z=1",
		},
		{
			name: "strips session parameters",
			raw:  "https://example.com/s?page=2&PHPSESSID=deadbeef",
			want: "https://example.com/s?page=2",
		},
		{
			name: "keeps first duplicate value",
			raw:  "https://example.com/s?a=1&a=2",
			want: "https://example.com/s?a=1",
		},
		{
			name: "resolves relative against base",
			raw:  "../other",
			want: "https://example.com/other",
		},
		{
			name: "resolves absolute path against base",
			raw:  "/from/root",
			want: "https://example.com/from/root",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := n.Normalize(tt.raw, base)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		once, err := n.Normalize("https://EXAMPLE.com/s?z=1&a=2&sid=x#frag", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		twice, err := n.Normalize(once, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if once != twice {
			t.Errorf("normalization not idempotent: %q != %q", once, twice)
		}
	})
}

// TestNormalizeRejections tests the rejection taxonomy.
func TestNormalizeRejections(t *testing.T) {
	t.Parallel()

	n := newTestNormalizer(t, "https://example.com", false)
	base := mustParse(t, "https://example.com/")

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "empty string", raw: "", wantErr: ErrUnparsable},
		{name: "bare fragment", raw: "#", wantErr: ErrUnparsable},
		{name: "control characters", raw: "https://example.com/\x7f", wantErr: ErrUnparsable},
		{name: "javascript scheme", raw: "javascript:void(0)", wantErr: ErrSchemeNotAllowed},
		{name: "mailto scheme", raw: "mailto:x@example.com", wantErr: ErrSchemeNotAllowed},
		{name: "ftp scheme", raw: "ftp://example.com/file", wantErr: ErrSchemeNotAllowed},
		{name: "foreign host", raw: "https://other.example.net/", wantErr: ErrOutOfScope},
		{name: "subdomain without include", raw: "https://api.example.com/", wantErr: ErrOutOfScope},
		{name: "image extension", raw: "https://example.com/logo.png", wantErr: ErrIgnoredExtension},
		{name: "archive extension", raw: "https://example.com/dump.ZIP", wantErr: ErrIgnoredExtension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := n.Normalize(tt.raw, base)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Normalize(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

// TestSubdomainScope tests the include-subdomains widening.
func TestSubdomainScope(t *testing.T) {
	t.Parallel()

	n := newTestNormalizer(t, "https://example.com", true)

	if !n.InScope("https://api.example.com/v1", nil) {
		t.Error("expected subdomain in scope with IncludeSubdomains")
	}
	if !n.InScope("https://example.com/", nil) {
		t.Error("expected apex in scope")
	}
	if n.InScope("https://notexample.com/", nil) {
		t.Error("expected sibling domain out of scope")
	}
	if n.InScope("https://example.com.evil.net/", nil) {
		t.Error("expected suffix-spoofed domain out of scope")
	}
}
