package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// sensitiveKeys contains attribute keys whose values are always masked.
var sensitiveKeys = map[string]bool{
	// HTTP headers
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"proxy-authorization": true,

	// Credentials
	"password":      true,
	"passwd":        true,
	"secret":        true,
	"token":         true,
	"api_key":       true,
	"apikey":        true,
	"access_token":  true,
	"refresh_token": true,
	"credential":    true,
	"credentials":   true,

	// Session and CSRF artifacts observed during crawling
	"session":    true,
	"session_id": true,
	"sessionid":  true,
	"sid":        true,
	"phpsessid":  true,
	"jsessionid": true,
	"csrf":       true,
	"csrf_token": true,
	"xsrf_token": true,
}

// sensitivePatterns match values that look like credentials regardless of
// the attribute key they arrive under.
var sensitivePatterns = []*regexp.Regexp{
	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),

	// Bearer tokens
	regexp.MustCompile(`(?i)^bearer\s+.+`),

	// Basic auth
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),

	// AWS access keys
	regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),

	// Cookie-shaped "name=hexvalue" session strings
	regexp.MustCompile(`(?i)^(sessionid|phpsessid|jsessionid|sid)=[A-Za-z0-9+/=_-]+$`),
}

// MaskValue replaces redacted values in log output.
const MaskValue = "***REDACTED***"

// SecureHandler wraps an slog.Handler and masks sensitive attribute values
// before passing records to the underlying handler.
//
// Design decision: a handler wrapper rather than a custom logger type, so
// it composes with any output handler (text, JSON) and with every
// component that takes a plain *slog.Logger.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler wraps the given handler with redaction.
// A nil handler falls back to slog.Default().Handler().
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and forwards it.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a handler with the given attributes added, masked.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitized := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitized[i] = h.sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(sanitized)}
}

// WithGroup returns a handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr masks a single attribute, recursing into groups.
func (h *SecureHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitized := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			sanitized[i] = h.sanitizeAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitized...)}
	}

	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString && isSensitiveValue(a.Value.String()) {
		return slog.String(a.Key, MaskValue)
	}

	return a
}

// containsSensitiveKeyword reports whether the key embeds a credential
// keyword. The bare word "key" is deliberately excluded: it causes false
// positives ("primary_key", "hostkey") and the specific forms are covered
// by the sensitiveKeys map.
func containsSensitiveKeyword(key string) bool {
	for _, keyword := range []string{
		"password", "passwd", "secret", "token", "auth", "credential", "cookie",
	} {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// isSensitiveValue reports whether a value matches a credential pattern.
func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// NewSecureLogger creates a text-format slog.Logger with redaction.
// verbose selects Debug level; the default is Warn.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewSecureJSONLogger creates a JSON-format slog.Logger with redaction,
// for structured log aggregation.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
