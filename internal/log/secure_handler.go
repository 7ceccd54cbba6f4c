package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// sensitiveKeys contains attribute keys that should always be redacted.
var sensitiveKeys = map[string]bool{
	// Patient identity
	"patient_id":  true,
	"patientid":   true,
	"patient":     true,
	"mrn":         true,
	"name":        true,
	"first_name":  true,
	"last_name":   true,
	"full_name":   true,
	"ssn":         true,
	"national_id": true,

	// Demographics
	"birth_date": true,
	"birthdate":  true,
	"dob":        true,

	// Contact
	"phone":        true,
	"phone_number": true,
	"mobile":       true,
	"email":        true,
	"address":      true,

	// Credentials
	"password": true,
	"secret":   true,
	"token":    true,
}

// sensitiveKeywords are substrings that mark a key as sensitive even when it
// is not listed in sensitiveKeys (e.g. "patient_ref", "home_address").
var sensitiveKeywords = []string{
	"patient", "phone", "birth", "email", "address",
	"ssn", "password", "secret", "token",
}

// sensitivePatterns contains regex patterns that indicate sensitive values.
// Values matching these patterns will be redacted regardless of key name.
var sensitivePatterns = []*regexp.Regexp{
	// Email addresses
	regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`),

	// US social security numbers
	regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`),
}

// MaskValue is the replacement string for redacted values.
const MaskValue = "***REDACTED***"

// SecureHandler wraps a slog.Handler and redacts personal health
// information from log records before passing them to the underlying
// handler.
//
// Design decision: We implement redaction at the handler level rather than
// requiring callers to redact manually. Callers log rows and cells while
// debugging checks, and a forgotten manual mask would leak patient data.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler creates a new SecureHandler wrapping the given handler.
// If handler is nil, the default slog handler is used.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle redacts the record's attributes and passes it to the underlying
// handler.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})

	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes redacted and
// added.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = h.sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(sanitizedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr checks if an attribute contains sensitive data and masks it.
// Groups are walked recursively.
func (h *SecureHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = h.sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString && isSensitiveValue(a.Value.String()) {
		return slog.String(a.Key, MaskValue)
	}

	return a
}

// isSensitiveKey reports whether the key names a sensitive field.
func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	if sensitiveKeys[key] {
		return true
	}
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// isSensitiveValue checks if a value looks like a phone number or matches
// any sensitive pattern.
func isSensitiveValue(value string) bool {
	value = strings.TrimSpace(value)
	if looksLikePhone(value) {
		return true
	}
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// looksLikePhone reports whether s consists only of digits and phone
// punctuation and holds 10 to 15 digits. Dates have too few digits and
// timestamps contain ':' so neither is matched.
func looksLikePhone(s string) bool {
	digits := 0
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case strings.ContainsRune("+-(). ", c):
		default:
			return false
		}
	}
	return digits >= 10 && digits <= 15
}

// level returns the minimum level for the verbose flag.
// Only warnings and errors are shown by default.
func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewSecureLogger creates a text logger that redacts personal health
// information.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level(verbose)}
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, opts)))
}

// NewSecureJSONLogger creates a JSON logger that redacts personal health
// information. Useful when logs are shipped to a log aggregation system.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level(verbose)}
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, opts)))
}

// New returns NewSecureJSONLogger when format is "json" and
// NewSecureLogger otherwise.
func New(w io.Writer, format string, verbose bool) *slog.Logger {
	if strings.EqualFold(format, "json") {
		return NewSecureJSONLogger(w, verbose)
	}
	return NewSecureLogger(w, verbose)
}
