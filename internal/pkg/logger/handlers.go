// internal/pkg/logger/handlers.go
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
)

// ContextHandler adds the request, user and job values found on the context
// to every record
type ContextHandler struct {
	next slog.Handler
	keys []ContextKey
}

// NewContextHandler wraps next. config may be nil.
func NewContextHandler(next slog.Handler, config *LogConfig) *ContextHandler {
	keys := defaultContextKeys()
	if config != nil && len(config.ContextKeys) > 0 {
		keys = config.ContextKeys
	}
	return &ContextHandler{next: next, keys: keys}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	if attrs := extractContextAttrs(ctx, h.keys); len(attrs) > 0 {
		record = record.Clone()
		record.AddAttrs(attrs...)
	}
	return h.next.Handle(ctx, record)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs), keys: h.keys}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name), keys: h.keys}
}

// SamplingHandler keeps a fraction of debug and info records. Warnings and
// errors always pass.
type SamplingHandler struct {
	next slog.Handler
	rate float64
}

// NewSamplingHandler keeps roughly rate of the records below warn
func NewSamplingHandler(next slog.Handler, rate float64) *SamplingHandler {
	return &SamplingHandler{next: next, rate: rate}
}

func (h *SamplingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if !h.next.Enabled(ctx, level) {
		return false
	}
	return level >= slog.LevelWarn || rand.Float64() < h.rate
}

func (h *SamplingHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < slog.LevelWarn {
		record.AddAttrs(slog.Float64("sample_rate", h.rate))
	}
	return h.next.Handle(ctx, record)
}

func (h *SamplingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SamplingHandler{next: h.next.WithAttrs(attrs), rate: h.rate}
}

func (h *SamplingHandler) WithGroup(name string) slog.Handler {
	return &SamplingHandler{next: h.next.WithGroup(name), rate: h.rate}
}

const redacted = "***REDACTED***"

var (
	credentialRe = regexp.MustCompile(`(?i)\b(password|passwd|secret|token|api[-_]?key|bearer)\s*[:=]\s*["']?[^"'\s,]+`)
	emailRe      = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// secretKeys are attribute keys whose values never reach the output
var secretKeys = []string{"password", "secret", "token", "api_key", "smtp_pass", "authorization"}

// identityKeys hold personal document numbers; only their last two digits
// are kept
var identityKeys = []string{"dni", "customer_dni"}

// SanitizationHandler masks credentials, e-mail addresses and personal
// document numbers before records are written
type SanitizationHandler struct {
	next slog.Handler
}

// NewSanitizationHandler wraps next
func NewSanitizationHandler(next slog.Handler) *SanitizationHandler {
	return &SanitizationHandler{next: next}
}

func (h *SanitizationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *SanitizationHandler) Handle(ctx context.Context, record slog.Record) error {
	clean := slog.NewRecord(record.Time, record.Level, sanitizeString(record.Message), record.PC)
	record.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(sanitizeAttr(a))
		return true
	})
	return h.next.Handle(ctx, clean)
}

func (h *SanitizationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = sanitizeAttr(a)
	}
	return &SanitizationHandler{next: h.next.WithAttrs(clean)}
}

func (h *SanitizationHandler) WithGroup(name string) slog.Handler {
	return &SanitizationHandler{next: h.next.WithGroup(name)}
}

func sanitizeAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	key := strings.ToLower(a.Key)

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		clean := make([]slog.Attr, len(group))
		for i, g := range group {
			clean[i] = sanitizeAttr(g)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clean...)}
	}

	for _, k := range secretKeys {
		if strings.Contains(key, k) {
			return slog.String(a.Key, redacted)
		}
	}
	for _, k := range identityKeys {
		if key == k {
			return slog.String(a.Key, maskDocument(a.Value.String()))
		}
	}

	if a.Value.Kind() == slog.KindString {
		a.Value = slog.StringValue(sanitizeString(a.Value.String()))
	}
	return a
}

func sanitizeString(s string) string {
	s = credentialRe.ReplaceAllString(s, "$1="+redacted)
	return emailRe.ReplaceAllString(s, redacted)
}

func maskDocument(doc string) string {
	if len(doc) <= 2 {
		return strings.Repeat("*", len(doc))
	}
	return strings.Repeat("*", len(doc)-2) + doc[len(doc)-2:]
}

// MultiHandler writes each record to every handler that accepts its level
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler fans records out to handlers
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, next := range h.handlers {
		if next.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *MultiHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, next := range h.handlers {
		if !next.Enabled(ctx, record.Level) {
			continue
		}
		if err := next.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &MultiHandler{handlers: mapHandlers(h.handlers, func(next slog.Handler) slog.Handler {
		return next.WithAttrs(attrs)
	})}
}

func (h *MultiHandler) WithGroup(name string) slog.Handler {
	return &MultiHandler{handlers: mapHandlers(h.handlers, func(next slog.Handler) slog.Handler {
		return next.WithGroup(name)
	})}
}

func mapHandlers(handlers []slog.Handler, fn func(slog.Handler) slog.Handler) []slog.Handler {
	out := make([]slog.Handler, len(handlers))
	for i, next := range handlers {
		out[i] = fn(next)
	}
	return out
}

var levelColors = map[slog.Level]string{
	slog.LevelDebug: "\033[90m",
	slog.LevelInfo:  "\033[32m",
	slog.LevelWarn:  "\033[33m",
	slog.LevelError: "\033[31m",
}

// PrettyTextHandler prints one colored line per record for local runs.
// Attributes added with WithAttrs are printed before the record's own, under
// the groups open at the time they were added.
type PrettyTextHandler struct {
	opts   *slog.HandlerOptions
	mu     *sync.Mutex
	w      io.Writer
	prefix string
	attrs  []slog.Attr
}

// NewPrettyTextHandler writes to w
func NewPrettyTextHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyTextHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &PrettyTextHandler{opts: opts, mu: &sync.Mutex{}, w: w}
}

func (h *PrettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}
	return level >= threshold
}

func (h *PrettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s %-5s\033[0m %s",
		levelColors[r.Level], r.Time.Format("15:04:05.000"), r.Level.String(), r.Message)

	write := func(prefix string, a slog.Attr) {
		if !a.Equal(slog.Attr{}) {
			fmt.Fprintf(&b, " \033[36m%s%s\033[0m=%v", prefix, a.Key, a.Value.Resolve())
		}
	}
	for _, a := range h.attrs {
		write("", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		write(h.prefix, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *PrettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, slog.Attr{Key: h.prefix + a.Key, Value: a.Value})
	}
	return &next
}

func (h *PrettyTextHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}
