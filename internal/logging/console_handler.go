package logging

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// subjectKeys are lifted out of the attribute list and printed, in this
// order, as the "component / capture / stage:" line prefix.
var subjectKeys = []string{FieldComponent, FieldCapture, FieldStage}

type field struct {
	key   string
	value slog.Value
}

type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     *slog.LevelVar
	preset    []field
	groups    []string
	addSource bool
}

func newConsoleHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if !h.Enabled(context.Background(), record.Level) {
		return nil
	}

	fields := slices.Clone(h.preset)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendFlattened(fields, h.groups, attr)
		return true
	})
	subject, rest := splitSubject(fields)

	var b strings.Builder
	b.WriteString(consoleTime(record.Time))
	b.WriteByte(' ')
	b.WriteString(levelLabel(record.Level))
	b.WriteByte(' ')
	if subject != "" {
		b.WriteString(subject)
		b.WriteString(": ")
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	b.WriteString(msg)
	if h.addSource {
		if src := record.Source(); src != nil {
			b.WriteString(" [" + sourceLocation(src.File, src.Line) + "]")
		}
	}
	for _, f := range rest {
		b.WriteByte(' ')
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(quotedValue(f.value))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	for _, attr := range attrs {
		clone.preset = appendFlattened(clone.preset, h.groups, attr)
	}
	return clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *consoleHandler) clone() *consoleHandler {
	return &consoleHandler{
		mu:        h.mu,
		w:         h.w,
		level:     h.level,
		preset:    slices.Clone(h.preset),
		groups:    slices.Clone(h.groups),
		addSource: h.addSource,
	}
}

// splitSubject removes the first occurrence of each subject key from fields
// and joins their values into the line prefix.
func splitSubject(fields []field) (string, []field) {
	found := make(map[string]string, len(subjectKeys))
	rest := fields[:0:0]
	for _, f := range fields {
		if slices.Contains(subjectKeys, f.key) {
			if _, seen := found[f.key]; !seen {
				found[f.key] = strings.TrimSpace(plainValue(f.value))
			}
			continue
		}
		if f.key != "" {
			rest = append(rest, f)
		}
	}
	parts := make([]string, 0, len(subjectKeys))
	for _, key := range subjectKeys {
		if v := found[key]; v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " / "), rest
}

func appendFlattened(dst []field, prefix []string, attr slog.Attr) []field {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		next := prefix
		if attr.Key != "" {
			next = append(slices.Clone(prefix), attr.Key)
		}
		for _, child := range value.Group() {
			dst = appendFlattened(dst, next, child)
		}
		return dst
	}
	key := attr.Key
	if len(prefix) > 0 {
		key = strings.Join(append(slices.Clone(prefix), key), ".")
		key = strings.TrimSuffix(key, ".")
	}
	return append(dst, field{key: key, value: value})
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
