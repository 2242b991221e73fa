package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler renders one line per record:
//
//	2026-01-02T15:04:05Z INFO server: loan created [api.go:42] request_id=... loan_id=7
//
// The component attribute is promoted to a prefix and request_id is always
// printed first among the trailing fields.
type consoleHandler struct {
	mu        *sync.Mutex
	out       io.Writer
	level     slog.Leveler
	addSource bool
	bound     []field
	groups    []string
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) slog.Handler {
	return &consoleHandler{mu: new(sync.Mutex), out: w, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	fields := append([]field(nil), h.bound...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendField(fields, h.groups, attr)
		return true
	})
	line := consoleLine{
		when:    record.Time,
		level:   record.Level,
		message: strings.TrimSpace(record.Message),
	}
	line.component, line.requestID, line.fields = promote(fields)
	if h.addSource && record.PC != 0 {
		if src := record.Source(); src != nil {
			line.source = filepath.Base(src.File) + ":" + strconv.Itoa(src.Line)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line.String())
	return err
}

// WithAttrs flattens attrs under the current groups once, so Handle only
// deals with record attributes.
func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.bound = append([]field(nil), h.bound...)
	for _, attr := range attrs {
		next.bound = appendField(next.bound, h.groups, attr)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

type field struct {
	key   string
	value slog.Value
}

// appendField adds attr to dst, expanding groups into dotted keys.
func appendField(dst []field, groups []string, attr slog.Attr) []field {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		inner := groups
		if attr.Key != "" {
			inner = append(append([]string(nil), groups...), attr.Key)
		}
		for _, member := range value.Group() {
			dst = appendField(dst, inner, member)
		}
		return dst
	}
	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	if key == "" {
		return dst
	}
	return append(dst, field{key: key, value: value})
}

// promote pulls the first component and request_id out of fields. Later
// duplicates of either key are dropped.
func promote(fields []field) (component, requestID string, rest []field) {
	var haveComponent, haveRequest bool
	for _, f := range fields {
		switch f.key {
		case FieldComponent:
			if !haveComponent {
				component, haveComponent = plainValue(f.value), true
			}
		case FieldRequestID:
			if !haveRequest {
				requestID, haveRequest = plainValue(f.value), true
			}
		default:
			rest = append(rest, f)
		}
	}
	return component, requestID, rest
}

type consoleLine struct {
	when      time.Time
	level     slog.Level
	component string
	message   string
	source    string
	requestID string
	fields    []field
}

func (l consoleLine) String() string {
	when := l.when
	if when.IsZero() {
		when = time.Now()
	}
	var b strings.Builder
	b.Grow(128 + 24*len(l.fields))
	b.WriteString(when.UTC().Format(time.RFC3339))
	b.WriteString(" " + levelLabel(l.level) + " ")
	if l.component != "" {
		b.WriteString(l.component + ": ")
	}
	if l.message == "" {
		b.WriteString("(no message)")
	} else {
		b.WriteString(l.message)
	}
	if l.source != "" {
		b.WriteString(" [" + l.source + "]")
	}
	if l.requestID != "" {
		b.WriteString(" " + FieldRequestID + "=" + l.requestID)
	}
	for _, f := range l.fields {
		b.WriteString(" " + f.key + "=" + formatValue(f.value))
	}
	b.WriteByte('\n')
	return b.String()
}

// plainValue formats v without quoting, for prefix positions.
func plainValue(v slog.Value) string {
	if v.Kind() == slog.KindString {
		return v.String()
	}
	return formatValue(v)
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindBool, slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindDuration:
		return v.String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	}
	s := v.String()
	if v.Kind() == slog.KindAny {
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	}
	if s == "" || strings.ContainsAny(s, " =\"\t\n\r") || strings.IndexFunc(s, func(r rune) bool { return r < ' ' }) >= 0 {
		return strconv.Quote(s)
	}
	return s
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}
