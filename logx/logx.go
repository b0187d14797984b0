// Package logx provides the leveled text logger used by the corpus loader,
// training driver, and evaluation CLI. Grounded on schemaexec's Logger in
// log.go, with timestamp formatting swapped to timefmt-go.
package logx

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/itchyny/timefmt-go"
)

// Level is the severity of a log record.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a Level, defaulting to LevelWarn.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "ERROR":
		return LevelError
	case "WARN", "WARNING":
		return LevelWarn
	case "INFO":
		return LevelInfo
	case "DEBUG":
		return LevelDebug
	default:
		return LevelWarn
	}
}

// Logger is the interface used by corpus and cmd/tgen-eval.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	// With returns a child logger augmented with the given fields.
	With(fields map[string]any) Logger
}

const timeLayout = "%Y-%m-%dT%H:%M:%S.%f%z"

type textFormatter struct{}

func (f *textFormatter) format(ts time.Time, level Level, msg string, fields map[string]any) []byte {
	var b strings.Builder
	b.Grow(128)

	b.WriteByte('[')
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(timefmt.Format(ts.UTC(), timeLayout))
	b.WriteByte(' ')
	b.WriteString(msg)

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteByte(' ')
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(safeSprint(fields[k]))
		}
	}

	b.WriteByte('\n')
	return []byte(b.String())
}

func safeSprint(v any) string {
	switch t := v.(type) {
	case string:
		if strings.IndexFunc(t, func(r rune) bool { return r <= ' ' }) >= 0 {
			return fmt.Sprintf("%q", t)
		}
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

type defaultLogger struct {
	out        io.Writer
	level      Level
	formatter  *textFormatter
	baseFields map[string]any
	mu         *sync.Mutex
}

// New creates a logger writing lines at or above level to w. If w is nil,
// os.Stderr is used.
func New(level Level, w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}
	return &defaultLogger{
		out:        w,
		level:      level,
		formatter:  &textFormatter{},
		baseFields: make(map[string]any),
		mu:         &sync.Mutex{},
	}
}

type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...any)   {}
func (noopLogger) Infof(format string, args ...any)    {}
func (noopLogger) Warnf(format string, args ...any)    {}
func (noopLogger) Errorf(format string, args ...any)   {}
func (l noopLogger) With(fields map[string]any) Logger { return l }

// Noop returns a Logger that discards everything.
func Noop() Logger { return noopLogger{} }

func (l *defaultLogger) isEnabled(level Level) bool { return level <= l.level }

func (l *defaultLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	merged := make(map[string]any, len(l.baseFields)+len(fields))
	for k, v := range l.baseFields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &defaultLogger{
		out:        l.out,
		level:      l.level,
		formatter:  l.formatter,
		baseFields: merged,
		mu:         l.mu,
	}
}

func (l *defaultLogger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *defaultLogger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *defaultLogger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *defaultLogger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

func (l *defaultLogger) logf(level Level, format string, args ...any) {
	if !l.isEnabled(level) {
		return
	}
	msg := fmt.Sprintf(format, args...)

	fields := make(map[string]any, len(l.baseFields))
	for k, v := range l.baseFields {
		fields[k] = v
	}

	line := l.formatter.format(time.Now(), level, msg, fields)

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.out.Write(line)
}
