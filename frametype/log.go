package frametype

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

// LogLevel is the severity of a log line. Higher levels are more verbose.
type LogLevel int

const (
	LevelError LogLevel = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var levelNames = [...]string{"ERROR", "WARN", "INFO", "DEBUG"}

func (l LogLevel) String() string {
	if l < LevelError || l > LevelDebug {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLogLevel maps a configured level name to a LogLevel, case
// insensitively. Unknown names mean LevelWarn.
func ParseLogLevel(s string) LogLevel {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "WARNING" {
		return LevelWarn
	}
	for i, name := range levelNames {
		if name == s {
			return LogLevel(i)
		}
	}
	return LevelWarn
}

// Logger is the interface used by joiners and mergers for logging.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	// With returns a child logger augmented with the provided fields.
	With(fields map[string]any) Logger
}

const timestampFormat = "%Y-%m-%dT%H:%M:%S.%fZ"

// sink is the writer shared by a logger and all its children.
type sink struct {
	mu sync.Mutex
	w  io.Writer
}

// textLogger writes lines of the form
//
//	[LEVEL] 2006-01-02T15:04:05.000000Z message key=value ...
type textLogger struct {
	out    *sink
	level  LogLevel
	fields map[string]any
	suffix string // fields rendered in key order
}

// NewLogger returns a logger writing lines at or below level to w, or to
// os.Stderr when w is nil.
func NewLogger(level LogLevel, w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}
	return &textLogger{out: &sink{w: w}, level: level}
}

func (l *textLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &textLogger{out: l.out, level: l.level, fields: merged, suffix: renderFields(merged)}
}

func renderFields(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		v := fmt.Sprint(fields[k])
		if strings.ContainsAny(v, " \t\n") {
			v = fmt.Sprintf("%q", v)
		}
		fmt.Fprintf(&b, " %s=%s", k, v)
	}
	return b.String()
}

func (l *textLogger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args) }
func (l *textLogger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args) }
func (l *textLogger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args) }
func (l *textLogger) Errorf(format string, args ...any) { l.logf(LevelError, format, args) }

func (l *textLogger) logf(level LogLevel, format string, args []any) {
	if level > l.level {
		return
	}
	line := fmt.Sprintf("[%s] %s %s%s\n", level,
		timefmt.Format(time.Now().UTC(), timestampFormat),
		fmt.Sprintf(format, args...), l.suffix)

	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	_, _ = io.WriteString(l.out.w, line)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}

func (n noopLogger) With(map[string]any) Logger {
	return n
}

func newNoopLogger() Logger {
	return noopLogger{}
}

// PreviewTypes joins the string forms of types with "," and appends +N when
// more than max are given.
func PreviewTypes(types []*FrameType, max int) string {
	shown := types
	if max > 0 && len(types) > max {
		shown = types[:max]
	}
	items := make([]string, len(shown), len(shown)+1)
	for i, t := range shown {
		items[i] = t.String()
	}
	if rest := len(types) - len(shown); rest > 0 {
		items = append(items, fmt.Sprintf("+%d", rest))
	}
	return strings.Join(items, ",")
}
