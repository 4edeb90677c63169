// Package logx writes fixed-width structured log lines to a single
// destination, the same format and single-writer-mutex discipline the
// gateway's C++ logger used: one line per event, UTC millisecond
// timestamp, padded severity and category, a 20-column event name field,
// then free-form detail.
package logx

import (
	"fmt"
	"io"
	"sync"
	"time"

	"sentrygate/eventbus"
)

var severityStr = map[eventbus.Severity]string{
	eventbus.SeverityDebug: "DEBUG",
	eventbus.SeverityInfo:  "INFO ",
	eventbus.SeverityWarn:  "WARN ",
	eventbus.SeverityAlarm: "ALARM",
	eventbus.SeverityError: "ERROR",
	eventbus.SeverityFatal: "FATAL",
}

var categoryStr = map[eventbus.Category]string{
	eventbus.CategoryTracking:   "TRACKING  ",
	eventbus.CategoryThreat:     "THREAT    ",
	eventbus.CategoryIFF:        "IFF       ",
	eventbus.CategoryEngagement: "ENGAGEMENT",
	eventbus.CategoryNetwork:    "NETWORK   ",
	eventbus.CategoryHealth:     "HEALTH    ",
	eventbus.CategoryControl:   "CONTROL   ",
}

func severityField(s eventbus.Severity) string {
	if v, ok := severityStr[s]; ok {
		return v
	}
	return "?????"
}

func categoryField(c eventbus.Category) string {
	if v, ok := categoryStr[c]; ok {
		return v
	}
	return "??????????"
}

// padEventName pads or truncates name to exactly 20 characters.
func padEventName(name string) string {
	if len(name) >= 20 {
		return name[:20]
	}
	buf := make([]byte, 20)
	copy(buf, name)
	for i := len(name); i < 20; i++ {
		buf[i] = ' '
	}
	return string(buf)
}

// Logger writes formatted log lines to a single destination, serialized
// behind a mutex so concurrent producers never interleave a line.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	level eventbus.Severity
	now   func() time.Time
}

// New returns a Logger writing to out at the given minimum severity.
func New(out io.Writer, level eventbus.Severity) *Logger {
	return &Logger{out: out, level: level, now: time.Now}
}

// SetLevel changes the minimum severity that will be written.
func (l *Logger) SetLevel(level eventbus.Severity) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level reports the current minimum severity.
func (l *Logger) Level() eventbus.Severity {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetOutput redirects future log lines to out.
func (l *Logger) SetOutput(out io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = out
}

// Log writes one formatted line, provided sev meets the current minimum
// severity. eventName is padded or truncated to exactly 20 characters.
func (l *Logger) Log(sev eventbus.Severity, cat eventbus.Category, eventName, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if sev < l.level {
		return
	}
	if l.out == nil {
		return
	}

	now := l.now().UTC()
	ts := now.Format("2006-01-02T15:04:05")
	ms := now.Nanosecond() / 1_000_000

	fmt.Fprintf(l.out, "%s.%03dZ [%s] [%s] %s%s\n",
		ts, ms, severityField(sev), categoryField(cat), padEventName(eventName), detail)
}

// LogRecord is a convenience wrapper for logging an eventbus.Record directly.
func (l *Logger) LogRecord(r eventbus.Record) {
	l.Log(r.Severity, r.Category, r.ID.String(), r.Detail)
}
