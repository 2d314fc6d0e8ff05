// Package tracelog provides the leveled, named-component logger used
// throughout this driver: serial tracing, modem facade operations, and the
// application state machine all write through a *Logger rather than a bare
// *log.Logger, so every line carries a consistent
// "[YYYY-MM-DD HH:MM:SS] [LEVEL] <name>: <message>" shape regardless of
// which package emitted it.
package tracelog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Level is this package's severity scale. It maps onto slog.Level so a
// Logger can reuse slog's handler machinery, with Critical added above
// slog's built-in ceiling for power-loss and hardware-fault conditions the
// modem driver must never downgrade to a plain error.
type Level int

const (
	Debug Level = iota
	Info
	Warning
	Error
	Critical
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slogLevel() slog.Level {
	return slog.Level((int(l) - int(Info)) * 4)
}

// Logger is a named, level-filtered sink. The zero value is not usable;
// construct with New or Discard.
type Logger struct {
	name    string
	min     *slog.LevelVar
	handler slog.Handler
}

// New builds a Logger named name, writing records at or above min to w. w
// may be nil, in which case stdout is used.
func New(name string, min Level, w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}
	lv := new(slog.LevelVar)
	lv.Set(min.slogLevel())
	return &Logger{
		name:    name,
		min:     lv,
		handler: &textHandler{w: w, min: lv},
	}
}

// Discard builds a Logger named name that drops every record. Facades take
// a *Logger argument that may reasonably be unused in tests or minimal
// deployments; Discard avoids a nil check at every call site.
func Discard(name string) *Logger {
	return New(name, Critical+1, io.Discard)
}

// SetLevel changes the minimum level records are emitted at.
func (l *Logger) SetLevel(min Level) {
	l.min.Set(min.slogLevel())
}

// With returns a Logger sharing this one's handler and level, scoped to a
// sub-component name (e.g. the serial trace decorator under the facade's
// logger: base.With("serial")).
func (l *Logger) With(name string) *Logger {
	return &Logger{name: l.name + "." + name, min: l.min, handler: l.handler}
}

func (l *Logger) log(level Level, msg string) {
	ctx := context.Background()
	if !l.handler.Enabled(ctx, level.slogLevel()) {
		return
	}
	record := slog.NewRecord(time.Now(), level.slogLevel(), msg, 0)
	record.AddAttrs(slog.String("component", l.name), slog.String("level", level.String()))
	_ = l.handler.Handle(ctx, record)
}

func (l *Logger) Debug(msg string)    { l.log(Debug, msg) }
func (l *Logger) Info(msg string)     { l.log(Info, msg) }
func (l *Logger) Warning(msg string)  { l.log(Warning, msg) }
func (l *Logger) Error(msg string)    { l.log(Error, msg) }
func (l *Logger) Critical(msg string) { l.log(Critical, msg) }

func (l *Logger) Debugf(format string, args ...any)    { l.log(Debug, fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...any)     { l.log(Info, fmt.Sprintf(format, args...)) }
func (l *Logger) Warningf(format string, args ...any)  { l.log(Warning, fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any)    { l.log(Error, fmt.Sprintf(format, args...)) }
func (l *Logger) Criticalf(format string, args ...any) { l.log(Critical, fmt.Sprintf(format, args...)) }
