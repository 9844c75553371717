// Package logging provides the leveled logger capability that the
// Dispatcher and its default adapters log through. The interface shape
// mirrors hashicorp/go-retryablehttp's LeveledLogger (four named
// levels, a message plus variadic key/value pairs) since that is
// already the idiomatic Go rendering of a structured log sink.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Level enumerates the four log levels the core ever emits at.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
	None
)

// Logger is the capability the core and its default adapters log
// through. kv is an alternating sequence of string keys and arbitrary
// values, following the zap/zerolog/retryablehttp convention.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// console is the default Logger, writing structured, leveled output
// through zerolog. It is what New uses when the caller's Config does
// not supply its own Logger.
type console struct {
	z   zerolog.Logger
	min Level
}

// NewConsoleLogger returns the default Logger, writing to w at the
// given minimum level. A nil w defaults to os.Stderr.
func NewConsoleLogger(min Level, w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}
	z := zerolog.New(w).With().Timestamp().Str("component", "telemetry").Logger()
	return &console{z: z, min: min}
}

func (c *console) Debug(msg string, kv ...any) {
	if c.min > Debug {
		return
	}
	withFields(c.z.Debug(), kv).Msg(msg)
}

func (c *console) Info(msg string, kv ...any) {
	if c.min > Info {
		return
	}
	withFields(c.z.Info(), kv).Msg(msg)
}

func (c *console) Warn(msg string, kv ...any) {
	if c.min > Warn {
		return
	}
	withFields(c.z.Warn(), kv).Msg(msg)
}

func (c *console) Error(msg string, kv ...any) {
	if c.min > Error {
		return
	}
	withFields(c.z.Error(), kv).Msg(msg)
}

func withFields(e *zerolog.Event, kv []any) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(key, kv[i+1])
	}
	return e
}

// Noop is a Logger that discards everything; used as a safe zero value
// in tests that don't care about log output.
type Noop struct{}

func (Noop) Debug(string, ...any) {}
func (Noop) Info(string, ...any)  {}
func (Noop) Warn(string, ...any)  {}
func (Noop) Error(string, ...any) {}
