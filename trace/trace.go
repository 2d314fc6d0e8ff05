// Package trace provides a decorator for io.ReadWriter that logs all reads
// and writes, giving a byte-exact record of everything passing through it.
// A Trace implements only Read and Write: it has no Buffered method, so it
// cannot stand in for the drivers.UART that serial.New takes, and no
// ReadReady method, so it is not an at.Port.
package trace

import (
	"io"

	"github.com/sim7080/tracker/tracelog"
)

// Trace is a trace log on an io.ReadWriter. All reads and writes are
// logged at Debug level through the wrapped Logger.
type Trace struct {
	rw   io.ReadWriter
	log  *tracelog.Logger
	wfmt string
	rfmt string
}

// Option modifies a Trace object created by New.
type Option func(*Trace)

// New creates a new trace on the io.ReadWriter, logging through log.
func New(rw io.ReadWriter, log *tracelog.Logger, opts ...Option) *Trace {
	t := &Trace{rw: rw, log: log, wfmt: "w: %s", rfmt: "r: %s"}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ReadFormat sets the format used for read logs.
func ReadFormat(format string) Option {
	return func(t *Trace) {
		t.rfmt = format
	}
}

// WriteFormat sets the format used for write logs.
func WriteFormat(format string) Option {
	return func(t *Trace) {
		t.wfmt = format
	}
}

func (t *Trace) Read(p []byte) (n int, err error) {
	n, err = t.rw.Read(p)
	if n > 0 {
		t.log.Debugf(t.rfmt, p[:n])
	}
	return n, err
}

func (t *Trace) Write(p []byte) (n int, err error) {
	n, err = t.rw.Write(p)
	if n > 0 {
		t.log.Debugf(t.wfmt, p[:n])
	}
	return n, err
}
