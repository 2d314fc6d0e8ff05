// Package serial provides the byte-level half-duplex link between the at
// package and the physical modem: a single-owner handle over an
// already-configured microcontroller UART.
//
// Board UART configuration (baud rate, and on some chips TX/RX pin
// assignment) is board-specific and belongs to the caller, who holds the
// concrete machine.UART and calls its Configure before handing the port
// to New; tinygo.org/x/drivers.UART's generic interface only covers
// Read/Write/Buffered, not Configure, so Port depends on nothing more
// than that.
//
// Unlike a desktop serial port, a tinygo.org/x/drivers.UART has no blocking
// read with a timeout built in; Port.ReadReady polls the UART's buffered
// byte count instead, sleeping in short increments until data arrives or
// the timeout elapses.
package serial

import (
	"time"

	"github.com/pkg/errors"
	"tinygo.org/x/drivers"
)

// DefaultBaud is the baud rate callers should configure their UART for
// before passing it to New, per the modem's factory UART configuration.
const DefaultBaud = 9600

// pollInterval is how often ReadReady checks the UART for buffered bytes
// while waiting out its timeout.
const pollInterval = 2 * time.Millisecond

// Port is a single-owner handle over a UART link to the modem.
type Port struct {
	uart drivers.UART
	buf  []byte
}

// New wraps an already-configured UART in a Port. No hardware flow
// control is assumed.
func New(uart drivers.UART) *Port {
	return &Port{uart: uart, buf: make([]byte, 256)}
}

// Write blocks until all of p has been handed to the UART, in order.
func (p *Port) Write(data []byte) (int, error) {
	n, err := p.uart.Write(data)
	if err != nil {
		return n, errors.Wrap(err, "uart write")
	}
	return n, nil
}

// ReadReady blocks up to timeout for at least one byte to become
// available, then returns whatever is currently buffered. It returns a
// nil slice, not an error, on a plain timeout with nothing read.
func (p *Port) ReadReady(timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	for {
		if n := p.uart.Buffered(); n > 0 {
			if n > len(p.buf) {
				n = len(p.buf)
			}
			read, err := p.uart.Read(p.buf[:n])
			if err != nil {
				return nil, errors.Wrap(err, "uart read")
			}
			out := make([]byte, read)
			copy(out, p.buf[:read])
			return out, nil
		}
		if !time.Now().Before(deadline) {
			return nil, nil
		}
		time.Sleep(pollInterval)
	}
}
