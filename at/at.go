// Package at is a line-oriented, half-duplex AT command transport for a
// SIM7080-class modem.
//
// An Adapter owns the serial port exclusively for its whole lifetime. It
// serializes AT requests onto the UART, parses interleaved response lines,
// terminator tokens, prompt tokens, and unsolicited result codes (URCs),
// and enforces per-command timeouts and post-completion quiescence
// ("afterrun") windows. There is exactly one thread of control: Run blocks
// the caller until every queued request has reached a terminal state, and
// no goroutine polls the UART independently of that call.
package at

import (
	"strings"
	"time"

	"github.com/sim7080/tracker/framer"
)

// Port is the byte-level link an Adapter drives. *serial.Port satisfies
// this; tests supply a fake.
type Port interface {
	Write(p []byte) (int, error)
	ReadReady(timeout time.Duration) ([]byte, error)
}

// payloadChunk is the maximum number of bytes written per burst during the
// send-prompt subprotocol, and interChunkDelay is the pause between
// bursts, both per the modem's flow-control window.
const (
	payloadChunk    = 100
	interChunkDelay = 100 * time.Millisecond
)

// Adapter is the AT transport. It is not safe for concurrent use: exactly
// one goroutine may call Enqueue/Run/URCDrain at a time, matching the
// single I/O thread this driver runs on.
type Adapter struct {
	port  Port
	queue []*Request
	urcs  *urcRing
	sleep func(time.Duration)
}

// Option configures an Adapter at construction.
type Option func(*Adapter)

// WithURCCapacity overrides the default bound on the URC ring.
func WithURCCapacity(n int) Option {
	return func(a *Adapter) { a.urcs = newURCRing(n) }
}

// New creates an Adapter driving port.
func New(port Port, opts ...Option) *Adapter {
	a := &Adapter{
		port:  port,
		urcs:  newURCRing(DefaultURCCapacity),
		sleep: time.Sleep,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Enqueue places req at the tail of the queue and marks it Scheduled. It
// performs no I/O.
func (a *Adapter) Enqueue(req *Request) {
	req.State = Scheduled
	a.queue = append(a.queue, req)
}

// Run drains the queue in FIFO order, executing each request to a
// terminal state, and blocks until the queue is empty. It does not
// propagate modem-level failures as errors; callers inspect req.State
// after Run returns. The queue is empty again once Run returns.
func (a *Adapter) Run() {
	pending := a.queue
	a.queue = nil
	for _, req := range pending {
		if req.State != Scheduled {
			continue
		}
		a.execute(req)
	}
}

// URCDrain atomically takes and returns the accumulated URC lines.
func (a *Adapter) URCDrain() []string {
	return a.urcs.drain()
}

// URCSeen reports whether a line exactly equal to line is currently
// present in the URC ring, without draining it.
func (a *Adapter) URCSeen(line string) bool {
	return a.urcs.contains(line)
}

func (a *Adapter) execute(req *Request) {
	wire := req.wire()
	if _, err := a.port.Write([]byte(wire + "\r\n")); err != nil {
		req.State = Failed
		return
	}
	req.State = Running
	t0 := time.Now()
	var t1 time.Time
	fr := framer.New()

	for req.State == Running || req.State == RunningWait {
		var remaining time.Duration
		switch req.State {
		case Running:
			remaining = req.Timeout - time.Since(t0)
		case RunningWait:
			remaining = req.Afterrun - time.Since(t1)
		}
		if remaining <= 0 {
			break
		}
		data, err := a.port.ReadReady(remaining)
		if err != nil {
			req.State = Failed
			return
		}
		// All lines framed from this one read are processed before the
		// outer loop re-checks the deadline, even if one of them
		// already made the state terminal — a burst from the modem
		// may land a trailing URC or info line in the same read as
		// the OK/ERROR that ends the command.
		for _, tok := range fr.Feed(data) {
			a.handle(req, wire, tok, &t1)
		}
	}

	switch req.State {
	case Running:
		req.State = Timeout
	case RunningWait:
		req.State = Finished
	}
}

func (a *Adapter) handle(req *Request, wire string, tok framer.Token, t1 *time.Time) {
	switch tok.Kind {
	case framer.Prompt, framer.Download:
		a.sendPayload(req)
		return
	case framer.NUL:
		req.State = FinishedNull
		return
	}

	line := tok.Text
	switch {
	case line == wire:
		// command echo; ignore
	case req.Head != "" && strings.HasPrefix(line, req.Head):
		req.ResTagged = append(req.ResTagged, stripHead(line, req.Head))
	case line == "OK":
		if req.Afterrun > 0 && req.State == Running {
			req.State = RunningWait
			*t1 = time.Now()
		} else {
			req.State = Finished
		}
	case line == "ERROR":
		req.State = Failed
	default:
		if isURC(line) {
			a.urcs.add(line)
		} else {
			req.ResOther = append(req.ResOther, line)
		}
	}
}

// sendPayload chunks req.Data into payloadChunk-sized blocks and writes
// them with interChunkDelay between bursts, per the send-prompt
// subprotocol. An empty payload writes nothing; some commands use the
// prompt as a bare acknowledgement rather than a payload request.
func (a *Adapter) sendPayload(req *Request) {
	data := req.Data
	for len(data) > 0 {
		n := payloadChunk
		if n > len(data) {
			n = len(data)
		}
		if _, err := a.port.Write(data[:n]); err != nil {
			req.State = Failed
			return
		}
		data = data[n:]
		if len(data) > 0 {
			a.sleep(interChunkDelay)
		}
	}
}
