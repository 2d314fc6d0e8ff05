package sim7080_test

import (
	"bytes"
	"time"

	"github.com/sim7080/tracker/gpio"
)

// fakePort scripts replies for the facade's underlying at.Adapter: Write
// captures what was sent, and each command line written (one ending in
// CRLF) releases the next scripted reply to ReadReady, the way a modem
// only answers once a command arrives. Payload bursts release nothing.
type fakePort struct {
	writes  [][]byte
	script  [][]byte
	replies chan []byte
}

func newFakePort() *fakePort {
	return &fakePort{replies: make(chan []byte, 64)}
}

func (f *fakePort) Write(p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)
	f.writes = append(f.writes, cp)
	if bytes.HasSuffix(p, []byte("\r\n")) && len(f.script) > 0 {
		f.replies <- f.script[0]
		f.script = f.script[1:]
	}
	return len(p), nil
}

func (f *fakePort) ReadReady(timeout time.Duration) ([]byte, error) {
	select {
	case b := <-f.replies:
		return b, nil
	case <-time.After(timeout):
		return nil, nil
	}
}

// reply appends data to the script, to be released by the next command
// write that has no reply yet.
func (f *fakePort) reply(data string) {
	f.script = append(f.script, []byte(data))
}

// fakePin is a no-op gpio.OutputPin so Modem's power-cycle path can run in
// tests without real hardware.
type fakePin struct {
	highs, lows int
}

func (p *fakePin) Configure(_ gpio.PinConfig) {}
func (p *fakePin) High()                      { p.highs++ }
func (p *fakePin) Low()                       { p.lows++ }
