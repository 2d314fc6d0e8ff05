// Package sim7080 wraps an at.Adapter with typed, high-level operations
// for a SIM7080G-class modem: bring-up, PDP activation, NTP sync, AWS IoT
// MQTT over the modem's own +SM* command family, GNSS, and info queries.
//
// Each operation constructs a fixed AT request sequence, enqueues it,
// drives one Adapter.Run, and reduces the resulting request states to a
// typed result. Parsing of malformed-but-terminal responses degrades to
// empty maps or sentinel errors rather than panicking — the modem's
// replies are not under this driver's control.
package sim7080

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/sim7080/tracker/at"
	"github.com/sim7080/tracker/gpio"
	"github.com/sim7080/tracker/tracelog"
)

var (
	// ErrNoResponse indicates a query command did not reach Finished.
	ErrNoResponse = errors.New("sim7080: modem did not respond")
	// ErrMalformed indicates a Finished response did not match the
	// expected field shape.
	ErrMalformed = errors.New("sim7080: malformed response")
	// ErrNotResponding indicates Initialize exhausted its power-cycle
	// retries without the modem ever reaching Finished on a bare ping.
	ErrNotResponding = errors.New("sim7080: modem not responding")
)

// maxPingTimeouts is the number of consecutive Timeout replies to a bare
// AT ping that triggers a power cycle during Initialize.
const maxPingTimeouts = 10

// maxCycles bounds the number of ping attempts Initialize makes before
// giving up with ErrNotResponding. It is set well above maxPingTimeouts
// so the power-cycle-on-timeout recovery actually gets to run (more than
// once, if the modem stays silent) before Initialize surrenders.
const maxCycles = 3 * maxPingTimeouts

// bootSettle is how long Initialize waits after a power cycle before
// resuming pings, giving the modem time to boot (spec: >= 5s).
const bootSettle = 5 * time.Second

// defaultPingTimeout is the per-ping timeout Initialize uses unless
// overridden with WithPingTimeout.
const defaultPingTimeout = time.Second

// Modem is the SIM7080G facade. It owns no I/O itself; all communication
// runs through the wrapped *at.Adapter.
type Modem struct {
	adapter     *at.Adapter
	power       *gpio.PowerPin
	log         *tracelog.Logger
	pingTimeout time.Duration
	sleep       func(time.Duration)
}

// Option configures a Modem at construction.
type Option func(*Modem)

// WithPingTimeout overrides the per-ping timeout Initialize uses (default
// one second). Tests use a short timeout to exercise the
// maxPingTimeouts-driven power cycle without a real multi-second wait.
func WithPingTimeout(d time.Duration) Option {
	return func(m *Modem) { m.pingTimeout = d }
}

// WithClock overrides the sleep function Initialize uses for its
// post-power-cycle boot settle delay. Tests use it to skip real waits.
func WithClock(sleep func(time.Duration)) Option {
	return func(m *Modem) { m.sleep = sleep }
}

// New wraps adapter and power with a Modem facade. log may be nil, in
// which case a discarding logger is used.
func New(adapter *at.Adapter, power *gpio.PowerPin, log *tracelog.Logger, opts ...Option) *Modem {
	if log == nil {
		log = tracelog.Discard("sim7080")
	}
	m := &Modem{adapter: adapter, power: power, log: log, pingTimeout: defaultPingTimeout, sleep: time.Sleep}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PowerCycle asserts and releases the modem's power pin.
func (m *Modem) PowerCycle() {
	m.log.Info("power cycling modem")
	m.power.Toggle()
}

func (m *Modem) run(req *at.Request) {
	m.adapter.Enqueue(req)
	m.adapter.Run()
}

// Initialize brings the modem up to a known-responsive state and enables
// verbose (+CMEE=2) error reporting. If reboot is true it power-cycles
// before pinging. It retries a bare "AT" ping, power-cycling after
// maxPingTimeouts consecutive Timeouts, and power-cycling again if the
// modem answers with a NUL terminator alongside a "NORMAL POWER DOWN" URC.
// It gives up after repeated failure to avoid looping forever on truly
// dead hardware.
func (m *Modem) Initialize(reboot bool) error {
	if reboot {
		m.log.Info("rebooting modem")
		m.PowerCycle()
		m.sleep(bootSettle)
	}

	timeouts := 0
	for cycles := 0; cycles < maxCycles; cycles++ {
		ping := at.NewRequest("", at.Exec, "", m.pingTimeout, m.pingTimeout)
		m.run(ping)

		if ping.State != at.Timeout {
			timeouts = 0
		}
		switch ping.State {
		case at.Timeout:
			timeouts++
			if timeouts == maxPingTimeouts {
				timeouts = 0
				m.log.Info("modem not responding; rebooting again")
				m.PowerCycle()
				m.sleep(bootSettle)
			}
		case at.FinishedNull:
			urcs := m.adapter.URCDrain()
			if containsPrefix(urcs, "NORMAL POWER DOWN") {
				m.log.Info("modem in power-down mode; rebooting again")
				m.PowerCycle()
				m.sleep(bootSettle)
			}
		case at.Finished:
			m.log.Info("modem ready")
			cmee := at.NewRequest("+CMEE", at.Write, "2", time.Second, 0)
			m.run(cmee)
			return nil
		}
	}
	return ErrNotResponding
}

func containsPrefix(lines []string, prefix string) bool {
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}
