// Package gpio drives the modem's power-toggle pin.
//
// The SIM7080G is powered on and off by asserting a single GPIO pin high
// for a minimum hold time and then releasing it, mirroring the reset-pin
// handling used by other TinyGo cellular/GSM drivers in this family.
package gpio

import (
	"time"
)

// PowerHoldDuration is how long the power pin is held high during a power
// cycle, per spec (>= 2s).
const PowerHoldDuration = 2 * time.Second

// OutputPin is the subset of machine.Pin's behavior PowerPin depends on,
// narrowed to an interface so it can be exercised with a fake in tests.
// Configure takes this package's PinConfig, so a machine.Pin does not
// satisfy it directly; cmd/tracker wraps one in a small adapter.
type OutputPin interface {
	Configure(config PinConfig)
	High()
	Low()
}

// PinConfig mirrors machine.PinConfig's shape for the subset gpio uses.
type PinConfig struct {
	Mode PinMode
}

// PinMode mirrors machine.PinMode.
type PinMode uint8

// PinOutput is the digital-output pin mode.
const PinOutput PinMode = 1

// PowerPin drives the modem's power-control GPIO.
type PowerPin struct {
	pin   OutputPin
	sleep func(time.Duration)
}

// NewPowerPin configures pin as a digital output, initially low.
func NewPowerPin(pin OutputPin) *PowerPin {
	pin.Configure(PinConfig{Mode: PinOutput})
	pin.Low()
	return &PowerPin{pin: pin, sleep: time.Sleep}
}

// Toggle asserts the pin high for PowerHoldDuration, then releases it.
// Callers must additionally wait for the modem's boot time (spec: >= 5s)
// before expecting UART traffic; that wait belongs to the facade, not
// this pin driver, since it depends on what the caller does next.
func (p *PowerPin) Toggle() {
	p.pin.High()
	p.sleep(PowerHoldDuration)
	p.pin.Low()
}
