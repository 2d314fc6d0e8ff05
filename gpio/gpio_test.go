package gpio_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sim7080/tracker/gpio"
)

type fakePin struct {
	configured gpio.PinConfig
	levels     []bool // true = high
}

func (f *fakePin) Configure(c gpio.PinConfig) { f.configured = c }
func (f *fakePin) High()                      { f.levels = append(f.levels, true) }
func (f *fakePin) Low()                       { f.levels = append(f.levels, false) }

func TestNewPowerPinConfiguresOutputAndStartsLow(t *testing.T) {
	f := &fakePin{}
	gpio.NewPowerPin(f)
	assert.Equal(t, gpio.PinOutput, f.configured.Mode)
	assert.Equal(t, []bool{false}, f.levels)
}

func TestToggleAssertsHighThenLow(t *testing.T) {
	f := &fakePin{}
	p := gpio.NewPowerPin(f)
	start := time.Now()
	p.Toggle()
	assert.Equal(t, []bool{false, true, false}, f.levels)
	assert.GreaterOrEqual(t, time.Since(start), gpio.PowerHoldDuration)
}
