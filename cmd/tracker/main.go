// Command tracker is the firmware entrypoint: it wires the UART and power
// pin to the AT transport, brings up the SIM7080G facade, loads the
// on-device configuration file, and runs the application state machine
// forever.
//
// Built with TinyGo for a microcontroller target; the board's pin
// assignments below (UART0, GPIO14) match the reference wiring in
// spec.md §6 and should be adjusted per board.
package main

import (
	"machine"

	"github.com/sim7080/tracker/at"
	"github.com/sim7080/tracker/config"
	"github.com/sim7080/tracker/gpio"
	"github.com/sim7080/tracker/serial"
	"github.com/sim7080/tracker/sim7080"
	"github.com/sim7080/tracker/tracelog"
	"github.com/sim7080/tracker/tracker"
)

const configPath = "config.json"

// hardwarePin adapts a machine.Pin to gpio.OutputPin.
type hardwarePin struct {
	pin machine.Pin
}

func (h hardwarePin) Configure(cfg gpio.PinConfig) {
	mode := machine.PinOutput
	if cfg.Mode != gpio.PinOutput {
		mode = machine.PinInput
	}
	h.pin.Configure(machine.PinConfig{Mode: mode})
}

func (h hardwarePin) High() { h.pin.High() }
func (h hardwarePin) Low()  { h.pin.Low() }

func main() {
	log := tracelog.New("tracker", tracelog.Info, nil)

	uart := machine.UART0
	if err := uart.Configure(machine.UARTConfig{BaudRate: serial.DefaultBaud}); err != nil {
		log.Criticalf("failed to configure UART: %s", err)
		return
	}
	port := serial.New(uart)

	power := gpio.NewPowerPin(hardwarePin{pin: machine.GPIO14})
	adapter := at.New(port)
	modem := sim7080.New(adapter, power, log.With("modem"))

	cfg, err := config.Load(configPath, config.WithDefaultCampingInterval(tracker.DefaultCampingInterval))
	if err != nil {
		log.Criticalf("failed to load %s: %s", configPath, err)
		return
	}

	app := tracker.New(modem, cfg, log.With("state"))
	app.Run()
}
