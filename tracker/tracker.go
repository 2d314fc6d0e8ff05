// Package tracker implements the application-level state machine that
// drives a SIM7080G modem through bring-up, idle camping, and periodic
// location/telemetry publication.
package tracker

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/sim7080/tracker/config"
	"github.com/sim7080/tracker/sim7080"
	"github.com/sim7080/tracker/tracelog"
)

// State is one of the application's five states. Transitions are driven
// entirely by Run; Error is absorbing — nothing transitions out of it.
type State int

const (
	Boot State = iota
	Configuration
	Idle
	Track
	Error
)

func (s State) String() string {
	switch s {
	case Boot:
		return "boot"
	case Configuration:
		return "configuration"
	case Idle:
		return "idle"
	case Track:
		return "track"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// errorRetryDelay is how long Error waits before re-checking, so a stuck
// application doesn't spin a CPU core forever.
const errorRetryDelay = 30 * time.Second

// DefaultCampingInterval is used when the configuration file omits
// tracking.camping_interval.
const DefaultCampingInterval = 5 * time.Minute

// Application owns the modem facade, the loaded configuration, and the
// current state.
type Application struct {
	modem *sim7080.Modem
	cfg   config.Config
	log   *tracelog.Logger
	state State
	sleep func(time.Duration)
}

// Option configures an Application at construction.
type Option func(*Application)

// WithClock overrides the sleep function idle/error/configuration delays
// are driven by. Tests use it to skip real waits.
func WithClock(sleep func(time.Duration)) Option {
	return func(a *Application) { a.sleep = sleep }
}

// New constructs an Application in the Boot state.
func New(modem *sim7080.Modem, cfg config.Config, log *tracelog.Logger, opts ...Option) *Application {
	if log == nil {
		log = tracelog.Discard("tracker")
	}
	a := &Application{modem: modem, cfg: cfg, log: log, state: Boot, sleep: time.Sleep}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State returns the application's current state.
func (a *Application) State() State { return a.state }

func (a *Application) transition(next State) {
	a.log.Infof("transitioning from %s to %s", a.state, next)
	a.state = next
}

// Run drives the state machine forever, dispatching to the method for the
// current state on each iteration. Callers that want a bounded run (tests,
// a single boot-to-idle cycle) should call Step instead.
func (a *Application) Run() {
	for {
		a.Step()
	}
}

// Step executes exactly one state's handler and applies its transition.
func (a *Application) Step() {
	switch a.state {
	case Boot:
		a.boot()
	case Configuration:
		a.configuration()
	case Idle:
		a.idle()
	case Track:
		a.track()
	case Error:
		a.errorState()
	}
}

func (a *Application) boot() {
	if err := a.modem.Initialize(true); err != nil {
		a.log.Errorf("boot error: %s", err)
		a.transition(Error)
		return
	}
	a.log.Info("boot successful")
	a.transition(Configuration)
}

func (a *Application) configuration() {
	a.log.Info("connecting modem to LTE")
	if !a.modem.SetupLTE() {
		a.log.Error("failed to connect to LTE network")
		a.transition(Error)
		return
	}
	a.logIdentity()
	a.sleep(5 * time.Second)

	a.log.Info("setting up PDP context")
	if !a.modem.SetupPDPContext() {
		a.log.Error("failed to setup PDP context")
		a.transition(Error)
		return
	}
	if ctxs, err := a.modem.GetIPAddresses(); err == nil {
		for _, ctx := range ctxs {
			a.log.Infof("context id: %s, state: %s, ip: %s", ctx.ID, ctx.State, ctx.IP)
		}
	}

	a.log.Info("syncing time")
	if _, ok := a.modem.SyncNTPTime(a.cfg.Time.NTPServer, a.cfg.Time.TimezoneOffset); !ok {
		a.log.Error("failed to sync time")
		a.transition(Error)
		return
	}

	a.modem.SetupAWSContext(a.cfg.AWSConfig.SMConf, a.cfg.AWSConfig.CSSLCfg, a.cfg.AWSConfig.SMSSL)

	a.log.Info("configuration successful")
	a.transition(Idle)
}

func (a *Application) logIdentity() {
	if v, err := a.modem.GetManufacturer(); err == nil {
		a.log.Infof("manufacturer: %s", v)
	}
	if v, err := a.modem.GetModel(); err == nil {
		a.log.Infof("model: %s", v)
	}
	if v, err := a.modem.GetRevision(); err == nil {
		a.log.Infof("revision: %s", v)
	}
	if v, err := a.modem.GetIMSI(); err == nil {
		a.log.Infof("imsi: %s", v)
	}
	if v, err := a.modem.GetIMEI(); err == nil {
		a.log.Infof("imei: %s", v)
	}
}

func (a *Application) idle() {
	a.sleep(a.cfg.CampingInterval())
	a.transition(Track)
}

// telemetry is the shape published to the AWS IoT update topic.
type telemetry struct {
	State struct {
		Reported struct {
			NetworkInfo map[string]any   `json:"network_info"`
			GNSS        *sim7080.GNSSFix `json:"gnss,omitempty"`
		} `json:"reported"`
	} `json:"state"`
}

func (a *Application) track() {
	var t telemetry
	if a.modem.GNSSPower(true) {
		if fix := a.modem.GetGNSSPosition(); fix.Valid {
			t.State.Reported.GNSS = &fix
		}
		a.modem.GNSSPower(false)
	}

	if !a.modem.ConnectAWS() {
		a.log.Error("track error: failed to connect to AWS")
		a.transition(Error)
		return
	}

	t.State.Reported.NetworkInfo = a.modem.GetNetworkInfo()

	payload, err := json.Marshal(t)
	if err != nil {
		a.log.Errorf("track error: %s", errors.Wrap(err, "marshal telemetry"))
		a.transition(Error)
		return
	}

	if !a.modem.PublishMQTT(a.cfg.AWSConfig.MQTTUpdateTopic, string(payload), 0, 0) {
		a.log.Error("track error: failed to publish telemetry")
	}

	a.modem.DisconnectAWS()
	a.transition(Idle)
}

func (a *Application) errorState() {
	a.log.Critical("application in error state")
	a.sleep(errorRetryDelay)
}
