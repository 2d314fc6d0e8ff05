package tracker_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sim7080/tracker/at"
	"github.com/sim7080/tracker/config"
	"github.com/sim7080/tracker/gpio"
	"github.com/sim7080/tracker/sim7080"
	"github.com/sim7080/tracker/tracker"
)

// fakePort releases the next scripted reply each time a command line
// (ending in CRLF) is written, so a reply never arrives before its command.
type fakePort struct {
	writes  [][]byte
	script  [][]byte
	replies chan []byte
}

func newFakePort() *fakePort { return &fakePort{replies: make(chan []byte, 128)} }

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

func (f *fakePort) reply(data string) { f.script = append(f.script, []byte(data)) }

type fakePin struct{}

func (fakePin) Configure(_ gpio.PinConfig) {}
func (fakePin) High()                      {}
func (fakePin) Low()                       {}

func newApp(p *fakePort, cfg config.Config) *tracker.Application {
	adapter := at.New(p)
	power := gpio.NewPowerPin(fakePin{})
	modem := sim7080.New(adapter, power, nil,
		sim7080.WithPingTimeout(time.Millisecond),
		sim7080.WithClock(func(time.Duration) {}),
	)
	var noSleep []time.Duration
	return tracker.New(modem, cfg, nil, tracker.WithClock(func(d time.Duration) {
		noSleep = append(noSleep, d)
	}))
}

func TestBootTransitionsToConfigurationOnSuccess(t *testing.T) {
	p := newFakePort()
	app := newApp(p, config.Config{})
	p.reply("AT\r\r\nOK\r\n")
	p.reply("AT+CMEE=2\r\r\nOK\r\n")
	app.Step()
	assert.Equal(t, tracker.Configuration, app.State())
}

func TestConfigurationFailsLTEGoesToError(t *testing.T) {
	p := newFakePort()
	app := newApp(p, config.Config{})
	p.reply("AT\r\r\nOK\r\n")
	p.reply("AT+CMEE=2\r\r\nOK\r\n")
	app.Step() // boot -> configuration
	require.Equal(t, tracker.Configuration, app.State())

	p.reply("AT+CFUN=0\r\r\nERROR\r\n")
	p.reply("AT+CNMP=38\r\r\nERROR\r\n")
	p.reply("AT+CFUN=1\r\r\nERROR\r\n")
	p.reply("AT+CMNB=1\r\r\nERROR\r\n")
	app.Step() // configuration: CNMP write fails -> Error
	assert.Equal(t, tracker.Error, app.State())
}

func TestIdleSleepsCampingIntervalThenTracks(t *testing.T) {
	p := newFakePort()
	cfg := config.Config{Tracking: config.Tracking{CampingIntervalSeconds: 42}}
	var slept []time.Duration
	modem := sim7080.New(at.New(p), gpio.NewPowerPin(fakePin{}), nil,
		sim7080.WithPingTimeout(time.Millisecond),
		sim7080.WithClock(func(time.Duration) {}),
	)
	app := tracker.New(modem, cfg, nil, tracker.WithClock(func(d time.Duration) {
		slept = append(slept, d)
	}))
	// Drive to Idle state by hand via reflection-free approach: boot, then
	// force Configuration to Idle with a minimal successful sequence.
	p.reply("AT\r\r\nOK\r\n")
	p.reply("AT+CMEE=2\r\r\nOK\r\n")
	app.Step()
	require.Equal(t, tracker.Configuration, app.State())

	p.reply("AT+CFUN=0\r\r\nOK\r\n")
	p.reply("AT+CNMP=38\r\r\nOK\r\n")
	p.reply("AT+CFUN=1\r\r\nOK\r\n")
	p.reply("AT+CMNB=1\r\r\nOK\r\n")
	p.reply("AT+CGMI\r\r\nSIMCom\r\nOK\r\n")
	p.reply("AT+CGMM\r\r\nSIM7080G\r\nOK\r\n")
	p.reply("AT+CGMR\r\r\n1000\r\nOK\r\n")
	p.reply("AT+CIMI\r\r\n001010000000000\r\nOK\r\n")
	p.reply("AT+GSN\r\r\n000000000000000\r\nOK\r\n")
	p.reply("AT+CGNAPN\r\r\n+CGNAPN: 1,\"internet\"\r\nOK\r\n")
	p.reply("AT+CNCFG=0,1\r\r\nOK\r\n")
	p.reply("AT+CNACT=0,1\r\r\nOK\r\n")
	p.reply("AT+CNACT?\r\r\n+CNACT: 0,1,\"10.0.0.5\"\r\nOK\r\n")
	p.reply("AT+CNACT?\r\r\n+CNACT: 0,1,\"10.0.0.5\"\r\nOK\r\n")
	p.reply("AT+CNTP=,0\r\r\nOK\r\n")
	p.reply("AT+CNTP\r\r\n+CNTP: 1\r\nOK\r\n")
	p.reply("AT+CCLK?\r\r\n+CCLK: \"24/01/14,18:08:32+02\"\r\nOK\r\n")
	app.Step() // configuration -> idle
	require.Equal(t, tracker.Idle, app.State())

	app.Step() // idle -> track
	assert.Equal(t, tracker.Track, app.State())
	require.NotEmpty(t, slept)
	assert.Equal(t, 42*time.Second, slept[len(slept)-1])
}

func TestErrorStateIsAbsorbing(t *testing.T) {
	p := newFakePort()
	app := newApp(p, config.Config{})
	// The first five bare pings are answered with ERROR and the rest time
	// out; no ping ever reaches Finished, so Initialize's retry loop runs
	// to exhaustion and boot lands in Error.
	for i := 0; i < 5; i++ {
		p.reply("ERROR\r\n")
	}
	app.Step()
	require.Equal(t, tracker.Error, app.State())

	app.Step()
	assert.Equal(t, tracker.Error, app.State())
}
