// Package config loads the tracker's static JSON configuration file:
// the NTP server and timezone, the AWS IoT MQTT bring-up parameters, and
// the tracking interval.
package config

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Time holds the NTP sync parameters.
type Time struct {
	NTPServer      string `json:"ntp_server"`
	TimezoneOffset int    `json:"timezone_offset"`
}

// AWSConfig holds the ordered parameter lists fed to
// sim7080.Modem.SetupAWSContext, plus the topic telemetry is published to.
type AWSConfig struct {
	SMConf          []string `json:"smconf"`
	CSSLCfg         []string `json:"csslcfg"`
	SMSSL           []string `json:"smssl"`
	MQTTUpdateTopic string   `json:"mqtt_update_topic"`
}

// Tracking holds the application state machine's timing parameters.
type Tracking struct {
	CampingIntervalSeconds int `json:"camping_interval"`
}

// Config is the full, parsed configuration file.
type Config struct {
	Time      Time      `json:"time"`
	AWSConfig AWSConfig `json:"aws_config"`
	Tracking  Tracking  `json:"tracking"`
}

// CampingInterval is Tracking.CampingIntervalSeconds as a time.Duration.
func (c Config) CampingInterval() time.Duration {
	return time.Duration(c.Tracking.CampingIntervalSeconds) * time.Second
}

// Option overlays a default onto a Config before it is returned from Load.
// Defaults apply only to zero-valued fields, so an explicit value in the
// file always wins.
type Option func(*Config)

// WithDefaultCampingInterval sets the camping interval used when the file
// omits tracking.camping_interval (leaves it at the JSON zero value, 0).
func WithDefaultCampingInterval(d time.Duration) Option {
	return func(c *Config) {
		if c.Tracking.CampingIntervalSeconds == 0 {
			c.Tracking.CampingIntervalSeconds = int(d / time.Second)
		}
	}
}

// Load reads and parses the configuration file at path.
func Load(path string, opts ...Option) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "config: open")
	}
	defer f.Close()
	return Parse(f, opts...)
}

// Parse decodes a Config from r, applying opts afterward.
func Parse(r io.Reader, opts ...Option) (Config, error) {
	var c Config
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return Config{}, errors.Wrap(err, "config: decode")
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c, nil
}
