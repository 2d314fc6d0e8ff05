package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sim7080/tracker/config"
)

const sampleJSON = `{
	"time": {"ntp_server": "pool.ntp.org", "timezone_offset": 2},
	"aws_config": {
		"smconf": ["\"CLIENTID\",\"tracker-1\""],
		"csslcfg": ["\"cacert\",0,\"ca.pem\""],
		"smssl": ["1,\"ca.pem\""],
		"mqtt_update_topic": "trackers/1/update"
	},
	"tracking": {"camping_interval": 300}
}`

func TestParseReadsFullSchema(t *testing.T) {
	c, err := config.Parse(strings.NewReader(sampleJSON))
	require.NoError(t, err)
	assert.Equal(t, "pool.ntp.org", c.Time.NTPServer)
	assert.Equal(t, 2, c.Time.TimezoneOffset)
	assert.Equal(t, "trackers/1/update", c.AWSConfig.MQTTUpdateTopic)
	require.Len(t, c.AWSConfig.SMConf, 1)
	assert.Equal(t, 300*time.Second, c.CampingInterval())
}

func TestWithDefaultCampingIntervalOnlyAppliesWhenZero(t *testing.T) {
	noInterval := `{"time":{"ntp_server":"x","timezone_offset":0},"aws_config":{},"tracking":{}}`
	c, err := config.Parse(strings.NewReader(noInterval), config.WithDefaultCampingInterval(90*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, c.CampingInterval())

	c2, err := config.Parse(strings.NewReader(sampleJSON), config.WithDefaultCampingInterval(90*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 300*time.Second, c2.CampingInterval())
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	_, err := config.Parse(strings.NewReader("{not json"))
	assert.Error(t, err)
}
