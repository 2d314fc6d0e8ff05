package sim7080

import (
	"strconv"
	"time"

	"github.com/sim7080/tracker/at"
	"github.com/sim7080/tracker/info"
)

// GNSSFix is the parsed reply to +CGNSINF. Valid reports whether the GNSS
// engine currently has a fix (the modem's second field); the remaining
// fields are only meaningful when Valid is true.
type GNSSFix struct {
	Valid       bool
	UTCDateTime string
	Latitude    float64
	Longitude   float64
	AltitudeM   float64
	SpeedKmh    float64
	CourseDeg   float64
}

// GNSSPower turns the GNSS engine on or off via +CGNSPWR.
func (m *Modem) GNSSPower(on bool) bool {
	param := "0"
	if on {
		param = "1"
	}
	req := at.NewRequest("+CGNSPWR", at.Write, param, time.Second, 0)
	m.run(req)
	return req.State == at.Finished
}

// GetGNSSPosition executes +CGNSINF and parses its first tagged line:
// run-status, fix-status, UTC date/time, latitude, longitude, altitude,
// speed, and course, in that order, followed by fix-mode and reserved
// fields this driver does not use. A malformed or absent reply yields a
// zero-value, Valid=false fix rather than an error — GNSS cold-fix misses
// are routine, not exceptional.
func (m *Modem) GetGNSSPosition() GNSSFix {
	req := at.NewRequest("+CGNSINF", at.Exec, "", time.Second, 0)
	m.run(req)
	if req.State != at.Finished || len(req.ResTagged) == 0 {
		return GNSSFix{}
	}
	fields := info.Fields(req.ResTagged[0])
	if len(fields) < 8 || fields[1] != "1" {
		return GNSSFix{}
	}
	lat, errLat := strconv.ParseFloat(fields[3], 64)
	lon, errLon := strconv.ParseFloat(fields[4], 64)
	if errLat != nil || errLon != nil {
		return GNSSFix{}
	}
	alt, _ := strconv.ParseFloat(fields[5], 64)
	speed, _ := strconv.ParseFloat(fields[6], 64)
	course, _ := strconv.ParseFloat(fields[7], 64)
	return GNSSFix{
		Valid:       true,
		UTCDateTime: fields[2],
		Latitude:    lat,
		Longitude:   lon,
		AltitudeM:   alt,
		SpeedKmh:    speed,
		CourseDeg:   course,
	}
}
