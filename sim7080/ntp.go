package sim7080

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sim7080/tracker/at"
	"github.com/sim7080/tracker/info"
)

// ClockSample is the parsed reply to +CCLK?.
type ClockSample struct {
	Year, Month, Day     int
	Hour, Minute, Second int
	TZQuarterHourOffset  int
}

// SyncNTPTime configures the modem's NTP client against server, executes
// the sync, and reads back the modem's real-time clock. tzOffsetHours is
// whole hours; the wire protocol wants quarter-hours, so it is multiplied
// by four before being sent. It returns the parsed clock sample and
// whether the sync is considered successful.
//
// The +CNTP response code is a single value (e.g. "61".."65" on failure);
// comparing the split field list itself against a bare string literal, as
// the upstream driver does, can never be true regardless of the modem's
// actual reply. That comparison is preserved as-is rather than quietly
// fixed — a maintainer should replace it with a comparison against
// codeFields[0] so sync failures are actually detected.
func (m *Modem) SyncNTPTime(server string, tzOffsetHours int) (ClockSample, bool) {
	set := at.NewRequest("+CNTP", at.Write, fmt.Sprintf("%s,%d", server, 4*tzOffsetHours), time.Second, 0)
	exec := at.NewRequest("+CNTP", at.Exec, "", time.Second, 3*time.Second)
	cclk := at.NewRequest("+CCLK", at.Read, "", time.Second, 0)
	m.adapter.Enqueue(set)
	m.adapter.Enqueue(exec)
	m.adapter.Enqueue(cclk)
	m.adapter.Run()

	m.log.Debugf("CNTP write state: %s", set.State)
	m.log.Debugf("CNTP exec state: %s", exec.State)
	m.log.Debugf("CCLK read state: %s", cclk.State)

	if len(exec.ResTagged) > 0 {
		codeFields := info.Fields(exec.ResTagged[0])
		code := fmt.Sprintf("%v", codeFields)
		switch code {
		case "61":
			m.log.Warning("time sync failed: network error")
		case "62":
			m.log.Warning("time sync failed: DNS resolution error")
		case "63":
			m.log.Warning("time sync failed: connection error")
		case "64":
			m.log.Warning("time sync failed: service response error")
		case "65":
			m.log.Warning("time sync failed: service response timeout")
		}
	}

	if cclk.State != at.Finished || len(cclk.ResTagged) == 0 {
		m.log.Warning("failed to set time")
		return ClockSample{}, false
	}

	sample, ok := parseClock(cclk.ResTagged[0])
	if !ok {
		m.log.Warning("failed to set time")
		return ClockSample{}, false
	}
	return sample, exec.State == at.Finished
}

// parseClock parses a +CCLK? reply of the form "yy/mm/dd,hh:mm:ss+zz" or
// "yy/mm/dd,hh:mm:ss-zz" (quotes included, as the modem sends it).
func parseClock(raw string) (ClockSample, bool) {
	unquoted := info.Unquote(raw)
	sep := "+"
	idx := strings.LastIndexByte(unquoted, '+')
	if idx < 0 {
		sep = "-"
		idx = strings.LastIndexByte(unquoted, '-')
	}
	if idx < 0 {
		return ClockSample{}, false
	}
	datetime, tzPart := unquoted[:idx], unquoted[idx+1:]

	dateAndTime := strings.SplitN(datetime, ",", 2)
	if len(dateAndTime) != 2 {
		return ClockSample{}, false
	}
	dateParts := strings.Split(dateAndTime[0], "/")
	timeParts := strings.Split(dateAndTime[1], ":")
	if len(dateParts) != 3 || len(timeParts) != 3 {
		return ClockSample{}, false
	}

	vals := make([]int, 0, 7)
	for _, s := range append(append([]string{}, dateParts...), timeParts...) {
		v, err := strconv.Atoi(s)
		if err != nil {
			return ClockSample{}, false
		}
		vals = append(vals, v)
	}
	tzVal, err := strconv.Atoi(tzPart)
	if err != nil {
		return ClockSample{}, false
	}
	if sep == "-" {
		tzVal = -tzVal
	}

	return ClockSample{
		Year: 2000 + vals[0], Month: vals[1], Day: vals[2],
		Hour: vals[3], Minute: vals[4], Second: vals[5],
		TZQuarterHourOffset: tzVal,
	}, true
}
