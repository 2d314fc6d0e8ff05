package sim7080

import (
	"strconv"
	"time"

	"github.com/sim7080/tracker/at"
	"github.com/sim7080/tracker/info"
)

// serviceDomainNames maps +CSDP's numeric code to its documented label.
var serviceDomainNames = map[string]string{
	"0": "CS Only",
	"2": "PS Only",
	"3": "CS+PS",
}

// GetNetworkInfo composes +CPSI?, +CSDP?, +CGNAPN?, and +CLBS=1,0 into a
// single snapshot. Each sub-result degrades independently, so a partial
// modem fault never blocks the rest of the snapshot. The radio and
// basestation fields are present only if their command reached Finished
// and the reply parsed cleanly; "Service Domain Preference" and "APN" are
// always present and hold "" when their command did not reach Finished.
//
// +CPSI's line is split on commas and branches on field count: 9 fields
// is the GSM schema, 14 is the LTE schema (with eNBID/SectorID derived
// from SCellID by bit shift/mask). Any other count yields no radio
// fields at all rather than a guess.
func (m *Modem) GetNetworkInfo() map[string]any {
	cpsi := at.NewRequest("+CPSI", at.Read, "", time.Second, 0)
	csdp := at.NewRequest("+CSDP", at.Read, "", time.Second, 0)
	cgnapn := at.NewRequest("+CGNAPN", at.Read, "", time.Second, 0)
	clbs := at.NewRequest("+CLBS", at.Write, "1,0", time.Second, time.Second)
	m.adapter.Enqueue(cpsi)
	m.adapter.Enqueue(csdp)
	m.adapter.Enqueue(cgnapn)
	m.adapter.Enqueue(clbs)
	m.adapter.Run()

	out := map[string]any{}

	if cpsi.State == at.Finished && len(cpsi.ResTagged) > 0 {
		addCPSIFields(out, info.Fields(cpsi.ResTagged[0]))
	}

	out["Service Domain Preference"] = ""
	if csdp.State == at.Finished && len(csdp.ResTagged) > 0 {
		out["Service Domain Preference"] = serviceDomainNames[csdp.ResTagged[0]]
	}

	out["APN"] = ""
	if cgnapn.State == at.Finished {
		out["APN"] = cgnapn.ResTagged
	}

	if clbs.State == at.Finished && len(clbs.ResTagged) > 0 {
		fields := info.Fields(clbs.ResTagged[0])
		if len(fields) >= 4 && fields[0] == "0" {
			out["Basestation Longitude"] = fields[1]
			out["Basestation Latitude"] = fields[2]
			out["Basestation Accuracy"] = fields[3]
		}
	}

	return out
}

func addCPSIFields(out map[string]any, entries []string) {
	if len(entries) != 9 && len(entries) != 14 {
		return
	}
	out["System Mode"] = entries[0]
	out["Operation Mode"] = entries[1]
	if len(entries) > 2 {
		out["MCC-MNC"] = entries[2]
	}

	switch len(entries) {
	case 9:
		out["LAC"] = entries[3]
		out["Cell ID"] = entries[4]
		out["Absolute RF Ch Num"] = entries[5]
		out["RxLev"] = entries[6]
		out["Track LO Adjust"] = entries[7]
		out["C1-C2"] = entries[8]
	case 14:
		out["TAC"] = entries[3]
		sCellID, err := strconv.Atoi(entries[4])
		if err != nil {
			return
		}
		out["SCellID"] = sCellID
		out["eNBID"] = sCellID >> 8
		out["SectorID"] = sCellID & 0xFF
		out["PCellID"] = atoiOr(entries[5])
		out["Frequency Band"] = entries[6]
		out["earfcn"] = atoiOr(entries[7])
		out["dlbw"] = atoiOr(entries[8])
		out["ulbw"] = atoiOr(entries[9])
		out["RSRQ"] = atoiOr(entries[10])
		out["RSRP"] = atoiOr(entries[11])
		out["RSSI"] = atoiOr(entries[12])
		out["RSSNR"] = atoiOr(entries[13])
	}
}

func atoiOr(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}
