package sim7080

import (
	"time"

	"github.com/sim7080/tracker/at"
	"github.com/sim7080/tracker/info"
)

// fallbackAPN is substituted when the carrier's recommended APN
// (+CGNAPN) comes back empty — some SIMs never populate it.
const fallbackAPN = `"tm"`

// SetupLTE cycles radio function off, selects LTE-only mode, brings radio
// function back on, and selects CAT-M1 via +CMNB=1. It reports
// success based on the CNMP write, mirroring the upstream driver's
// choice of which step in the sequence is authoritative.
func (m *Modem) SetupLTE() bool {
	cfun0 := at.NewRequest("+CFUN", at.Write, "0", time.Second, 0)
	cnmp := at.NewRequest("+CNMP", at.Write, "38", time.Second, 0)
	cfun1 := at.NewRequest("+CFUN", at.Write, "1", time.Second, 0)
	cmnb := at.NewRequest("+CMNB", at.Write, "1", time.Second, 5*time.Second)

	m.adapter.Enqueue(cfun0)
	m.adapter.Enqueue(cnmp)
	m.adapter.Enqueue(cfun1)
	m.adapter.Enqueue(cmnb)
	m.adapter.Run()

	return cnmp.State == at.Finished
}

// SetupPDPContext reads the carrier-recommended APN, falls back to
// fallbackAPN when the carrier leaves it blank, configures PDP context 0,
// activates it, and reads back the context table to confirm activation.
func (m *Modem) SetupPDPContext() bool {
	apnReq := at.NewRequest("+CGNAPN", at.Exec, "", time.Second, 0)
	m.run(apnReq)

	apn := fallbackAPN
	if len(apnReq.ResTagged) > 0 {
		fields := info.Fields(apnReq.ResTagged[0])
		if len(fields) > 1 && fields[1] != `""` {
			apn = fields[1]
		}
	}
	m.log.Infof("using APN %s", apn)

	cncfg := at.NewRequest("+CNCFG", at.Write, "0,1", time.Second, 0)
	cnactWrite := at.NewRequest("+CNACT", at.Write, "0,1", 3*time.Second, 10*time.Second)
	cnactRead := at.NewRequest("+CNACT", at.Read, "", time.Second, 0)
	m.adapter.Enqueue(cncfg)
	m.adapter.Enqueue(cnactWrite)
	m.adapter.Enqueue(cnactRead)
	m.adapter.Run()

	return cnactRead.State == at.Finished
}

// IPContext is one row of the +CNACT? PDP context table.
type IPContext struct {
	ID    string
	State string
	IP    string
}

// GetIPAddresses reads the PDP context table and parses each tagged line
// as "id,state,ip". Rows with an unexpected field count are skipped.
func (m *Modem) GetIPAddresses() ([]IPContext, error) {
	req := at.NewRequest("+CNACT", at.Read, "", time.Second, 0)
	m.run(req)
	if req.State != at.Finished {
		return nil, ErrNoResponse
	}
	var contexts []IPContext
	for _, line := range req.ResTagged {
		fields := info.Fields(line)
		if len(fields) != 3 {
			continue
		}
		contexts = append(contexts, IPContext{ID: fields[0], State: fields[1], IP: info.Unquote(fields[2])})
	}
	return contexts, nil
}
