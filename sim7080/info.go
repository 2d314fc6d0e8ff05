package sim7080

import (
	"time"

	"github.com/sim7080/tracker/at"
	"github.com/sim7080/tracker/info"
)

func (m *Modem) queryLast(head string) (string, error) {
	req := at.NewRequest(head, at.Exec, "", time.Second, 0)
	m.run(req)
	if req.State != at.Finished {
		return "", ErrNoResponse
	}
	return info.Last(req.ResOther), nil
}

// GetManufacturer executes +CGMI.
func (m *Modem) GetManufacturer() (string, error) { return m.queryLast("+CGMI") }

// GetModel executes +CGMM.
func (m *Modem) GetModel() (string, error) { return m.queryLast("+CGMM") }

// GetRevision executes +CGMR.
func (m *Modem) GetRevision() (string, error) { return m.queryLast("+CGMR") }

// GetIMSI executes +CIMI.
func (m *Modem) GetIMSI() (string, error) { return m.queryLast("+CIMI") }

// GetIMEI executes +GSN.
func (m *Modem) GetIMEI() (string, error) { return m.queryLast("+GSN") }
