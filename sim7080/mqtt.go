package sim7080

import (
	"fmt"
	"time"

	"github.com/sim7080/tracker/at"
)

// SetupAWSContext writes the broker endpoint/credential parameters
// (+SMCONF), the TLS key/cert slot bindings (+CSSLCFG), and the SSL
// binding (+SMSSL), one request per supplied parameter string, then
// drains the whole batch in a single Run. Individual write failures are
// not distinguished here; callers that need per-parameter diagnostics
// should enqueue through the adapter directly.
func (m *Modem) SetupAWSContext(smconf, csslcfg, smssl []string) {
	for _, param := range smconf {
		m.adapter.Enqueue(at.NewRequest("+SMCONF", at.Write, param, time.Second, 0))
	}
	for _, param := range csslcfg {
		m.adapter.Enqueue(at.NewRequest("+CSSLCFG", at.Write, param, time.Second, 0))
	}
	for _, param := range smssl {
		m.adapter.Enqueue(at.NewRequest("+SMSSL", at.Write, param, time.Second, 0))
	}
	m.adapter.Run()
}

// ConnectAWS opens the MQTT connection configured by SetupAWSContext.
func (m *Modem) ConnectAWS() bool {
	req := at.NewRequest("+SMCONN", at.Exec, "", 20*time.Second, 0)
	m.run(req)
	return req.State == at.Finished
}

// DisconnectAWS closes the MQTT connection.
func (m *Modem) DisconnectAWS() bool {
	req := at.NewRequest("+SMDISC", at.Exec, "", time.Second, 0)
	m.run(req)
	return req.State == at.Finished
}

// PublishMQTT publishes content to topic via the open MQTT connection.
// The command line carries topic/length/qos/retain; content is delivered
// as the send-prompt payload.
func (m *Modem) PublishMQTT(topic, content string, qos, retain int) bool {
	param := fmt.Sprintf(`"%s",%d,%d,%d`, topic, len(content), qos, retain)
	req := at.NewRequest("+SMPUB", at.Write, param, time.Second, 0)
	req.Data = []byte(content)
	m.run(req)
	return req.State == at.Finished
}
