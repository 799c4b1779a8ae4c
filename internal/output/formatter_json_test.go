package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rvh-io/hearsay/pkg/discovery"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatter_EncodesResponse(t *testing.T) {
	resp := &discovery.Response{
		MQTT: []*discovery.MQTTRecord{{Address: "10.0.0.1", Port: 1883, BrokerName: "Mosquitto"}},
	}
	var buf bytes.Buffer
	f := &JSONFormatter{}
	require.NoError(t, f.Format(&buf, resp))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	mqtt := out["mqtt"].([]any)
	require.Len(t, mqtt, 1)
	require.Equal(t, "Mosquitto", mqtt[0].(map[string]any)["broker_name"])
}

func TestJSONFormatter_PrettyAddsIndentation(t *testing.T) {
	resp := &discovery.Response{MQTT: []*discovery.MQTTRecord{{Address: "10.0.0.1"}}}
	var buf bytes.Buffer
	f := &JSONFormatter{Pretty: true}
	require.NoError(t, f.Format(&buf, resp))
	require.Contains(t, buf.String(), "\n  ")
}
