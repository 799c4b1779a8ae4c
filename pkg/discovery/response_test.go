package discovery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponse_Count(t *testing.T) {
	resp := &Response{
		UPnP: []*UPnPRecord{{}, {}},
		MDNS: []*MDNSRecord{{}},
		CoAP: []*CoAPRecord{{}, {}, {}},
	}
	require.Equal(t, 6, resp.Count())
}

func TestResponse_Count_Nil(t *testing.T) {
	var resp *Response
	require.Equal(t, 0, resp.Count())
}

func TestResponse_Records_PreservesProtocolOrderAndWithinGroupOrder(t *testing.T) {
	resp := &Response{
		UPnP: []*UPnPRecord{{Address: "10.0.0.1"}, {Address: "10.0.0.2"}},
		MDNS: []*MDNSRecord{{Hostname: "printer", Addresses: []string{"10.0.0.3"}}},
		MQTT: []*MQTTRecord{{Address: "10.0.0.4"}},
	}
	refs := resp.Records()
	require.Len(t, refs, 4)
	require.Equal(t, ProtocolUPnP, refs[0].Protocol)
	require.Equal(t, "10.0.0.1", refs[0].Address)
	require.Equal(t, ProtocolUPnP, refs[1].Protocol)
	require.Equal(t, "10.0.0.2", refs[1].Address)
	require.Equal(t, ProtocolMDNS, refs[2].Protocol)
	require.Equal(t, "10.0.0.3", refs[2].Address)
	require.Equal(t, ProtocolMQTT, refs[3].Protocol)
}

func TestResponse_Records_MDNSFallsBackToHostnameWithoutAddresses(t *testing.T) {
	resp := &Response{MDNS: []*MDNSRecord{{Hostname: "printer.local"}}}
	refs := resp.Records()
	require.Equal(t, "printer.local", refs[0].Address)
}

func TestFingerprintable_SetFingerprintAttachesToOriginatingRecord(t *testing.T) {
	rec := &UPnPRecord{Address: "10.0.0.1"}
	var fp Fingerprintable = rec
	fp.SetFingerprint(&Fingerprint{DeviceCategory: "printer"})
	require.Equal(t, "printer", rec.Fingerprint.DeviceCategory)
}
