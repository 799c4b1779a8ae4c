package discovery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRequest_Defaults(t *testing.T) {
	req, err := NewRequest()
	require.NoError(t, err)
	require.Equal(t, AllProtocols, req.protocols)
	require.Equal(t, 5*time.Second, req.Timeout())
	require.Equal(t, 2, req.MulticastTTL())
	require.Equal(t, "all", req.MDNSServiceType())
	require.Equal(t, "ssdp:all", req.UPnPSearchTarget())
	require.Equal(t, 2, req.UPnPMX())
	require.Equal(t, []int{1883, 8883}, req.MQTTPorts())
	require.True(t, req.EnrichmentEnabled())
}

func TestNewRequest_AppliesOptions(t *testing.T) {
	req, err := NewRequest(
		WithProtocols(ProtocolMQTT, ProtocolCoAP),
		WithTimeout(10*time.Second),
		WithMulticastTTL(4),
		WithMQTTPorts(1883),
		WithTargets("10.0.0.5", "10.0.0.6"),
		WithEnrichment(false),
	)
	require.NoError(t, err)
	require.True(t, req.HasProtocol(ProtocolMQTT))
	require.False(t, req.HasProtocol(ProtocolUPnP))
	require.Equal(t, 10*time.Second, req.Timeout())
	require.Equal(t, 4, req.MulticastTTL())
	require.Equal(t, []int{1883}, req.MQTTPorts())
	require.Equal(t, []string{"10.0.0.5", "10.0.0.6"}, req.Targets())
	require.False(t, req.EnrichmentEnabled())
}

func TestNewRequest_RejectsEmptyProtocols(t *testing.T) {
	_, err := NewRequest(WithProtocols())
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "protocols", verr.Field)
}

func TestNewRequest_RejectsOutOfRangeMulticastTTL(t *testing.T) {
	_, err := NewRequest(WithMulticastTTL(99))
	require.Error(t, err)
}

func TestNewRequest_RejectsLoopbackInterface(t *testing.T) {
	_, err := NewRequest(WithInterface("127.0.0.1"))
	require.Error(t, err)
}

func TestRequest_AccessorsReturnCopies(t *testing.T) {
	req, err := NewRequest(WithMQTTPorts(1883), WithTargets("10.0.0.1"))
	require.NoError(t, err)

	ports := req.MQTTPorts()
	ports[0] = 9999
	require.Equal(t, []int{1883}, req.MQTTPorts())

	targets := req.Targets()
	targets[0] = "mutated"
	require.Equal(t, []string{"10.0.0.1"}, req.Targets())
}
