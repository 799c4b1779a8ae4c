package coap

import (
	"testing"
	"time"

	"github.com/rvh-io/hearsay/pkg/discovery"
	"github.com/stretchr/testify/require"
)

func TestRemainingBudget(t *testing.T) {
	require.Equal(t, 2*time.Second, remainingBudget(5*time.Second, 3*time.Second))
	require.Equal(t, time.Duration(0), remainingBudget(2*time.Second, 5*time.Second))
}

func TestMinDur(t *testing.T) {
	require.Equal(t, time.Second, minDur(time.Second, 2*time.Second))
	require.Equal(t, time.Second, minDur(2*time.Second, time.Second))
}

func TestRandToken_ProducesRequestedLength(t *testing.T) {
	require.Len(t, randToken(4), 4)
	require.Len(t, randToken(0), 0)
}

func TestProcessWellKnown_PopulatesResourcesAndObservable(t *testing.T) {
	devices := map[string]*deviceState{}
	payload := `</temp>;rt="oic.r.temperature";if="sensor";obs,</status>;rt="status"`

	processWellKnown(devices, "10.0.0.4", payload)

	d, ok := devices["10.0.0.4"]
	require.True(t, ok)
	require.Len(t, d.record.Resources, 2)
	require.Equal(t, []string{"/temp"}, d.record.ObservableResources)
	require.True(t, d.record.UnauthenticatedAccess)
	require.Equal(t, payload, d.record.RawLinkFormat)
}

func TestProcessWellKnown_IgnoresUnparsablePayload(t *testing.T) {
	devices := map[string]*deviceState{}
	processWellKnown(devices, "10.0.0.4", "")
	require.Empty(t, devices)
}

func TestGenerateRiskFlags(t *testing.T) {
	rec := &discovery.CoAPRecord{
		UnauthenticatedAccess: true,
		DTLSSupported:         false,
		ObservableResources:   []string{"/temp"},
	}
	generateRiskFlags(rec)
	require.ElementsMatch(t, []string{"unauthenticated_access", "no_dtls", "observable_data_leak"}, rec.RiskFlags)
}

func TestGenerateRiskFlags_DTLSSuppressesNoDTLSFlag(t *testing.T) {
	rec := &discovery.CoAPRecord{DTLSSupported: true}
	generateRiskFlags(rec)
	require.NotContains(t, rec.RiskFlags, "no_dtls")
}
