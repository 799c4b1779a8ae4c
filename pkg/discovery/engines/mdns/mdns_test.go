package mdns

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueryList_All(t *testing.T) {
	queries := queryList("all")
	require.Equal(t, serviceDiscoveryQuery, queries[0])
	require.Greater(t, len(queries), 1)
}

func TestQueryList_Specific(t *testing.T) {
	require.Equal(t, []string{"_ipp._tcp.local."}, queryList("_ipp._tcp.local"))
	require.Equal(t, []string{"_ipp._tcp.local."}, queryList("_ipp._tcp.local."))
}

func TestSplitInstanceName(t *testing.T) {
	name, svc := splitInstanceName("My Printer._ipp._tcp.local.")
	require.Equal(t, "My Printer", name)
	require.Equal(t, "_ipp._tcp", svc)
}

func TestSplitTXT(t *testing.T) {
	k, v, ok := splitTXT("model=ET-2720")
	require.True(t, ok)
	require.Equal(t, "model", k)
	require.Equal(t, "ET-2720", v)

	_, _, ok = splitTXT("novalue")
	require.False(t, ok)
}

func TestCleanName(t *testing.T) {
	require.Equal(t, "host", cleanName("host.local."))
	require.Equal(t, "host", cleanName("host."))
}

func TestAttachAddressToHost(t *testing.T) {
	instances := map[string]*instance{
		"a": {hostname: "printer", addresses: map[string]bool{}},
	}
	attachAddressToHost(instances, "printer.local.", "10.0.0.5")
	require.True(t, instances["a"].addresses["10.0.0.5"])
}

func TestEnsureInstance_ReusesExisting(t *testing.T) {
	instances := map[string]*instance{}
	a := ensureInstance(instances, "x")
	b := ensureInstance(instances, "x")
	require.Same(t, a, b)
}
