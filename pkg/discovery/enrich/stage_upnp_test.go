package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rvh-io/hearsay/pkg/discovery"
	"github.com/stretchr/testify/require"
)

const upnpDescXML = `<?xml version="1.0"?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
  <device>
    <friendlyName>Living Room Speaker</friendlyName>
    <manufacturer>Sonos</manufacturer>
    <modelName>Play:1</modelName>
    <serialNumber>ABC123</serialNumber>
  </device>
</root>`

func TestUPnPStage_SkipsNonUPnPProtocol(t *testing.T) {
	d := discovery.NewDeviceInfo("mdns", "127.0.0.1", 80, nil)
	s := NewUPnPStage()
	require.Equal(t, "upnp-description", s.Name())
	s.Enrich(context.Background(), d)
	require.Empty(t, d.FriendlyName())
}

func TestUPnPStage_FetchesAndAppliesDescription(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(upnpDescXML))
	}))
	defer ts.Close()

	d := discovery.NewDeviceInfo("upnp", "127.0.0.1", 1900, map[string]string{"location": ts.URL + "/desc.xml"})
	s := NewUPnPStage()
	s.Enrich(context.Background(), d)

	require.Equal(t, "Living Room Speaker", d.FriendlyName())
	require.Equal(t, "Sonos", d.Manufacturer())
	require.Equal(t, "Play:1", d.Model())
	require.Equal(t, "ABC123", d.SerialNumber())
	require.Equal(t, ts.URL+"/desc.xml", d.DeviceURL())
}

func TestUPnPStage_RejectsUnsafeLocation(t *testing.T) {
	d := discovery.NewDeviceInfo("upnp", "8.8.8.8", 1900, map[string]string{"location": "http://8.8.8.8/desc.xml"})
	s := NewUPnPStage()
	s.Enrich(context.Background(), d)

	require.Empty(t, d.FriendlyName())
	require.Len(t, d.EnrichmentErrors(), 1)
}

func TestUPnPStage_NoLocationIsNoOp(t *testing.T) {
	d := discovery.NewDeviceInfo("upnp", "127.0.0.1", 1900, nil)
	s := NewUPnPStage()
	s.Enrich(context.Background(), d)
	require.Empty(t, d.FriendlyName())
	require.Empty(t, d.EnrichmentErrors())
}
