package enrich

import (
	"context"
	"testing"

	"github.com/rvh-io/hearsay/pkg/discovery"
	"github.com/stretchr/testify/require"
)

const wsdProbeMatchXML = `<?xml version="1.0"?>
<e:Envelope xmlns:e="http://www.w3.org/2003/05/soap-envelope">
  <e:Body>
    <ProbeMatches>
      <ProbeMatch>
        <EndpointReference><Address>urn:uuid:1234</Address></EndpointReference>
        <Types>tds:Device dn:NetworkVideoTransmitter</Types>
        <Scopes>onvif://www.onvif.org/type/video_encoder</Scopes>
        <XAddrs>http://10.0.0.9/onvif/device_service</XAddrs>
        <MetadataVersion>1</MetadataVersion>
      </ProbeMatch>
    </ProbeMatches>
  </e:Body>
</e:Envelope>`

func TestWSDStage_DerivesNameAndTagsFromTypes(t *testing.T) {
	d := discovery.NewDeviceInfo("wsd", "10.0.0.1", 3702, map[string]string{"raw_xml": wsdProbeMatchXML})
	s := NewWSDStage()
	require.Equal(t, "wsd-types", s.Name())
	s.Enrich(context.Background(), d)

	require.Equal(t, "NetworkVideoTransmitter", d.FriendlyName())
	require.Contains(t, d.DeviceTags(), "wsd:NetworkVideoTransmitter")
	require.Contains(t, d.DeviceTags(), "onvif")
	require.Contains(t, d.DeviceTags(), "onvif:video_encoder")
}

func TestWSDStage_SkipsBareDeviceType(t *testing.T) {
	raw := `<e:Envelope xmlns:e="http://www.w3.org/2003/05/soap-envelope"><e:Body><ProbeMatches><ProbeMatch><Types>tds:Device</Types></ProbeMatch></ProbeMatches></e:Body></e:Envelope>`
	d := discovery.NewDeviceInfo("wsd", "10.0.0.1", 3702, map[string]string{"raw_xml": raw})
	s := NewWSDStage()
	s.Enrich(context.Background(), d)
	require.Empty(t, d.FriendlyName())
	require.Empty(t, d.DeviceTags())
}

func TestWSDStage_SkipsNonWSDProtocol(t *testing.T) {
	d := discovery.NewDeviceInfo("mdns", "10.0.0.1", 3702, map[string]string{"raw_xml": wsdProbeMatchXML})
	s := NewWSDStage()
	s.Enrich(context.Background(), d)
	require.Empty(t, d.FriendlyName())
}

func TestWSDStage_NoRawXMLIsNoOp(t *testing.T) {
	d := discovery.NewDeviceInfo("wsd", "10.0.0.1", 3702, map[string]string{})
	s := NewWSDStage()
	s.Enrich(context.Background(), d)
	require.Empty(t, d.FriendlyName())
}

func TestWSDStage_MalformedXMLIsNoOp(t *testing.T) {
	d := discovery.NewDeviceInfo("wsd", "10.0.0.1", 3702, map[string]string{"raw_xml": "not xml"})
	s := NewWSDStage()
	s.Enrich(context.Background(), d)
	require.Empty(t, d.FriendlyName())
}

func TestWSDStage_DissectsOnvifScopeURIsForFriendlyNameAndModel(t *testing.T) {
	raw := `<e:Envelope xmlns:e="http://www.w3.org/2003/05/soap-envelope"><e:Body><ProbeMatches><ProbeMatch>` +
		`<Scopes>onvif://www.onvif.org/name/Camera%20A onvif://www.onvif.org/hardware/AXIS-P1344</Scopes>` +
		`</ProbeMatch></ProbeMatches></e:Body></e:Envelope>`
	d := discovery.NewDeviceInfo("wsd", "10.0.0.1", 3702, map[string]string{"raw_xml": raw})
	s := NewWSDStage()
	s.Enrich(context.Background(), d)

	require.Equal(t, "Camera A", d.FriendlyName())
	require.Equal(t, "AXIS-P1344", d.Model())
}
