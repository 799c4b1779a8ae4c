package enrich

import (
	"context"
	"encoding/xml"
	"net/url"
	"strings"

	"github.com/rvh-io/hearsay/pkg/discovery"
)

// wsdEnvelope is the subset of a WS-Discovery ProbeMatch SOAP envelope this
// stage cares about. The engine hands this stage the raw envelope
// untouched; this is the only place it gets parsed.
type wsdEnvelope struct {
	Body struct {
		ProbeMatches struct {
			ProbeMatch []wsdProbeMatch `xml:"ProbeMatch"`
		} `xml:"ProbeMatches"`
	} `xml:"Body"`
}

type wsdProbeMatch struct {
	EndpointReference struct {
		Address string `xml:"Address"`
	} `xml:"EndpointReference"`
	Types       string `xml:"Types"`
	Scopes      string `xml:"Scopes"`
	XAddrs      string `xml:"XAddrs"`
	MetadataVer int    `xml:"MetadataVersion"`
}

// WSDStage parses the raw SOAP envelope a WS-Discovery ProbeMatch response
// carried and derives a friendly name and tags from it: the Types field
// (e.g. "dn:NetworkVideoTransmitter tds:Device") and the Scopes URIs, which
// ONVIF devices use to advertise friendly name, hardware model, and device
// type (e.g. "onvif://www.onvif.org/name/Camera%20A").
type WSDStage struct{}

func NewWSDStage() *WSDStage { return &WSDStage{} }

func (s *WSDStage) Name() string { return "wsd-types" }

func (s *WSDStage) Enrich(_ context.Context, d *discovery.DeviceInfo) {
	if d.Protocol() != "wsd" {
		return
	}
	raw := d.RawData()["raw_xml"]
	if raw == "" {
		return
	}

	var env wsdEnvelope
	if err := xml.Unmarshal([]byte(raw), &env); err != nil {
		return
	}

	for _, m := range env.Body.ProbeMatches.ProbeMatch {
		s.enrichFromTypes(d, m.Types)
		s.enrichFromScopes(d, m.Scopes)
	}
}

func (s *WSDStage) enrichFromTypes(d *discovery.DeviceInfo, types string) {
	for _, t := range strings.Fields(types) {
		name := t
		if idx := strings.IndexByte(t, ':'); idx >= 0 {
			name = t[idx+1:]
		}
		if name == "" || strings.EqualFold(name, "Device") {
			continue
		}
		d.AddDeviceTags("wsd:" + name)
		d.SetFriendlyNameIfEmpty(name)
		if strings.Contains(strings.ToLower(name), "video") || strings.Contains(strings.ToLower(name), "camera") {
			d.AddDeviceTags("onvif")
		}
	}
}

// enrichFromScopes dissects ONVIF scope URIs: the path segment after
// /name/ is the friendly name, after /hardware/ is the model, and after
// /type/ becomes a device tag. Segments are percent-decoded since ONVIF
// devices routinely encode spaces in the friendly name.
func (s *WSDStage) enrichFromScopes(d *discovery.DeviceInfo, scopes string) {
	for _, scope := range strings.Fields(scopes) {
		u, err := url.Parse(scope)
		if err != nil {
			continue
		}
		path := strings.Trim(u.Path, "/")
		for _, marker := range []string{"name/", "hardware/", "type/"} {
			idx := strings.Index(path, marker)
			if idx < 0 {
				continue
			}
			value, err := url.PathUnescape(path[idx+len(marker):])
			if err != nil || value == "" {
				continue
			}
			switch marker {
			case "name/":
				d.SetFriendlyNameIfEmpty(value)
			case "hardware/":
				d.SetModelIfEmpty(value)
			case "type/":
				d.AddDeviceTags("onvif:" + value)
			}
		}
	}
}
