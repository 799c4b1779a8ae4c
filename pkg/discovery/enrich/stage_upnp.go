package enrich

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rvh-io/hearsay/internal/netutil"
	"github.com/rvh-io/hearsay/pkg/discovery"
)

// upnpDescription is the subset of a UPnP device description document
// (urn:schemas-upnp-org:device-1-0) this stage cares about.
type upnpDescription struct {
	Device struct {
		FriendlyName string `xml:"friendlyName"`
		Manufacturer string `xml:"manufacturer"`
		ModelName    string `xml:"modelName"`
		ModelNumber  string `xml:"modelNumber"`
		SerialNumber string `xml:"serialNumber"`
		UDN          string `xml:"UDN"`
	} `xml:"device"`
}

// maxDescriptionBytes caps how much of a device description document this
// stage will read, so a malicious or misbehaving responder can't exhaust
// memory by streaming an unbounded body back over a LOCATION fetch.
const maxDescriptionBytes = 1 << 20

// UPnPStage fetches the device description XML a UPnP NOTIFY/M-SEARCH
// response advertises via its LOCATION header, but only when the host in
// that URL passes the private/loopback/link-local safety check — a
// malicious responder can't use LOCATION to make hearsay fetch an
// arbitrary internal or external URL. The HTTP client is locked down the
// same way: no proxy, no redirect following, http(s) only, bounded body.
type UPnPStage struct {
	Client *http.Client
}

func NewUPnPStage() *UPnPStage {
	return &UPnPStage{
		Client: &http.Client{
			Timeout:   3 * time.Second,
			Transport: &http.Transport{Proxy: nil},
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (s *UPnPStage) Name() string { return "upnp-description" }

func (s *UPnPStage) Enrich(ctx context.Context, d *discovery.DeviceInfo) {
	if d.Protocol() != "upnp" {
		return
	}
	location := d.RawData()["location"]
	if location == "" {
		return
	}
	u, err := url.Parse(location)
	if err != nil || u.Hostname() == "" {
		return
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return
	}
	if !netutil.IsSafeTarget(u.Hostname()) {
		d.AddEnrichmentError(s.Name(), discovery.NewEngineError(s.Name(), discovery.ErrUnsafeTarget, nil))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(strings.ToLower(ct), "xml") {
		return
	}

	var desc upnpDescription
	dec := xml.NewDecoder(io.LimitReader(resp.Body, maxDescriptionBytes))
	if err := dec.Decode(&desc); err != nil {
		return
	}

	// The description document supersedes the bare SSDP headers once we
	// have it — it's strictly more authoritative than a guess from USN.
	if desc.Device.FriendlyName != "" {
		d.SetFriendlyName(desc.Device.FriendlyName)
	}
	d.SetManufacturerIfEmpty(desc.Device.Manufacturer)
	model := desc.Device.ModelName
	if model == "" {
		model = desc.Device.ModelNumber
	}
	d.SetModelIfEmpty(model)
	d.SetSerialNumberIfEmpty(desc.Device.SerialNumber)
	d.SetDeviceURLIfEmpty(location)
}
