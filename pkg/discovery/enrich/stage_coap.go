package enrich

import (
	"context"
	"strings"

	"github.com/rvh-io/hearsay/pkg/discovery"
)

// CoAPStage derives a friendly name from the resource types reported in a
// /.well-known/core response, favoring OCF-style "oic.d.*" device types.
type CoAPStage struct{}

func NewCoAPStage() *CoAPStage { return &CoAPStage{} }

func (s *CoAPStage) Name() string { return "coap-resources" }

func (s *CoAPStage) Enrich(_ context.Context, d *discovery.DeviceInfo) {
	if d.Protocol() != "coap" {
		return
	}
	raw := d.RawData()
	d.AddDeviceTags("coap-device")

	deviceType := raw["device_type"]
	if deviceType != "" {
		d.SetFriendlyNameIfEmpty(deviceType)
		d.AddDeviceTags("coap:" + deviceType)
	}
	rts := strings.Split(raw["resource_types"], ",")
	for _, rt := range rts {
		if rt = strings.TrimSpace(rt); strings.HasPrefix(rt, "oic.d.") {
			d.SetFriendlyNameIfEmpty(strings.TrimPrefix(rt, "oic.d."))
		}
	}
	for _, rt := range rts {
		switch {
		case strings.Contains(strings.ToLower(rt), "temperature"):
			d.SetFriendlyNameIfEmpty("sensor")
		case strings.Contains(strings.ToLower(rt), "light"):
			d.SetFriendlyNameIfEmpty("light")
		}
	}
}
