package enrich

import (
	"context"

	"github.com/rvh-io/hearsay/pkg/discovery"
)

// MDNSStage promotes well-known mDNS TXT record keys (RFC 6763 §6.3 plus
// the common vendor-specific keys devices actually use) into the unified
// device fields.
type MDNSStage struct{}

func NewMDNSStage() *MDNSStage { return &MDNSStage{} }

func (s *MDNSStage) Name() string { return "mdns-txt" }

func (s *MDNSStage) Enrich(_ context.Context, d *discovery.DeviceInfo) {
	if d.Protocol() != "mdns" {
		return
	}
	raw := d.RawData()

	d.SetFriendlyNameIfEmpty(raw["instance_name"])
	if manufacturer := firstOf(raw, "manufacturer", "vendor", "mf", "brand"); manufacturer != "" {
		d.SetManufacturerIfEmpty(manufacturer)
	}
	if model := firstOf(raw, "model", "md", "product"); model != "" {
		d.SetModelIfEmpty(model)
	}
	if fw := firstOf(raw, "firmware", "fw", "version", "ver"); fw != "" {
		d.SetFirmwareVersionIfEmpty(fw)
	}
	if serial := firstOf(raw, "serial", "serialnumber", "sn"); serial != "" {
		d.SetSerialNumberIfEmpty(serial)
	}
	if raw["service_type"] != "" {
		d.AddDeviceTags("mdns:" + raw["service_type"])
	}
}

func firstOf(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := m[k]; v != "" {
			return v
		}
	}
	return ""
}
