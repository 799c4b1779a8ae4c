package enrich

import (
	"context"

	"github.com/rvh-io/hearsay/pkg/discovery"
)

// MQTTStage promotes broker metadata harvested over $SYS into the unified
// device fields and tags a broker with its observed risk flags.
type MQTTStage struct{}

func NewMQTTStage() *MQTTStage { return &MQTTStage{} }

func (s *MQTTStage) Name() string { return "mqtt-sys" }

func (s *MQTTStage) Enrich(_ context.Context, d *discovery.DeviceInfo) {
	if d.Protocol() != "mqtt" {
		return
	}
	raw := d.RawData()
	d.SetFriendlyNameIfEmpty(raw["broker_name"])
	d.SetManufacturerIfEmpty(raw["broker_name"])
	d.SetFirmwareVersionIfEmpty(raw["broker_version"])
	d.AddDeviceTags("mqtt-broker")
	if raw["anonymous_access"] == "true" {
		d.AddDeviceTags("open-broker")
	}
}
