package enrich

import (
	"context"
	"testing"

	"github.com/rvh-io/hearsay/pkg/discovery"
	"github.com/stretchr/testify/require"
)

func TestCoAPStage_PrefersOICDeviceTypeOverSensorKeyword(t *testing.T) {
	d := discovery.NewDeviceInfo("coap", "10.0.0.1", 5683, map[string]string{
		"resource_types": "oic.d.thermostat, temperature-sensor",
	})
	s := NewCoAPStage()
	require.Equal(t, "coap-resources", s.Name())
	s.Enrich(context.Background(), d)
	require.Equal(t, "thermostat", d.FriendlyName())
	require.Contains(t, d.DeviceTags(), "coap-device")
}

func TestCoAPStage_FallsBackToSensorKeyword(t *testing.T) {
	d := discovery.NewDeviceInfo("coap", "10.0.0.1", 5683, map[string]string{
		"resource_types": "room-temperature-sensor",
	})
	s := NewCoAPStage()
	s.Enrich(context.Background(), d)
	require.Equal(t, "sensor", d.FriendlyName())
}

func TestCoAPStage_DeviceTypeFieldTakesPriority(t *testing.T) {
	d := discovery.NewDeviceInfo("coap", "10.0.0.1", 5683, map[string]string{
		"device_type":    "smart-plug",
		"resource_types": "oic.d.light",
	})
	s := NewCoAPStage()
	s.Enrich(context.Background(), d)
	require.Equal(t, "smart-plug", d.FriendlyName())
	require.Contains(t, d.DeviceTags(), "coap:smart-plug")
}

func TestCoAPStage_SkipsNonCoAPProtocol(t *testing.T) {
	d := discovery.NewDeviceInfo("mqtt", "10.0.0.1", 5683, map[string]string{"device_type": "ignored"})
	s := NewCoAPStage()
	s.Enrich(context.Background(), d)
	require.Empty(t, d.FriendlyName())
}
