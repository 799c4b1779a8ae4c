// Package taxonomy classifies a device into a single category using a
// priority-ordered rule table. Rules inspect whatever enrichment has
// accumulated so far — raw protocol data, banners, and tags — and the
// highest-priority matching rule wins.
package taxonomy

import "strings"

// Device is the minimal view taxonomy needs; pkg/discovery.DeviceInfo
// satisfies it via its exported getters.
type Device interface {
	Protocol() string
	RawData() map[string]string
	FriendlyName() string
	Manufacturer() string
	Model() string
	DeviceTags() []string
	OSGuess() string
	Services() []ServiceEntryLike
	Banners() map[string]string
}

// ServiceEntryLike mirrors discovery.ServiceEntry's shape without importing
// that package, keeping taxonomy dependency-free of the parent package.
type ServiceEntryLike struct {
	Port int
	Name string
}

type rule struct {
	category string
	priority int
	match    func(d Device) bool
}

func contains(hay string, needles ...string) bool {
	low := strings.ToLower(hay)
	for _, n := range needles {
		if strings.Contains(low, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

func anyField(d Device, needles ...string) bool {
	fields := []string{d.FriendlyName(), d.Manufacturer(), d.Model()}
	for _, v := range d.RawData() {
		fields = append(fields, v)
	}
	for _, v := range d.Banners() {
		fields = append(fields, v)
	}
	for _, f := range fields {
		if contains(f, needles...) {
			return true
		}
	}
	return false
}

func hasServicePort(d Device, ports ...int) bool {
	for _, s := range d.Services() {
		for _, p := range ports {
			if s.Port == p {
				return true
			}
		}
	}
	return false
}

// rules is ordered by descending priority. The first match determines the
// category; ties are broken by declaration order.
var rules = []rule{
	{"camera", 10, func(d Device) bool {
		return anyField(d, "camera", "ipcam", "webcam", "nvr", "hikvision", "dahua", "axis communications", "onvif")
	}},
	{"nas", 9, func(d Device) bool {
		return anyField(d, "nas", "synology", "qnap", "freenas", "truenas", "network attached storage")
	}},
	{"printer", 8, func(d Device) bool {
		return anyField(d, "printer", "ipp", "laserjet", "officejet", "epson", "brother", "canon mx") || hasServicePort(d, 515, 631, 9100)
	}},
	{"smart-home-hub", 7, func(d Device) bool {
		return anyField(d, "hub", "bridge", "hue", "smartthings", "homekit", "zigbee", "z-wave")
	}},
	{"mqtt-broker", 7, func(d Device) bool {
		return d.Protocol() == "mqtt" || anyField(d, "mosquitto", "mqtt broker", "emqx", "hivemq")
	}},
	{"coap-device", 6, func(d Device) bool {
		return d.Protocol() == "coap"
	}},
	{"media", 5, func(d Device) bool {
		return anyField(d, "dlna", "media server", "plex", "chromecast", "roku", "sonos", "airplay")
	}},
	{"router", 5, func(d Device) bool {
		return anyField(d, "router", "gateway", "openwrt", "dd-wrt", "asuswrt", "access point")
	}},
	{"smart-speaker", 4, func(d Device) bool {
		return anyField(d, "echo", "alexa", "google home", "homepod", "smart speaker")
	}},
	{"industrial", 4, func(d Device) bool {
		return anyField(d, "plc", "scada", "modbus", "siemens", "rockwell", "schneider electric")
	}},
	{"smart-tv", 3, func(d Device) bool {
		return anyField(d, "smart tv", "smarttv", "webos", "tizen", "android tv", "bravia")
	}},
	{"iot-device", 2, func(d Device) bool {
		return anyField(d, "iot", "esp32", "esp8266", "tasmota", "shelly", "espressif")
	}},
	{"computer", 1, func(d Device) bool {
		return d.OSGuess() == "Windows" || d.OSGuess() == "macOS" || anyField(d, "workstation", "desktop")
	}},
}

// Classify returns the category name of the highest-priority matching
// rule, or "unknown" if nothing matched.
func Classify(d Device) string {
	for _, r := range rules {
		if r.match(d) {
			return r.category
		}
	}
	return "unknown"
}
