// Package config loads hearsay's settings from a YAML file, environment
// variables, and CLI flags, in that order of increasing precedence, using
// one declarative registry of settings (see settings.go) as the single
// source of truth for all three.
package config

import (
	"errors"
	"net"
	"strings"
	"time"
)

const (
	DefaultScanTimeout  = 5 * time.Second
	DefaultMulticastTTL = 2

	DefaultUPnPMX           = 2
	DefaultUPnPSearchTarget = "ssdp:all"
	DefaultMDNSServiceType  = "all"

	DefaultEnrichmentWorkers = 10
)

// DefaultMQTTPorts lists the ports probed by the MQTT engine: 1883
// plaintext, 8883 TLS.
var DefaultMQTTPorts = []int{1883, 8883}

// Config captures all configurable parameters for the application.
type Config struct {
	NetworkInterface string        `yaml:"network_interface"`
	ScanTimeout      time.Duration `yaml:"scan_timeout"`
	MulticastTTL     int           `yaml:"multicast_ttl"`

	Engines    EngineConfig     `yaml:"engines"`
	MDNS       MDNSConfig       `yaml:"mdns"`
	UPnP       UPnPConfig       `yaml:"upnp"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
}

// EngineConfig toggles which of the five discovery engines run.
type EngineConfig struct {
	UPnP ScannerToggle `yaml:"upnp"`
	MDNS ScannerToggle `yaml:"mdns"`
	WSD  ScannerToggle `yaml:"wsd"`
	MQTT ScannerToggle `yaml:"mqtt"`
	CoAP ScannerToggle `yaml:"coap"`
}

// ScannerToggle lets users enable/disable an engine.
type ScannerToggle struct {
	Enabled bool `yaml:"enabled"`
}

// MDNSConfig configures the mDNS/DNS-SD engine.
type MDNSConfig struct {
	// ServiceType is either a literal service type (e.g. "_ipp._tcp.local.")
	// or "all" to browse the fixed well-known list.
	ServiceType string `yaml:"service_type"`
}

// UPnPConfig configures the SSDP/UPnP engine.
type UPnPConfig struct {
	SearchTarget string `yaml:"search_target"`
	MX           int    `yaml:"mx"`
}

// MQTTConfig configures the MQTT probing engine.
type MQTTConfig struct {
	Ports []int `yaml:"ports"`
}

// EnrichmentConfig controls the post-discovery enrichment pipeline.
type EnrichmentConfig struct {
	Enabled bool `yaml:"enabled"`
	Workers int  `yaml:"workers"`
}

// DefaultConfig builds a Config pre-populated with baked-in defaults.
func DefaultConfig() *Config {
	return &Config{
		ScanTimeout:  DefaultScanTimeout,
		MulticastTTL: DefaultMulticastTTL,
		Engines: EngineConfig{
			UPnP: ScannerToggle{Enabled: true},
			MDNS: ScannerToggle{Enabled: true},
			WSD:  ScannerToggle{Enabled: true},
			MQTT: ScannerToggle{Enabled: true},
			CoAP: ScannerToggle{Enabled: true},
		},
		MDNS: MDNSConfig{ServiceType: DefaultMDNSServiceType},
		UPnP: UPnPConfig{
			SearchTarget: DefaultUPnPSearchTarget,
			MX:           DefaultUPnPMX,
		},
		MQTT: MQTTConfig{Ports: append([]int(nil), DefaultMQTTPorts...)},
		Enrichment: EnrichmentConfig{
			Enabled: true,
			Workers: DefaultEnrichmentWorkers,
		},
	}
}

// validateAndNormalize validates the config and fixes up out-of-range
// values, applying policies such as "at least one engine must run."
func (c *Config) validateAndNormalize() error {
	var errs []string

	if c.ScanTimeout <= 0 {
		errs = append(errs, "scan_timeout must be > 0")
		c.ScanTimeout = DefaultScanTimeout
	}

	if c.MulticastTTL <= 0 || c.MulticastTTL > 16 {
		errs = append(errs, "multicast_ttl must be in [1,16]")
		c.MulticastTTL = DefaultMulticastTTL
	}

	if c.UPnP.MX <= 0 || c.UPnP.MX > 5 {
		errs = append(errs, "upnp.mx must be in [1,5]")
		c.UPnP.MX = DefaultUPnPMX
	}

	if strings.TrimSpace(c.UPnP.SearchTarget) == "" {
		c.UPnP.SearchTarget = DefaultUPnPSearchTarget
	}

	if strings.TrimSpace(c.MDNS.ServiceType) == "" {
		c.MDNS.ServiceType = DefaultMDNSServiceType
	}

	if len(c.MQTT.Ports) == 0 {
		c.MQTT.Ports = append([]int(nil), DefaultMQTTPorts...)
	}

	if c.Enrichment.Workers <= 0 {
		c.Enrichment.Workers = DefaultEnrichmentWorkers
	}

	if !c.Engines.UPnP.Enabled && !c.Engines.MDNS.Enabled && !c.Engines.WSD.Enabled &&
		!c.Engines.MQTT.Enabled && !c.Engines.CoAP.Enabled {
		errs = append(errs, "at least one engine must be enabled")
		c.Engines.UPnP.Enabled = true
		c.Engines.MDNS.Enabled = true
		c.Engines.WSD.Enabled = true
		c.Engines.MQTT.Enabled = true
		c.Engines.CoAP.Enabled = true
	}

	if c.NetworkInterface != "" {
		if ip := net.ParseIP(c.NetworkInterface); ip != nil && ip.IsLoopback() {
			errs = append(errs, "network_interface must not resolve to loopback")
		} else if _, err := net.InterfaceByName(c.NetworkInterface); err != nil {
			errs = append(errs, "network_interface does not exist: "+c.NetworkInterface)
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
