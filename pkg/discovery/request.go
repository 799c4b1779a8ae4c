package discovery

import (
	"net"
	"time"
)

// Protocol identifies one of the five discovery engines.
type Protocol string

const (
	ProtocolUPnP Protocol = "upnp"
	ProtocolMDNS Protocol = "mdns"
	ProtocolWSD  Protocol = "wsd"
	ProtocolMQTT Protocol = "mqtt"
	ProtocolCoAP Protocol = "coap"
)

// AllProtocols is the default engine selection when a request doesn't
// narrow it down.
var AllProtocols = []Protocol{ProtocolUPnP, ProtocolMDNS, ProtocolWSD, ProtocolMQTT, ProtocolCoAP}

// Request describes a single discovery run: which engines to invoke, how
// long each gets, and the protocol-specific knobs each one reads.
type Request struct {
	protocols    []Protocol
	timeout      time.Duration
	iface        string
	multicastTTL int

	mdnsServiceType string

	upnpSearchTarget string
	upnpMX           int

	mqttPorts []int

	// targets seeds the connection-oriented engines (MQTT, CoAP) with
	// addresses to probe directly. MQTT probes only these; CoAP probes them
	// in addition to its own multicast responders. Addresses found by
	// UPnP/mDNS/WSD in the same run are not added.
	targets []string

	enrich bool
}

// Option configures a Request. Unset fields keep the defaults that
// NewRequest sets.
type Option func(*Request) error

func NewRequest(opts ...Option) (*Request, error) {
	r := &Request{
		protocols:        AllProtocols,
		timeout:          5 * time.Second,
		multicastTTL:     2,
		mdnsServiceType:  "all",
		upnpSearchTarget: "ssdp:all",
		upnpMX:           2,
		mqttPorts:        []int{1883, 8883},
		enrich:           true,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Request) validate() error {
	if len(r.protocols) == 0 {
		return &ValidationError{Field: "protocols", Msg: "at least one protocol must be selected"}
	}
	if r.timeout <= 0 {
		return &ValidationError{Field: "timeout", Msg: "must be positive"}
	}
	if r.multicastTTL < 1 || r.multicastTTL > 16 {
		return &ValidationError{Field: "multicast_ttl", Msg: "must be between 1 and 16"}
	}
	if r.upnpMX < 1 || r.upnpMX > 5 {
		return &ValidationError{Field: "upnp_mx", Msg: "must be between 1 and 5"}
	}
	if r.mdnsServiceType == "" {
		return &ValidationError{Field: "mdns_service_type", Msg: "must not be empty"}
	}
	if r.upnpSearchTarget == "" {
		return &ValidationError{Field: "upnp_search_target", Msg: "must not be empty"}
	}
	if len(r.mqttPorts) == 0 {
		return &ValidationError{Field: "mqtt_ports", Msg: "must not be empty"}
	}
	if r.iface != "" {
		ip := net.ParseIP(r.iface)
		if ip != nil && ip.IsLoopback() {
			return &ValidationError{Field: "interface", Msg: "loopback address is not a valid scan interface"}
		}
	}
	return nil
}

func WithProtocols(protocols ...Protocol) Option {
	return func(r *Request) error {
		r.protocols = protocols
		return nil
	}
}

func WithTimeout(d time.Duration) Option {
	return func(r *Request) error {
		r.timeout = d
		return nil
	}
}

func WithInterface(ip string) Option {
	return func(r *Request) error {
		r.iface = ip
		return nil
	}
}

func WithMulticastTTL(ttl int) Option {
	return func(r *Request) error {
		r.multicastTTL = ttl
		return nil
	}
}

func WithMDNSServiceType(serviceType string) Option {
	return func(r *Request) error {
		r.mdnsServiceType = serviceType
		return nil
	}
}

func WithUPnPSearchTarget(st string) Option {
	return func(r *Request) error {
		r.upnpSearchTarget = st
		return nil
	}
}

func WithUPnPMX(mx int) Option {
	return func(r *Request) error {
		r.upnpMX = mx
		return nil
	}
}

func WithMQTTPorts(ports ...int) Option {
	return func(r *Request) error {
		r.mqttPorts = ports
		return nil
	}
}

func WithTargets(addrs ...string) Option {
	return func(r *Request) error {
		r.targets = addrs
		return nil
	}
}

func WithEnrichment(enabled bool) Option {
	return func(r *Request) error {
		r.enrich = enabled
		return nil
	}
}

func (r *Request) HasProtocol(p Protocol) bool {
	for _, want := range r.protocols {
		if want == p {
			return true
		}
	}
	return false
}

func (r *Request) Timeout() time.Duration      { return r.timeout }
func (r *Request) Interface() string           { return r.iface }
func (r *Request) MulticastTTL() int           { return r.multicastTTL }
func (r *Request) MDNSServiceType() string     { return r.mdnsServiceType }
func (r *Request) UPnPSearchTarget() string     { return r.upnpSearchTarget }
func (r *Request) UPnPMX() int                  { return r.upnpMX }
func (r *Request) MQTTPorts() []int            { return append([]int(nil), r.mqttPorts...) }
func (r *Request) Targets() []string           { return append([]string(nil), r.targets...) }
func (r *Request) EnrichmentEnabled() bool     { return r.enrich }
