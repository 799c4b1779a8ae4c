package discovery

// The five record types below are the raw, per-protocol shape each engine
// produces before enrichment. Enrichment attaches a *Fingerprint to the
// record it was computed from; it never rewrites the raw fields.

// UPnPRecord is one SSDP/UPnP NOTIFY or M-SEARCH response.
type UPnPRecord struct {
	Address      string            `json:"address"`
	Port         int               `json:"port"`
	Headers      map[string]string `json:"headers"`
	SearchTarget string            `json:"search_target"`
	USN          string            `json:"usn"`
	Location     string            `json:"location,omitempty"`
	Server       string            `json:"server,omitempty"`
	Fingerprint  *Fingerprint      `json:"fingerprint,omitempty"`
}

// MDNSRecord is one resolved mDNS/DNS-SD service instance.
type MDNSRecord struct {
	InstanceName string            `json:"instance_name"`
	ServiceType  string            `json:"service_type"`
	Hostname     string            `json:"hostname"`
	Addresses    []string          `json:"addresses"`
	Port         int               `json:"port"`
	TXT          map[string]string `json:"txt"`
	Fingerprint  *Fingerprint      `json:"fingerprint,omitempty"`
}

// WSDRecord is one WS-Discovery Probe response: the source address and the
// raw SOAP envelope verbatim. The engine does not parse ProbeMatch fields
// out of the envelope; that happens in the enrichment stage, which is the
// only place Types/Scopes/XAddrs get extracted.
type WSDRecord struct {
	Address     string       `json:"address"`
	RawXML      string       `json:"raw_xml"`
	Fingerprint *Fingerprint `json:"fingerprint,omitempty"`
}

// MQTTRecord summarizes what the engine could observe about a broker
// without doing anything it wasn't invited to do: whether it accepted an
// anonymous CONNECT, what (if anything) it leaked over $SYS, and a small
// sample of topics seen on a passive subscribe.
type MQTTRecord struct {
	Address           string            `json:"address"`
	Port              int               `json:"port"`
	BrokerName        string            `json:"broker_name,omitempty"`
	BrokerVersion     string            `json:"broker_version,omitempty"`
	AnonymousAccess   bool              `json:"anonymous_access"`
	AnonymousPublish  bool              `json:"anonymous_publish"`
	TLSSupported      bool              `json:"tls_supported"`
	ConnectedClients  int               `json:"connected_clients,omitempty"`
	UptimeSeconds     int               `json:"uptime_seconds,omitempty"`
	MessagesReceived  int               `json:"messages_received,omitempty"`
	MessagesSent      int               `json:"messages_sent,omitempty"`
	SampledTopics     []string          `json:"sampled_topics,omitempty"`
	SysData           map[string]string `json:"sys_data,omitempty"`
	RiskFlags         []string          `json:"risk_flags,omitempty"`
	Fingerprint       *Fingerprint      `json:"fingerprint,omitempty"`
}

// CoAPResource is one entry parsed out of a /.well-known/core response in
// RFC 6690 CoRE Link Format.
type CoAPResource struct {
	URI           string `json:"uri"`
	ResourceType  string `json:"resource_type,omitempty"`
	InterfaceDesc string `json:"interface_desc,omitempty"`
	Title         string `json:"title,omitempty"`
	ContentFormat int    `json:"content_format,omitempty"`
	Observable    bool   `json:"observable"`
}

// CoAPRecord is one CoAP endpoint and its discovered resource tree.
type CoAPRecord struct {
	Address               string         `json:"address"`
	Port                  int            `json:"port"`
	Resources             []CoAPResource `json:"resources"`
	ObservableResources   []string       `json:"observable_resources,omitempty"`
	DTLSSupported         bool           `json:"dtls_supported"`
	UnauthenticatedAccess bool           `json:"unauthenticated_access"`
	RiskFlags             []string       `json:"risk_flags,omitempty"`
	RawLinkFormat         string         `json:"raw_link_format,omitempty"`
	Fingerprint           *Fingerprint   `json:"fingerprint,omitempty"`
}
