package discovery

// Response is the result of one discovery run: the records each engine
// produced, keyed by protocol, plus any non-fatal engine failures. A
// protocol that was disabled or found nothing simply has a nil/empty slice.
type Response struct {
	UPnP []*UPnPRecord `json:"upnp,omitempty"`
	MDNS []*MDNSRecord `json:"mdns,omitempty"`
	WSD  []*WSDRecord  `json:"wsd,omitempty"`
	MQTT []*MQTTRecord `json:"mqtt,omitempty"`
	CoAP []*CoAPRecord `json:"coap,omitempty"`

	// Errors collects engine-level failures (timeouts, bind failures) that
	// didn't stop the rest of the scan. A non-empty Errors slice does not
	// mean the scan failed; it means some protocol came back empty.
	Errors []*EngineError `json:"-"`
}

// Count returns the total number of records across all protocols.
func (r *Response) Count() int {
	if r == nil {
		return 0
	}
	return len(r.UPnP) + len(r.MDNS) + len(r.WSD) + len(r.MQTT) + len(r.CoAP)
}

// Fingerprintable exposes a record's slot for attaching enrichment results
// without the enrichment pipeline needing to know about each concrete
// record type. Every *XxxRecord in this package implements it.
type Fingerprintable interface {
	SetFingerprint(fp *Fingerprint)
}

func (r *UPnPRecord) SetFingerprint(fp *Fingerprint) { r.Fingerprint = fp }
func (r *MDNSRecord) SetFingerprint(fp *Fingerprint) { r.Fingerprint = fp }
func (r *WSDRecord) SetFingerprint(fp *Fingerprint)  { r.Fingerprint = fp }
func (r *MQTTRecord) SetFingerprint(fp *Fingerprint) { r.Fingerprint = fp }
func (r *CoAPRecord) SetFingerprint(fp *Fingerprint) { r.Fingerprint = fp }

// Records returns every record across all protocols as Fingerprintable,
// paired with the protocol and address the orchestrator needs to build a
// DeviceInfo for enrichment. Order is UPnP, MDNS, WSD, MQTT, CoAP, each
// group preserving its original discovery order — the ordering enrichment
// must not disturb.
func (r *Response) Records() []RecordRef {
	if r == nil {
		return nil
	}
	refs := make([]RecordRef, 0, r.Count())
	for _, rec := range r.UPnP {
		refs = append(refs, RecordRef{Protocol: ProtocolUPnP, Address: rec.Address, Port: rec.Port, Raw: rec})
	}
	for _, rec := range r.MDNS {
		addr := rec.Hostname
		if len(rec.Addresses) > 0 {
			addr = rec.Addresses[0]
		}
		refs = append(refs, RecordRef{Protocol: ProtocolMDNS, Address: addr, Port: rec.Port, Raw: rec})
	}
	for _, rec := range r.WSD {
		refs = append(refs, RecordRef{Protocol: ProtocolWSD, Address: rec.Address, Raw: rec})
	}
	for _, rec := range r.MQTT {
		refs = append(refs, RecordRef{Protocol: ProtocolMQTT, Address: rec.Address, Port: rec.Port, Raw: rec})
	}
	for _, rec := range r.CoAP {
		refs = append(refs, RecordRef{Protocol: ProtocolCoAP, Address: rec.Address, Port: rec.Port, Raw: rec})
	}
	return refs
}

// RecordRef pairs a raw record with the identity fields the enrichment
// pipeline needs to build a DeviceInfo, without the pipeline importing
// every concrete record type.
type RecordRef struct {
	Protocol Protocol
	Address  string
	Port     int
	Raw      Fingerprintable
}
