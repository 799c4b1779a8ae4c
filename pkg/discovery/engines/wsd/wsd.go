// Package wsd implements WS-Discovery (OASIS WS-Discovery 1.1): a SOAP 1.2
// Probe sent over UDP multicast, answered by ProbeMatch responses from
// devices such as ONVIF cameras and network printers.
package wsd

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/rvh-io/hearsay/internal/mcast"
	"github.com/rvh-io/hearsay/internal/netutil"
	"github.com/rvh-io/hearsay/pkg/discovery"
)

const MulticastAddr = "239.255.255.250:3702"

const probeTemplate = `<?xml version="1.0" encoding="utf-8"?>
<e:Envelope xmlns:e="http://www.w3.org/2003/05/soap-envelope"
            xmlns:w="http://schemas.xmlsoap.org/ws/2004/08/addressing"
            xmlns:d="http://schemas.xmlsoap.org/ws/2005/04/discovery">
  <e:Header>
    <w:MessageID>uuid:%s</w:MessageID>
    <w:To>urn:schemas-xmlsoap-org:ws:2005:04:discovery</w:To>
    <w:Action>http://schemas.xmlsoap.org/ws/2005/04/discovery/Probe</w:Action>
  </e:Header>
  <e:Body>
    <d:Probe/>
  </e:Body>
</e:Envelope>`

// Scan sends a WS-Discovery Probe and collects raw ProbeMatch envelopes
// until the request's timeout elapses. It does not parse the SOAP body:
// the envelope is handed to the enrichment stage verbatim, one record per
// distinct responder address, so the raw XML survives exactly as the wire
// sent it.
func Scan(ctx context.Context, req *discovery.Request, iface *netutil.InterfaceInfo) ([]*discovery.WSDRecord, error) {
	sock, err := mcast.Open(iface.IPv4Addr, req.MulticastTTL())
	if err != nil {
		return nil, discovery.NewEngineError("wsd", discovery.ErrTransportLocal, err)
	}
	defer sock.Close()

	probe := fmt.Sprintf(probeTemplate, uuid.New().String())
	if err := sock.Send([]byte(probe), MulticastAddr); err != nil {
		return nil, discovery.NewEngineError("wsd", discovery.ErrTransportRemote, err)
	}

	var mu sync.Mutex
	seen := make(map[string]bool)
	var records []*discovery.WSDRecord

	err = sock.CollectUntil(ctx, func(src *net.UDPAddr, payload []byte) {
		addr := src.IP.String()

		mu.Lock()
		if seen[addr] {
			mu.Unlock()
			return
		}
		seen[addr] = true
		mu.Unlock()

		records = append(records, &discovery.WSDRecord{
			Address: addr,
			RawXML:  string(payload),
		})
	})
	if err != nil {
		return records, discovery.NewEngineError("wsd", discovery.ErrTransportRemote, err)
	}
	return records, nil
}
