// Package upnp implements SSDP (Simple Service Discovery Protocol)
// multicast discovery, the transport UPnP devices use to advertise
// themselves on a local network.
package upnp

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"net/textproto"
	"net/url"
	"strings"
	"sync"

	"github.com/rvh-io/hearsay/internal/mcast"
	"github.com/rvh-io/hearsay/internal/netutil"
	"github.com/rvh-io/hearsay/pkg/discovery"
)

const MulticastAddr = "239.255.255.250:1900"

// Scan sends an SSDP M-SEARCH multicast and collects M-SEARCH/NOTIFY
// responses until the request's timeout elapses, one UPnPRecord per
// distinct (address, USN).
func Scan(ctx context.Context, req *discovery.Request, iface *netutil.InterfaceInfo) ([]*discovery.UPnPRecord, error) {
	sock, err := mcast.Open(iface.IPv4Addr, req.MulticastTTL())
	if err != nil {
		return nil, discovery.NewEngineError("upnp", discovery.ErrTransportLocal, err)
	}
	defer sock.Close()

	search := fmt.Sprintf(
		"M-SEARCH * HTTP/1.1\r\n"+
			"HOST: %s\r\n"+
			"MAN: \"ssdp:discover\"\r\n"+
			"MX: %d\r\n"+
			"ST: %s\r\n"+
			"USER-AGENT: hearsay/1.0\r\n\r\n",
		MulticastAddr, req.UPnPMX(), req.UPnPSearchTarget(),
	)
	if err := sock.Send([]byte(search), MulticastAddr); err != nil {
		return nil, discovery.NewEngineError("upnp", discovery.ErrTransportRemote, err)
	}

	var mu sync.Mutex
	seen := make(map[string]bool)
	var records []*discovery.UPnPRecord

	err = sock.CollectUntil(ctx, func(src *net.UDPAddr, payload []byte) {
		headers, ok := parseHeaders(payload)
		if !ok {
			return
		}
		addr := src.IP.String()
		key := addr + "|" + headers["USN"]

		mu.Lock()
		defer mu.Unlock()
		if seen[key] {
			return
		}
		seen[key] = true

		records = append(records, &discovery.UPnPRecord{
			Address:      addr,
			Port:         src.Port,
			Headers:      headers,
			SearchTarget: headers["ST"],
			USN:          headers["USN"],
			Location:     headers["LOCATION"],
			Server:       headers["SERVER"],
		})
	})
	if err != nil {
		return records, discovery.NewEngineError("upnp", discovery.ErrTransportRemote, err)
	}
	return records, nil
}

func parseHeaders(payload []byte) (map[string]string, bool) {
	data := payload
	if !bytes.HasSuffix(data, []byte("\r\n\r\n")) {
		data = append(append([]byte{}, data...), []byte("\r\n\r\n")...)
	}
	br := bufio.NewReader(bytes.NewReader(data))
	tr := textproto.NewReader(br)
	if _, err := tr.ReadLine(); err != nil {
		return nil, false
	}
	hdr, err := tr.ReadMIMEHeader()
	if err != nil {
		return nil, false
	}
	out := make(map[string]string, len(hdr))
	for k, v := range hdr {
		if len(v) > 0 {
			out[strings.ToUpper(k)] = strings.TrimSpace(v[0])
		}
	}
	return out, true
}

// LocationHost extracts the host portion of a device's LOCATION URL, used
// by the enrichment stage to decide whether fetching the description XML
// is safe.
func LocationHost(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	return host
}
