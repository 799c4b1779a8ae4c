// Package mdns implements mDNS/DNS-SD (RFC 6762/6763) service discovery:
// browse for service types, then resolve each instance's SRV/TXT/address
// records into one MDNSRecord per service instance.
package mdns

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"golang.org/x/net/dns/dnsmessage"
	"golang.org/x/net/ipv4"

	"github.com/rvh-io/hearsay/internal/netutil"
	"github.com/rvh-io/hearsay/pkg/discovery"
)

const (
	MulticastAddr         = "224.0.0.251:5353"
	serviceDiscoveryQuery = "_services._dns-sd._udp.local."
)

// wellKnownServiceTypes is browsed in addition to the DNS-SD meta-query
// when the request asks for "all" services, since many embedded devices
// never answer the meta-query but do answer a direct PTR query for their
// own type.
var wellKnownServiceTypes = []string{
	"_http._tcp.local.",
	"_https._tcp.local.",
	"_ipp._tcp.local.",
	"_printer._tcp.local.",
	"_airplay._tcp.local.",
	"_googlecast._tcp.local.",
	"_hap._tcp.local.",
	"_spotify-connect._tcp.local.",
	"_ssh._tcp.local.",
	"_workstation._tcp.local.",
	"_smb._tcp.local.",
	"_raop._tcp.local.",
}

type instance struct {
	name      string
	fqdn      string
	serviceTy string
	hostname  string
	port      int
	addresses map[string]bool
	txt       map[string]string
}

// Scan joins the mDNS multicast group, queries the requested service
// type(s), and collects responses until the request's timeout elapses.
func Scan(ctx context.Context, req *discovery.Request, iface *netutil.InterfaceInfo) ([]*discovery.MDNSRecord, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: iface.IPv4Addr, Port: 0})
	if err != nil {
		return nil, discovery.NewEngineError("mdns", discovery.ErrTransportLocal, err)
	}
	defer conn.Close()

	groupAddr, err := net.ResolveUDPAddr("udp4", MulticastAddr)
	if err != nil {
		return nil, discovery.NewEngineError("mdns", discovery.ErrTransportLocal, err)
	}
	p := ipv4.NewPacketConn(conn)
	if err := p.JoinGroup(iface.Interface, groupAddr); err != nil {
		return nil, discovery.NewEngineError("mdns", discovery.ErrTransportLocal, err)
	}

	queries := queryList(req.MDNSServiceType())
	for _, q := range queries {
		if err := sendQuery(conn, groupAddr, q); err != nil {
			return nil, discovery.NewEngineError("mdns", discovery.ErrTransportRemote, err)
		}
	}

	var mu sync.Mutex
	instances := make(map[string]*instance)

	dl, hasDL := ctx.Deadline()
	if !hasDL {
		return nil, discovery.NewEngineError("mdns", discovery.ErrTransportLocal, fmt.Errorf("mdns scan requires a context deadline"))
	}
	_ = conn.SetReadDeadline(dl)

	buf := make([]byte, 16384)
	for {
		if ctx.Err() != nil {
			break
		}
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			break
		}
		var msg dnsmessage.Message
		if err := msg.Unpack(buf[:n]); err != nil || !msg.Header.Response {
			continue
		}
		mu.Lock()
		processMessage(&msg, instances)
		mu.Unlock()
	}

	records := make([]*discovery.MDNSRecord, 0, len(instances))
	for _, inst := range instances {
		if inst.hostname == "" && len(inst.addresses) == 0 {
			continue
		}
		addrs := make([]string, 0, len(inst.addresses))
		for a := range inst.addresses {
			addrs = append(addrs, a)
		}
		records = append(records, &discovery.MDNSRecord{
			InstanceName: inst.name,
			ServiceType:  inst.serviceTy,
			Hostname:     inst.hostname,
			Addresses:    addrs,
			Port:         inst.port,
			TXT:          inst.txt,
		})
	}
	return records, nil
}

func queryList(serviceType string) []string {
	if serviceType == "" || serviceType == "all" {
		queries := []string{serviceDiscoveryQuery}
		queries = append(queries, wellKnownServiceTypes...)
		return queries
	}
	if !strings.HasSuffix(serviceType, ".") {
		serviceType += "."
	}
	return []string{serviceType}
}

func sendQuery(conn *net.UDPConn, addr *net.UDPAddr, name string) error {
	msg := dnsmessage.Message{
		Header: dnsmessage.Header{ID: 0, RecursionDesired: false},
		Questions: []dnsmessage.Question{{
			Name:  dnsmessage.MustNewName(name),
			Type:  dnsmessage.TypePTR,
			Class: dnsmessage.ClassINET,
		}},
	}
	packet, err := msg.Pack()
	if err != nil {
		return fmt.Errorf("pack dns query %q: %w", name, err)
	}
	_, err = conn.WriteToUDP(packet, addr)
	return err
}

func processMessage(msg *dnsmessage.Message, instances map[string]*instance) {
	all := append(append([]dnsmessage.Resource{}, msg.Answers...), msg.Additionals...)

	for _, res := range all {
		name := res.Header.Name.String()
		switch body := res.Body.(type) {
		case *dnsmessage.PTRResource:
			target := body.PTR.String()
			if name == serviceDiscoveryQuery {
				continue
			}
			inst := ensureInstance(instances, target)
			inst.name, inst.serviceTy = splitInstanceName(target)
		case *dnsmessage.SRVResource:
			inst := ensureInstance(instances, name)
			inst.hostname = cleanName(body.Target.String())
			inst.port = int(body.Port)
		case *dnsmessage.TXTResource:
			inst := ensureInstance(instances, name)
			for _, kv := range body.TXT {
				k, v, ok := splitTXT(kv)
				if ok {
					inst.txt[k] = v
				}
			}
		case *dnsmessage.AResource:
			ip := net.IP(body.A[:]).String()
			attachAddressToHost(instances, name, ip)
		case *dnsmessage.AAAAResource:
			ip := net.IP(body.AAAA[:]).String()
			attachAddressToHost(instances, name, ip)
		}
	}
}

func ensureInstance(instances map[string]*instance, key string) *instance {
	inst, ok := instances[key]
	if !ok {
		inst = &instance{fqdn: key, addresses: make(map[string]bool), txt: make(map[string]string)}
		instances[key] = inst
	}
	return inst
}

// attachAddressToHost records a resolved address against every instance
// whose SRV target matches the A/AAAA record's owner name.
func attachAddressToHost(instances map[string]*instance, hostOwner, ip string) {
	for _, inst := range instances {
		if inst.hostname != "" && strings.EqualFold(inst.hostname, cleanName(hostOwner)) {
			inst.addresses[ip] = true
		}
	}
}

func splitInstanceName(fqdn string) (instanceName, serviceType string) {
	name := cleanName(fqdn)
	parts := strings.SplitN(name, ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return name, ""
}

func splitTXT(s string) (string, string, bool) {
	idx := strings.IndexByte(s, '=')
	if idx <= 0 {
		return "", "", false
	}
	return strings.ToLower(s[:idx]), s[idx+1:], true
}

func cleanName(name string) string {
	name = strings.TrimSuffix(name, ".local.")
	name = strings.TrimSuffix(name, ".")
	return name
}
