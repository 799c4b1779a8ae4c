// Package coap implements CoAP (RFC 7252) resource discovery: a multicast
// GET for /.well-known/core, followed by unicast GETs to any targets that
// didn't answer the multicast probe, resource enumeration for content
// types, and a DTLS reachability check.
package coap

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rvh-io/hearsay/internal/mcast"
	"github.com/rvh-io/hearsay/internal/netutil"
	"github.com/rvh-io/hearsay/internal/wire/coapwire"
	"github.com/rvh-io/hearsay/pkg/discovery"
)

const (
	MulticastAddr     = "224.0.1.187:5683"
	MulticastAddrV6   = "ff02::fd"
	Port              = 5683
	DTLSPort          = 5684
	maxResourcesPerDevice = 10
	probeDelay        = 100 * time.Millisecond
)

type deviceState struct {
	record    *discovery.CoAPRecord
	rawLink   string
}

// Scan runs the four discovery phases and returns one CoAPRecord per
// responsive endpoint.
func Scan(ctx context.Context, req *discovery.Request, iface *netutil.InterfaceInfo) ([]*discovery.CoAPRecord, error) {
	devices := make(map[string]*deviceState)

	start := time.Now()
	deadline, hasDeadline := ctx.Deadline()
	budget := req.Timeout()
	if hasDeadline {
		budget = time.Until(deadline)
	}

	multicastBudget := minDur(budget*4/10, 3*time.Second)
	multicastDiscover(ctx, iface, multicastBudget, devices)

	remaining := remainingBudget(budget, time.Since(start))
	if remaining > 500*time.Millisecond {
		targets := make(map[string]bool)
		for _, t := range req.Targets() {
			targets[t] = true
		}
		for ip := range devices {
			targets[ip] = true
		}
		unicastDiscover(ctx, targets, remaining, devices)
	}

	remaining = remainingBudget(budget, time.Since(start))
	if remaining > 500*time.Millisecond {
		enumerateResources(ctx, devices, remaining)
	}

	checkDTLS(ctx, devices)

	records := make([]*discovery.CoAPRecord, 0, len(devices))
	for _, d := range devices {
		generateRiskFlags(d.record)
		records = append(records, d.record)
	}
	return records, nil
}

func remainingBudget(total, spent time.Duration) time.Duration {
	r := total - spent
	if r < 0 {
		return 0
	}
	return r
}

func minDur(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func randToken(n int) []byte {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return b
}

func randMessageID() uint16 {
	nBig, _ := rand.Int(rand.Reader, big.NewInt(0xFFFF))
	return uint16(nBig.Int64())
}

// multicastDiscover probes both the IPv4 and IPv6 CoAP all-nodes multicast
// groups concurrently, since an IPv6-only endpoint never answers the IPv4
// group and vice versa. The IPv6 attempt is best-effort: a platform or
// interface without IPv6 support just yields no responses.
func multicastDiscover(ctx context.Context, iface *netutil.InterfaceInfo, budget time.Duration, devices map[string]*deviceState) {
	var mu sync.Mutex
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		multicastDiscoverV4(ctx, iface, budget, devices, &mu)
	}()
	go func() {
		defer wg.Done()
		multicastDiscoverV6(ctx, iface, budget, devices, &mu)
	}()
	wg.Wait()
}

func multicastDiscoverV4(ctx context.Context, iface *netutil.InterfaceInfo, budget time.Duration, devices map[string]*deviceState, mu *sync.Mutex) {
	sock, err := mcast.Open(iface.IPv4Addr, 2)
	if err != nil {
		return
	}
	defer sock.Close()

	req := coapwire.BuildGET(coapwire.TypeNonConfirmable, randMessageID(), randToken(4), "/.well-known/core")
	if err := sock.Send(req, MulticastAddr); err != nil {
		return
	}

	subCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	_ = sock.CollectUntil(subCtx, func(src *net.UDPAddr, payload []byte) {
		msg, err := coapwire.Decode(payload)
		if err != nil || !msg.Code.Equal(coapwire.CodeContent) {
			return
		}
		ip := src.IP.String()
		if !netutil.IsSafeTarget(ip) {
			return
		}
		mu.Lock()
		processWellKnown(devices, ip, string(msg.Payload))
		mu.Unlock()
	})
}

func multicastDiscoverV6(ctx context.Context, iface *netutil.InterfaceInfo, budget time.Duration, devices map[string]*deviceState, mu *sync.Mutex) {
	if iface == nil || iface.Interface == nil {
		return
	}
	sock, err := mcast.OpenV6(iface.Interface, 2)
	if err != nil {
		return
	}
	defer sock.Close()

	req := coapwire.BuildGET(coapwire.TypeNonConfirmable, randMessageID(), randToken(4), "/.well-known/core")
	addr := fmt.Sprintf("[%s%%%s]:%d", MulticastAddrV6, iface.Interface.Name, Port)
	if err := sock.Send(req, addr); err != nil {
		return
	}

	subCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	_ = sock.CollectUntil(subCtx, func(src *net.UDPAddr, payload []byte) {
		msg, err := coapwire.Decode(payload)
		if err != nil || !msg.Code.Equal(coapwire.CodeContent) {
			return
		}
		ip := src.IP.String()
		if !netutil.IsSafeTarget(ip) {
			return
		}
		mu.Lock()
		processWellKnown(devices, ip, string(msg.Payload))
		mu.Unlock()
	})
}

func unicastDiscover(ctx context.Context, targets map[string]bool, budget time.Duration, devices map[string]*deviceState) {
	if len(targets) == 0 {
		return
	}
	perHost := minDur(2*time.Second, budget/time.Duration(len(targets)))
	deadline := time.Now().Add(budget)

	for ip := range targets {
		if time.Now().After(deadline) || ctx.Err() != nil {
			break
		}
		if !netutil.IsSafeTarget(ip) {
			continue
		}
		if d, ok := devices[ip]; ok && len(d.record.Resources) > 0 {
			continue
		}
		probeUnicast(ip, perHost, devices)

		select {
		case <-time.After(probeDelay):
		case <-ctx.Done():
			return
		}
	}
}

func probeUnicast(ip string, timeout time.Duration, devices map[string]*deviceState) {
	conn, err := net.DialTimeout("udp", net.JoinHostPort(ip, strconv.Itoa(Port)), timeout)
	if err != nil {
		return
	}
	defer conn.Close()

	token := randToken(4)
	msgID := randMessageID()
	req := coapwire.BuildGET(coapwire.TypeConfirmable, msgID, token, "/.well-known/core")

	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := conn.Write(req); err != nil {
		return
	}

	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		return
	}
	resp, err := coapwire.Decode(buf[:n])
	if err != nil {
		return
	}
	if resp.Type == coapwire.TypeConfirmable {
		_, _ = conn.Write(coapwire.BuildEmptyAck(resp.MessageID, resp.Token))
	}

	switch {
	case resp.Code.Equal(coapwire.CodeContent):
		processWellKnown(devices, ip, string(resp.Payload))
	case resp.Code.Equal(coapwire.CodeUnauthorized):
		if _, ok := devices[ip]; !ok {
			devices[ip] = &deviceState{record: &discovery.CoAPRecord{Address: ip, Port: Port}}
		}
	}
}

func enumerateResources(ctx context.Context, devices map[string]*deviceState, budget time.Duration) {
	deadline := time.Now().Add(budget)
	for ip, d := range devices {
		if time.Now().After(deadline) || ctx.Err() != nil {
			return
		}
		count := 0
		for i := range d.record.Resources {
			if count >= maxResourcesPerDevice {
				break
			}
			res := &d.record.Resources[i]
			if res.URI == "" || res.URI == "/.well-known/core" {
				continue
			}
			count++
			enumerateOne(ip, res, time.Until(deadline))

			select {
			case <-time.After(probeDelay):
			case <-ctx.Done():
				return
			}
		}
	}
}

func enumerateOne(ip string, res *discovery.CoAPResource, timeout time.Duration) {
	if timeout <= 0 {
		return
	}
	conn, err := net.DialTimeout("udp", net.JoinHostPort(ip, strconv.Itoa(Port)), minDur(timeout, 2*time.Second))
	if err != nil {
		return
	}
	defer conn.Close()

	token := randToken(4)
	msgID := randMessageID()
	req := coapwire.BuildGET(coapwire.TypeConfirmable, msgID, token, res.URI)

	_ = conn.SetDeadline(time.Now().Add(minDur(timeout, 2*time.Second)))
	if _, err := conn.Write(req); err != nil {
		return
	}

	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		return
	}
	resp, err := coapwire.Decode(buf[:n])
	if err != nil {
		return
	}
	if resp.Type == coapwire.TypeConfirmable {
		_, _ = conn.Write(coapwire.BuildEmptyAck(resp.MessageID, resp.Token))
	}

	for _, opt := range resp.Options {
		if opt.Number == coapwire.OptionContentFormat && len(opt.Value) > 0 {
			res.ContentFormat = int(binary.BigEndian.Uint16(append(make([]byte, 2-len(opt.Value)), opt.Value...)))
			break
		}
	}
}

func checkDTLS(ctx context.Context, devices map[string]*deviceState) {
	if len(devices) == 0 {
		return
	}
	perHost := minDur(1*time.Second, time.Second)
	for ip, d := range devices {
		if ctx.Err() != nil {
			return
		}
		conn, err := net.DialTimeout("udp", net.JoinHostPort(ip, strconv.Itoa(DTLSPort)), perHost)
		if err != nil {
			continue
		}
		token := randToken(2)
		msgID := randMessageID()
		probe := coapwire.BuildGET(coapwire.TypeConfirmable, msgID, token, "/.well-known/core")
		_ = conn.SetDeadline(time.Now().Add(perHost))
		if _, err := conn.Write(probe); err == nil {
			buf := make([]byte, 64)
			if _, err := conn.Read(buf); err == nil {
				d.record.DTLSSupported = true
			}
		}
		conn.Close()
	}
}

func processWellKnown(devices map[string]*deviceState, ip, payload string) {
	parsed := coapwire.ParseLinkFormat(payload)
	if len(parsed) == 0 {
		return
	}
	d, ok := devices[ip]
	if !ok {
		d = &deviceState{record: &discovery.CoAPRecord{Address: ip, Port: Port}}
		devices[ip] = d
	}

	var resources []discovery.CoAPResource
	var observable []string
	for _, r := range parsed {
		resources = append(resources, discovery.CoAPResource{
			URI:           r.URI,
			ResourceType:  r.ResourceType,
			InterfaceDesc: r.InterfaceDesc,
			Title:         r.Title,
			ContentFormat: coapwire.ContentFormatNumber(r.ContentFormat),
			Observable:    r.Observable,
		})
		if r.Observable {
			observable = append(observable, r.URI)
		}
	}

	d.record.Resources = resources
	d.record.ObservableResources = observable
	d.record.UnauthenticatedAccess = true
	d.rawLink = payload
	d.record.RawLinkFormat = payload
}

func generateRiskFlags(rec *discovery.CoAPRecord) {
	var flags []string
	if rec.UnauthenticatedAccess {
		flags = append(flags, "unauthenticated_access")
	}
	if !rec.DTLSSupported {
		flags = append(flags, "no_dtls")
	}
	if len(rec.ObservableResources) > 0 {
		flags = append(flags, "observable_data_leak")
	}
	rec.RiskFlags = flags
}
