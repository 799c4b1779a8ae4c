// Package mcast is the multicast UDP transport shared by the UPnP,
// WS-Discovery, and CoAP engines (the mDNS engine opens its own socket):
// open a socket bound to one interface,
// send a probe to a multicast group with a bounded hop count, then read
// responses until the context deadline passes.
package mcast

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Socket wraps a UDP connection bound to a single local interface, used to
// send one multicast probe and collect unicast replies.
type Socket struct {
	conn      *net.UDPConn
	localAddr net.IP
	network   string
}

// Open binds a UDP4 socket to localAddr (use nil for the OS-chosen
// interface) on an ephemeral port, and sets its outbound multicast TTL.
func Open(localAddr net.IP, ttl int) (*Socket, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: localAddr, Port: 0})
	if err != nil {
		return nil, fmt.Errorf("mcast: listen: %w", err)
	}
	if err := setMulticastTTL(conn, ttl); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Socket{conn: conn, localAddr: localAddr, network: "udp4"}, nil
}

// OpenV6 binds a UDP6 socket to the unspecified address scoped to iface
// (ephemeral port) for IPv6 multicast discovery (e.g. CoAP's ff02::fd group) and sets its outbound
// multicast hop limit.
func OpenV6(iface *net.Interface, hopLimit int) (*Socket, error) {
	if iface == nil {
		return nil, errors.New("mcast: OpenV6 requires an interface")
	}
	conn, err := net.ListenUDP("udp6", &net.UDPAddr{IP: net.IPv6unspecified, Port: 0, Zone: iface.Name})
	if err != nil {
		return nil, fmt.Errorf("mcast: listen udp6: %w", err)
	}
	if err := setMulticastHopLimit(conn, iface, hopLimit); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Socket{conn: conn, network: "udp6"}, nil
}

func (s *Socket) Close() error { return s.conn.Close() }

func (s *Socket) LocalAddr() net.Addr { return s.conn.LocalAddr() }

// Send writes payload to the given multicast (or unicast) address.
func (s *Socket) Send(payload []byte, addr string) error {
	udpAddr, err := net.ResolveUDPAddr(s.network, addr)
	if err != nil {
		return fmt.Errorf("mcast: resolve %q: %w", addr, err)
	}
	if _, err := s.conn.WriteToUDP(payload, udpAddr); err != nil {
		return fmt.Errorf("mcast: send to %q: %w", addr, err)
	}
	return nil
}

// Handler processes one received packet. It returns nothing and cannot stop
// the receive loop; only ctx cancellation, the deadline, or a non-timeout
// read error ends it.
type Handler func(src *net.UDPAddr, payload []byte)

const maxDatagram = 8192

// CollectUntil applies the context deadline to the socket and repeatedly
// reads datagrams, invoking handler for each, until the deadline passes,
// the context is canceled, or a non-timeout read error occurs.
func (s *Socket) CollectUntil(ctx context.Context, handler Handler) error {
	dl, ok := ctx.Deadline()
	if !ok {
		return errors.New("mcast: collect requires a context with a deadline")
	}
	if err := s.conn.SetReadDeadline(dl); err != nil {
		return fmt.Errorf("mcast: set read deadline: %w", err)
	}

	buf := make([]byte, maxDatagram)
	for {
		if ctx.Err() != nil {
			return nil
		}
		n, src, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return nil
			}
			return fmt.Errorf("mcast: read: %w", err)
		}
		payload := make([]byte, n)
		copy(payload, buf[:n])
		handler(src, payload)
	}
}
