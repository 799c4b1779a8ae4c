package mcast

import (
	"fmt"
	"net"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// setMulticastTTL sets the outbound multicast TTL (hop count) on conn using
// golang.org/x/net/ipv4, which exposes the IP_MULTICAST_TTL socket option
// that the stdlib net package doesn't surface directly.
func setMulticastTTL(conn *net.UDPConn, ttl int) error {
	pconn := ipv4.NewPacketConn(conn)
	if err := pconn.SetMulticastTTL(ttl); err != nil {
		return fmt.Errorf("mcast: set multicast ttl: %w", err)
	}
	return nil
}

// setMulticastHopLimit is the IPv6 analogue of setMulticastTTL: hop limit
// is IPv6's name for the field IPv4 calls TTL. golang.org/x/net/ipv6 also
// pins the outbound interface, since link-local multicast is meaningless
// without one.
func setMulticastHopLimit(conn *net.UDPConn, iface *net.Interface, hopLimit int) error {
	pconn := ipv6.NewPacketConn(conn)
	if err := pconn.SetMulticastInterface(iface); err != nil {
		return fmt.Errorf("mcast: set multicast interface: %w", err)
	}
	if err := pconn.SetMulticastHopLimit(hopLimit); err != nil {
		return fmt.Errorf("mcast: set multicast hop limit: %w", err)
	}
	return nil
}
