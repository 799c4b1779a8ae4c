package netutil

import (
	"fmt"
	"net"
)

// InterfaceInfo is the resolved network interface a scan binds its sockets
// to, along with its IPv4 address and network for convenience.
type InterfaceInfo struct {
	Interface *net.Interface
	IPv4Addr  net.IP
	IPv4Net   *net.IPNet
}

// ResolveInterface finds the interface named by name, or the OS default
// outbound interface if name is empty.
func ResolveInterface(name string) (*InterfaceInfo, error) {
	if name != "" {
		return interfaceByName(name)
	}
	return defaultInterface()
}

func interfaceByName(name string) (*InterfaceInfo, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("netutil: interface %q: %w", name, err)
	}
	return ipv4OfInterface(iface)
}

func ipv4OfInterface(iface *net.Interface) (*InterfaceInfo, error) {
	addrs, err := iface.Addrs()
	if err != nil {
		return nil, fmt.Errorf("netutil: addrs for %q: %w", iface.Name, err)
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return &InterfaceInfo{Interface: iface, IPv4Addr: ip4, IPv4Net: ipNet}, nil
		}
	}
	return nil, fmt.Errorf("netutil: interface %q has no IPv4 address", iface.Name)
}

// defaultInterface finds the interface carrying the default route by
// opening a UDP "connection" to a well-known public address. This sends no
// packets — UDP connect() only consults the routing table locally — so it
// doesn't violate the private-target-only probing rule.
func defaultInterface() (*InterfaceInfo, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return nil, fmt.Errorf("netutil: resolving default interface: %w", err)
	}
	defer conn.Close()

	localIP := conn.LocalAddr().(*net.UDPAddr).IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			if ipNet.IP.Equal(localIP) {
				iface := iface
				return &InterfaceInfo{Interface: &iface, IPv4Addr: localIP, IPv4Net: ipNet}, nil
			}
		}
	}
	return nil, fmt.Errorf("netutil: no interface matches default route address %s", localIP)
}
