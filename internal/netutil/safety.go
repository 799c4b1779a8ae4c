// Package netutil holds network-facing helpers shared by every discovery
// engine: the private/loopback/link-local safety gate that every outbound
// probe and fetch is required to pass, and local interface selection.
package netutil

import "net"

// IsSafeTarget reports whether addr is eligible to be probed: a private,
// link-local, or loopback address. Every engine must check this before
// sending a unicast probe or fetching a URL discovered on the network —
// it is what keeps "fetch the device description URL" from turning into
// an open SSRF proxy.
func IsSafeTarget(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			return false
		}
		ip = net.ParseIP(host)
		if ip == nil {
			return false
		}
	}
	return isPrivate(ip) || ip.IsLinkLocalUnicast() || ip.IsLoopback()
}

var privateBlocks = func() []*net.IPNet {
	cidrs := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"fc00::/7",
	}
	blocks := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err == nil {
			blocks = append(blocks, n)
		}
	}
	return blocks
}()

func isPrivate(ip net.IP) bool {
	for _, b := range privateBlocks {
		if b.Contains(ip) {
			return true
		}
	}
	return false
}
