// Package banner grabs service banners, over plain TCP or TLS, from a
// short, fixed list of common TCP ports, probing the ports of one device
// through a bounded worker pool.
package banner

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"
)

// Port is one commonly-banner-bearing TCP port and the service name
// reported back when that port is found open.
type Port struct {
	Number int
	Name   string
	TLS    bool
}

// Ports is the fixed probe table: common management and service ports
// whose banners are useful for fingerprinting and classification.
var Ports = []Port{
	{21, "ftp", false},
	{22, "ssh", false},
	{23, "telnet", false},
	{25, "smtp", false},
	{80, "http", false},
	{443, "https", true},
	{515, "lpd", false},
	{554, "rtsp", false},
	{631, "ipp", false},
	{1883, "mqtt", false},
	{8080, "http-alt", false},
	{8443, "https-alt", true},
	{8883, "mqtts", true},
	{9100, "jetdirect", false},
}

// Result is one probed port's outcome.
type Result struct {
	Port       int
	Name       string
	Open       bool
	Banner     string
	TLS        bool
	TLSVersion string
}

// Grabber probes a fixed port table against one address at a time, using a
// bounded worker pool across the ports of a single device.
type Grabber struct {
	workers    int
	dialTimeout time.Duration
	readTimeout time.Duration
}

func NewGrabber(workers int, dialTimeout, readTimeout time.Duration) *Grabber {
	if workers <= 0 {
		workers = 4
	}
	return &Grabber{workers: workers, dialTimeout: dialTimeout, readTimeout: readTimeout}
}

// Grab probes every port in Ports against addr and returns only the ones
// found open, preserving Ports' declaration order.
func (g *Grabber) Grab(ctx context.Context, addr string) []Result {
	type indexed struct {
		idx int
		res Result
	}

	jobs := make(chan int, len(Ports))
	out := make(chan indexed, len(Ports))
	var wg sync.WaitGroup

	for i := 0; i < g.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				p := Ports[idx]
				res := g.probe(ctx, addr, p)
				out <- indexed{idx: idx, res: res}
			}
		}()
	}

	for i := range Ports {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(out)
	}()

	ordered := make([]*Result, len(Ports))
	for item := range out {
		r := item.res
		ordered[item.idx] = &r
	}

	results := make([]Result, 0, len(Ports))
	for _, r := range ordered {
		if r != nil && r.Open {
			results = append(results, *r)
		}
	}
	return results
}

func (g *Grabber) probe(ctx context.Context, addr string, p Port) Result {
	res := Result{Port: p.Number, Name: p.Name, TLS: p.TLS}
	target := net.JoinHostPort(addr, fmt.Sprintf("%d", p.Number))

	dialer := &net.Dialer{Timeout: g.dialTimeout}

	var conn net.Conn
	var err error
	if p.TLS {
		tlsConn, dialErr := tls.DialWithDialer(dialer, "tcp", target, &tls.Config{InsecureSkipVerify: true})
		if dialErr == nil {
			res.TLSVersion = tlsVersionName(tlsConn.ConnectionState().Version)
		}
		conn, err = tlsConn, dialErr
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", target)
	}
	if err != nil {
		return res
	}
	defer conn.Close()

	res.Open = true
	switch p.Name {
	case "http", "http-alt", "https", "https-alt":
		_, _ = fmt.Fprintf(conn, "GET / HTTP/1.0\r\nHost: %s\r\n\r\n", target)
	case "rtsp":
		_, _ = fmt.Fprintf(conn, "OPTIONS rtsp://%s/ RTSP/1.0\r\nCSeq: 1\r\n\r\n", target)
	}
	_ = conn.SetReadDeadline(time.Now().Add(g.readTimeout))
	buf := make([]byte, 256)
	n, _ := conn.Read(buf)
	if n > 0 {
		res.Banner = sanitize(buf[:n])
	}
	return res
}

func sanitize(b []byte) string {
	out := make([]rune, 0, len(b))
	for _, r := range string(b) {
		if r < 0x20 {
			if len(out) > 0 && out[len(out)-1] == ' ' {
				continue
			}
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}

func tlsVersionName(v uint16) string {
	switch v {
	case tls.VersionTLS13:
		return "TLS1.3"
	case tls.VersionTLS12:
		return "TLS1.2"
	case tls.VersionTLS11:
		return "TLS1.1"
	case tls.VersionTLS10:
		return "TLS1.0"
	default:
		return ""
	}
}
