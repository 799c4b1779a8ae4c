// Package mqtt probes a list of candidate addresses for MQTT 3.1.1
// brokers: checks which configured ports are open, attempts an anonymous
// CONNECT, harvests $SYS broker metadata, samples a few seconds of live
// topic names, and tests (but never exploits) anonymous publish.
package mqtt

import (
	"bufio"
	"context"
	"crypto/tls"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rvh-io/hearsay/internal/netutil"
	"github.com/rvh-io/hearsay/internal/wire/mqttwire"
	"github.com/rvh-io/hearsay/pkg/discovery"
)

const (
	maxSysCollect   = 3 * time.Second
	maxTopicCollect = 2 * time.Second
	maxSampledTopics = 50
	maxSysEntries    = 200
	probeDelay       = 100 * time.Millisecond
)

// Scan checks req.Targets() for open MQTT ports and probes each responsive
// address/port pair for broker metadata. Targets that fail the
// private/loopback/link-local safety check are skipped entirely.
func Scan(ctx context.Context, req *discovery.Request) ([]*discovery.MQTTRecord, error) {
	var records []*discovery.MQTTRecord

	for _, addr := range req.Targets() {
		if ctx.Err() != nil {
			break
		}
		if !netutil.IsSafeTarget(addr) {
			continue
		}

		var openPorts []int
		tlsSupported := false
		for _, port := range req.MQTTPorts() {
			if tcpOpen(ctx, addr, port, 2*time.Second) {
				openPorts = append(openPorts, port)
				if port == 8883 {
					tlsSupported = true
				}
			}
		}
		if len(openPorts) == 0 {
			continue
		}

		probePort := openPorts[0]
		for _, p := range openPorts {
			if p != 8883 {
				probePort = p
				break
			}
		}

		rec := probeBroker(ctx, addr, probePort, tlsSupported, req.Timeout())
		if rec != nil {
			records = append(records, rec)
		}

		select {
		case <-time.After(probeDelay):
		case <-ctx.Done():
		}
	}

	return records, nil
}

func tcpOpen(ctx context.Context, addr string, port int, timeout time.Duration) bool {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(addr, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

type probeState struct {
	mu            sync.Mutex
	sysData       map[string]string
	sampledTopics map[string]bool
}

func probeBroker(ctx context.Context, addr string, port int, tlsSupported bool, timeout time.Duration) *discovery.MQTTRecord {
	target := net.JoinHostPort(addr, strconv.Itoa(port))

	var conn net.Conn
	var err error
	if port == 8883 {
		conn, err = tls.DialWithDialer(&net.Dialer{Timeout: 3 * time.Second}, "tcp", target, &tls.Config{InsecureSkipVerify: true})
	} else {
		conn, err = net.DialTimeout("tcp", target, 3*time.Second)
	}
	if err != nil {
		return nil
	}
	defer conn.Close()

	rec := &discovery.MQTTRecord{Address: addr, Port: port, TLSSupported: tlsSupported}

	clientID := "hearsay-scan-" + strconv.FormatInt(time.Now().UnixNano()%0xFFFFFF, 16)
	if _, err := conn.Write(mqttwire.BuildConnect(clientID, 30)); err != nil {
		return nil
	}

	reader := bufio.NewReader(conn)
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	packet, err := mqttwire.ReadPacket(reader)
	if err != nil {
		return nil
	}
	ack, err := mqttwire.ParseConnAck(packet)
	if err != nil {
		return rec
	}
	if ack.ReturnCode != mqttwire.ReturnCodeAccepted {
		rec.AnonymousAccess = false
		generateRiskFlags(rec)
		return rec
	}
	rec.AnonymousAccess = true

	state := &probeState{sysData: make(map[string]string), sampledTopics: make(map[string]bool)}

	sysCollect := minDuration(timeout*4/10, maxSysCollect)
	if _, err := conn.Write(mqttwire.BuildSubscribe(1, "$SYS/#")); err != nil {
		return rec
	}
	collectMessages(conn, reader, state, sysCollect)
	parseSysData(state, rec)

	topicCollect := minDuration(timeout*3/10, maxTopicCollect)
	if _, err := conn.Write(mqttwire.BuildSubscribe(2, "#")); err == nil {
		collectMessages(conn, reader, state, topicCollect)
		_, _ = conn.Write(mqttwire.BuildUnsubscribe(3, "#"))
	}

	state.mu.Lock()
	topics := make([]string, 0, len(state.sampledTopics))
	for t := range state.sampledTopics {
		topics = append(topics, t)
	}
	state.mu.Unlock()
	sort.Strings(topics)
	rec.SampledTopics = topics

	if _, err := conn.Write(mqttwire.BuildPublish("hearsay/test")); err == nil {
		rec.AnonymousPublish = true
	}

	_, _ = conn.Write(mqttwire.BuildDisconnect())

	state.mu.Lock()
	rec.SysData = state.sysData
	state.mu.Unlock()

	generateRiskFlags(rec)
	return rec
}

func collectMessages(conn net.Conn, reader *bufio.Reader, state *probeState, d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		packet, err := mqttwire.ReadPacket(reader)
		if err != nil {
			return
		}
		pub, err := mqttwire.ParsePublish(packet)
		if err != nil {
			continue
		}
		state.mu.Lock()
		if strings.HasPrefix(pub.Topic, "$SYS/") {
			if len(state.sysData) < maxSysEntries {
				state.sysData[pub.Topic] = string(pub.Payload)
			}
		} else if len(state.sampledTopics) < maxSampledTopics {
			state.sampledTopics[pub.Topic] = true
		}
		state.mu.Unlock()
	}
}

func parseSysData(state *probeState, rec *discovery.MQTTRecord) {
	state.mu.Lock()
	defer state.mu.Unlock()

	if v := state.sysData["$SYS/broker/version"]; v != "" {
		rec.BrokerVersion = v
		if parts := strings.Fields(v); len(parts) > 0 {
			rec.BrokerName = strings.ToUpper(parts[0][:1]) + strings.ToLower(parts[0][1:])
		}
	}
	uptime := firstNonEmpty(state.sysData["$SYS/broker/uptime"], state.sysData["$SYS/broker/uptime/seconds"])
	if uptime != "" {
		if n, err := strconv.Atoi(strings.Fields(uptime)[0]); err == nil {
			rec.UptimeSeconds = n
		}
	}
	clients := firstNonEmpty(state.sysData["$SYS/broker/clients/connected"], state.sysData["$SYS/broker/clients/active"])
	if clients != "" {
		if n, err := strconv.Atoi(clients); err == nil {
			rec.ConnectedClients = n
		}
	}
	if v := state.sysData["$SYS/broker/messages/received"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			rec.MessagesReceived = n
		}
	}
	if v := state.sysData["$SYS/broker/messages/sent"]; v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			rec.MessagesSent = n
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func generateRiskFlags(rec *discovery.MQTTRecord) {
	var flags []string
	if rec.AnonymousAccess {
		flags = append(flags, "open_broker")
	}
	if rec.AnonymousPublish {
		flags = append(flags, "anonymous_publish")
	}
	if !rec.TLSSupported {
		flags = append(flags, "no_tls")
	}
	rec.RiskFlags = flags
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
