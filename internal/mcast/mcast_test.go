package mcast

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestOpenSendCollect_RoundTripsLoopbackPacket(t *testing.T) {
	receiver, err := Open(net.IPv4(127, 0, 0, 1), 1)
	if err != nil {
		t.Fatalf("open receiver: %v", err)
	}
	defer receiver.Close()

	sender, err := Open(net.IPv4(127, 0, 0, 1), 1)
	if err != nil {
		t.Fatalf("open sender: %v", err)
	}
	defer sender.Close()

	target := receiver.LocalAddr().String()
	if err := sender.Send([]byte("hello"), target); err != nil {
		t.Fatalf("send: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	var got string
	err = receiver.CollectUntil(ctx, func(src *net.UDPAddr, payload []byte) {
		got = string(payload)
	})
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if got != "hello" {
		t.Errorf("expected to receive %q, got %q", "hello", got)
	}
}

func TestCollectUntil_RequiresDeadline(t *testing.T) {
	sock, err := Open(net.IPv4(127, 0, 0, 1), 1)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer sock.Close()

	err = sock.CollectUntil(context.Background(), func(*net.UDPAddr, []byte) {})
	if err == nil {
		t.Errorf("expected an error when ctx has no deadline")
	}
}

func TestOpenV6_RequiresAnInterface(t *testing.T) {
	_, err := OpenV6(nil, 1)
	if err == nil {
		t.Errorf("expected an error when iface is nil")
	}
}

func TestOpenV6_BindsToLoopback(t *testing.T) {
	lo, err := net.InterfaceByName("lo")
	if err != nil {
		t.Skipf("no loopback interface available: %v", err)
	}
	sock, err := OpenV6(lo, 1)
	if err != nil {
		t.Skipf("OpenV6 on lo: %v", err)
	}
	defer sock.Close()
	if sock.network != "udp6" {
		t.Errorf("expected network udp6, got %q", sock.network)
	}
}

func TestCollectUntil_ReturnsNilOnTimeoutWithNoPackets(t *testing.T) {
	sock, err := Open(net.IPv4(127, 0, 0, 1), 1)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer sock.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := sock.CollectUntil(ctx, func(*net.UDPAddr, []byte) {}); err != nil {
		t.Errorf("expected a clean timeout, got %v", err)
	}
}
