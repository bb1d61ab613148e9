package probe

import (
	"context"
	"net/netip"
	"testing"
	"time"

	"golang.org/x/net/icmp"
)

// requirePingSockets skips the test when the environment does not permit
// unprivileged ICMP datagram sockets (on Linux this is controlled by the
// net.ipv4.ping_group_range sysctl).
func requirePingSockets(t *testing.T) {
	t.Helper()
	conn, err := icmp.ListenPacket("udp4", "0.0.0.0")
	if err != nil {
		t.Skipf("unprivileged ICMP sockets not available: %v", err)
	}
	_ = conn.Close()
}

func TestPing_NoReply(t *testing.T) {
	requirePingSockets(t)
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	// 192.0.2.1 is TEST-NET-1 and never answers.
	err := Ping(ctx, netip.MustParseAddr("192.0.2.1"))
	if err == nil {
		t.Fatal("expected error for silent address, got nil")
	}
}

func TestPing_CancellationReleasesSocket(t *testing.T) {
	requirePingSockets(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// With the context already cancelled the probe must fail promptly
	// instead of waiting out the 10s backstop.
	start := time.Now()
	err := Ping(ctx, netip.MustParseAddr("192.0.2.1"))
	if err == nil {
		t.Fatal("expected error for cancelled probe, got nil")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("cancelled probe took %v, expected a prompt return", elapsed)
	}
}
