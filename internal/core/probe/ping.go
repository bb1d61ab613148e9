// Package probe answers "is this host on the network, and can I wake it up?"
// at the single-packet level. It sends unprivileged ICMP echo requests to
// check reachability and broadcasts Wake-on-LAN magic packets to rouse
// sleeping hosts.
package probe

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/icmp"
)

// readBackstop caps how long a probe may block on its socket, independent of
// any caller deadline.
const readBackstop = 10 * time.Second

// Ping sends a single ICMP echo request to addr and waits for the matching
// echo reply. It uses an unprivileged ICMP datagram socket, so no elevated
// privilege is needed (on Linux the socket is subject to the
// net.ipv4.ping_group_range sysctl; checksum and identifier are assigned by
// the kernel).
//
// A nil error means the host replied. Failures are wrapped sentinel errors
// from this package, or a plain error if the socket could not be opened. The
// caller's context bounds the wait for the reply; on cancellation the socket
// is released and Ping returns promptly.
func Ping(ctx context.Context, addr netip.Addr) error {
	addr = addr.Unmap()
	log := zap.L().Named("ping")
	log.Debug("sending echo request", zap.String("addr", addr.String()))

	network, listen := "udp6", "::"
	if addr.Is4() {
		network, listen = "udp4", "0.0.0.0"
	}
	conn, err := icmp.ListenPacket(network, listen)
	if err != nil {
		return fmt.Errorf("open %s icmp socket: %w", network, err)
	}
	// Closing here covers every exit path, including cancellation below.
	defer func() { _ = conn.Close() }()

	deadline := time.Now().Add(readBackstop)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("set socket deadline: %w", err)
	}
	// Unblock the pending read as soon as the caller gives up, rather than
	// waiting out the deadline.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	request := EchoRequest(addr)
	dst := &net.UDPAddr{IP: addr.AsSlice(), Zone: addr.Zone()}
	n, err := conn.WriteTo(request, dst)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotWritable, addr, err)
	}
	if n != len(request) {
		return fmt.Errorf("%w: sent %d of %d bytes to %s", ErrShortWrite, n, len(request), addr)
	}

	// The reply mirrors the request payload, so it has the same size. ICMP
	// datagram sockets deliver the message without the IP header.
	reply := make([]byte, EchoLen)
	n, _, err = conn.ReadFrom(reply)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotReadable, addr, err)
	}
	if err := ValidateEchoReply(addr, reply[:n]); err != nil {
		return err
	}
	log.Debug("got echo reply", zap.String("addr", addr.String()))
	return nil
}
