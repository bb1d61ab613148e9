package probe

import (
	"context"
	"fmt"
	"net"
	"net/netip"

	"go.uber.org/zap"
)

// WakePort is the discard port, the conventional destination for magic packets.
const WakePort = 9

// Wake broadcasts a Wake-on-LAN magic packet for the given MAC address to the
// IPv4 limited broadcast address 255.255.255.255, port 9.
func Wake(ctx context.Context, mac net.HardwareAddr) error {
	return WakeBroadcast(ctx, mac, netip.AddrPortFrom(netip.AddrFrom4([4]byte{255, 255, 255, 255}), WakePort))
}

// WakeBroadcast broadcasts a Wake-on-LAN magic packet for mac to dst, which
// is typically a subnet broadcast address (e.g. 192.168.1.255:9) when the
// limited broadcast address is filtered.
//
// Unlike the reachability monitor, wake errors are returned to the caller:
// waking is a discrete user action that needs explicit success or failure.
func WakeBroadcast(ctx context.Context, mac net.HardwareAddr, dst netip.AddrPort) error {
	packet, err := MagicPacket(mac)
	if err != nil {
		return err
	}

	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return fmt.Errorf("open udp socket: %w", err)
	}
	defer func() { _ = conn.Close() }()
	if err := enableBroadcast(conn); err != nil {
		return fmt.Errorf("enable broadcast: %w", err)
	}
	if d, ok := ctx.Deadline(); ok {
		if err := conn.SetWriteDeadline(d); err != nil {
			return fmt.Errorf("set socket deadline: %w", err)
		}
	}

	n, err := conn.WriteToUDP(packet, net.UDPAddrFromAddrPort(dst))
	if err != nil {
		return fmt.Errorf("%w: wake %s via %s: %v", ErrNotWritable, mac, dst, err)
	}
	if n != len(packet) {
		return fmt.Errorf("%w: sent %d of %d bytes to %s", ErrShortWrite, n, len(packet), dst)
	}
	zap.L().Named("wol").Debug("sent magic packet",
		zap.String("mac", mac.String()),
		zap.String("dst", dst.String()),
	)
	return nil
}
