package probe

import (
	"bytes"
	"fmt"
	"net"
	"net/netip"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// EchoLen is the exact size of an echo request and its reply. The header is
// 8 bytes (type, code, checksum, identifier, sequence) and the payload 48;
// the payload is mirrored back, so a valid reply has the same size.
const EchoLen = 56

// echoPayload fills the 48 payload bytes with a recognizable signature.
var echoPayload = bytes.Repeat([]byte("wakewatch-probe\n"), 3)

// EchoRequest builds the 56-byte ICMP echo request for the given address.
// Checksum and identifier are left zero: the kernel assigns both on
// unprivileged ICMP datagram sockets, so the packet can be assembled
// statically.
func EchoRequest(addr netip.Addr) []byte {
	request := make([]byte, 0, EchoLen)
	if addr.Is4() {
		request = append(request, byte(ipv4.ICMPTypeEcho))
	} else {
		request = append(request, byte(ipv6.ICMPTypeEchoRequest))
	}
	request = append(request,
		0,    // code
		0, 0, // checksum, kernel-assigned
		0, 0, // identifier, kernel-assigned
		0, 0, // sequence number
	)
	return append(request, echoPayload...)
}

// ValidateEchoReply checks that reply is a full-size echo reply for the
// address family of addr. Length is checked before content: a truncated or
// oversized buffer is rejected no matter what it contains.
func ValidateEchoReply(addr netip.Addr, reply []byte) error {
	if len(reply) != EchoLen {
		return fmt.Errorf("%w: got %d of %d bytes from %s", ErrShortRead, len(reply), EchoLen, addr)
	}
	want := byte(ipv4.ICMPTypeEchoReply)
	if addr.Is6() {
		want = byte(ipv6.ICMPTypeEchoReply)
	}
	if reply[0] != want {
		return fmt.Errorf("%w: type %d from %s", ErrUnexpectedReply, reply[0], addr)
	}
	return nil
}

// MagicPacketLen is the size of a Wake-on-LAN magic packet: 6 synchronization
// bytes followed by 16 repetitions of the 6-byte MAC address.
const MagicPacketLen = 102

// MagicPacket builds the 102-byte Wake-on-LAN payload for the given MAC
// address. The address must be exactly 6 bytes; net.ParseMAC also accepts
// EUI-64 and InfiniBand forms, which have no magic packet encoding.
func MagicPacket(mac net.HardwareAddr) ([]byte, error) {
	if len(mac) != 6 {
		return nil, fmt.Errorf("MAC address must be 6 bytes, got %d", len(mac))
	}
	packet := make([]byte, 0, MagicPacketLen)
	packet = append(packet, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF)
	for i := 0; i < 16; i++ {
		packet = append(packet, mac...)
	}
	return packet, nil
}
