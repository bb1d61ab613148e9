// Package discovery picks the network interface and subnet broadcast address
// used for directed Wake-on-LAN sends.
package discovery

import (
	"fmt"
	"net"
	"net/netip"

	"go.uber.org/zap"
)

// InterfaceInfo holds the interface and IPv4 subnet a magic packet should be
// broadcast on.
type InterfaceInfo struct {
	Interface *net.Interface
	IPv4Net   *net.IPNet
}

// NewInterfaceInfo resolves an interface name to its IPv4 subnet. An empty
// name selects the OS default interface. It returns an error if the
// interface has no IPv4 address.
func NewInterfaceInfo(interfaceName string) (*InterfaceInfo, error) {
	iface, err := getNetworkInterface(interfaceName)
	if err != nil {
		return nil, fmt.Errorf("get network interface %s: %w", interfaceName, err)
	}

	addresses, err := iface.Addrs()
	if err != nil {
		return nil, fmt.Errorf("get addresses for %s: %w", iface.Name, err)
	}
	for _, addr := range addresses {
		if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.To4() != nil {
			return &InterfaceInfo{Interface: iface, IPv4Net: ipnet}, nil
		}
	}
	return nil, fmt.Errorf("interface %s has no IPv4 address", iface.Name)
}

// BroadcastAddrPort returns the subnet broadcast address of the interface,
// paired with the given port.
func (i *InterfaceInfo) BroadcastAddrPort(port uint16) (netip.AddrPort, error) {
	broadcast := BroadcastAddr(i.IPv4Net)
	addr, ok := netip.AddrFromSlice(broadcast)
	if !ok {
		return netip.AddrPort{}, fmt.Errorf("no broadcast address for %s", i.IPv4Net)
	}
	return netip.AddrPortFrom(addr.Unmap(), port), nil
}

// BroadcastAddr computes the broadcast address from an IP network.
func BroadcastAddr(ipNet *net.IPNet) net.IP {
	ip := ipNet.IP.To4()
	if ip == nil {
		return nil
	}
	mask := ipNet.Mask
	broadcast := make(net.IP, 4)
	for i := range ip {
		broadcast[i] = ip[i] | ^mask[i]
	}
	return broadcast
}

// getNetworkInterface returns the network interface by name. If
// interfaceName is empty, it attempts to return the OS default interface.
func getNetworkInterface(interfaceName string) (*net.Interface, error) {
	if interfaceName != "" {
		iface, err := net.InterfaceByName(interfaceName)
		if err != nil {
			return nil, err
		}
		zap.L().Debug("using specified network interface", zap.String("interface", interfaceName))
		return iface, nil
	}

	iface, err := getDefaultInterface()
	if err != nil {
		return nil, err
	}
	zap.L().Debug("using default network interface", zap.String("interface", iface.Name))
	return iface, nil
}

// isBroadcastCapable returns true if the interface can carry a subnet
// broadcast: up, not loopback and not point-to-point (VPN/TUN interfaces
// cannot deliver magic packets to the LAN).
func isBroadcastCapable(iface net.Interface) bool {
	if iface.Flags&net.FlagUp == 0 {
		return false
	}
	if iface.Flags&net.FlagLoopback != 0 {
		return false
	}
	if iface.Flags&net.FlagPointToPoint != 0 {
		return false
	}
	return iface.Flags&net.FlagBroadcast != 0
}

// getDefaultInterface attempts to return the OS default network interface,
// preferring broadcast-capable ones over VPN/tunnel interfaces.
func getDefaultInterface() (*net.Interface, error) {
	if iface, err := getInterfaceByUDP(); err == nil {
		if isBroadcastCapable(*iface) {
			return iface, nil
		}
		zap.L().Warn("default route interface cannot broadcast (likely VPN)",
			zap.String("interface", iface.Name),
			zap.String("flags", iface.Flags.String()),
		)
	}

	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for _, iface := range interfaces {
		if isBroadcastCapable(iface) {
			return &iface, nil
		}
	}
	return nil, fmt.Errorf("no broadcast-capable network interface found")
}

// getInterfaceByUDP determines the default-route interface by opening a UDP
// connection to a public address and matching the local address used.
func getInterfaceByUDP() (*net.Interface, error) {
	conn, err := net.Dial("udp", "8.8.8.8:53")
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()
	localAddr := conn.LocalAddr().(*net.UDPAddr)

	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for _, iface := range interfaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip != nil && ip.Equal(localAddr.IP) {
				return &iface, nil
			}
		}
	}
	return nil, fmt.Errorf("interface not found for IP %s", localAddr.IP)
}
