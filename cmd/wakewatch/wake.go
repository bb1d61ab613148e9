package main

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/ramonvermeulen/wakewatch/internal/core/config"
	"github.com/ramonvermeulen/wakewatch/internal/core/discovery"
	"github.com/ramonvermeulen/wakewatch/internal/core/probe"
	"github.com/spf13/cobra"
)

func newWakeCmd() *cobra.Command {
	var (
		broadcast     string
		interfaceName string
		timeout       time.Duration
	)
	wakeCmd := &cobra.Command{
		Use:   "wake <device|mac>",
		Short: "send a Wake-on-LAN magic packet",
		Long: `Wake broadcasts a Wake-on-LAN magic packet for the given MAC address.
The argument is either the name of a configured device or a MAC address in
colon-separated hex. By default the packet goes to 255.255.255.255:9; use
--broadcast or --interface to send a directed subnet broadcast instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			macText := args[0]
			if device, ok := cfg.Device(args[0]); ok {
				if device.MAC == "" {
					return fmt.Errorf("device %s has no MAC address to wake", device.Name)
				}
				macText = device.MAC
			}
			mac, err := net.ParseMAC(macText)
			if err != nil {
				return fmt.Errorf("invalid MAC address %q: %w", macText, err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			switch {
			case broadcast != "":
				addr, err := netip.ParseAddr(broadcast)
				if err != nil {
					return fmt.Errorf("invalid broadcast address %q: %w", broadcast, err)
				}
				err = probe.WakeBroadcast(ctx, mac, netip.AddrPortFrom(addr, probe.WakePort))
				if err != nil {
					return err
				}
			case cmd.Flags().Changed("interface"):
				iface, err := discovery.NewInterfaceInfo(interfaceName)
				if err != nil {
					return err
				}
				dst, err := iface.BroadcastAddrPort(probe.WakePort)
				if err != nil {
					return err
				}
				if err := probe.WakeBroadcast(ctx, mac, dst); err != nil {
					return err
				}
			default:
				if err := probe.Wake(ctx, mac); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "sent magic packet for %s\n", mac)
			return nil
		},
	}
	wakeCmd.Flags().StringVar(&broadcast, "broadcast", "",
		"broadcast address to send to instead of 255.255.255.255")
	wakeCmd.Flags().StringVar(&interfaceName, "interface", "",
		"send to the subnet broadcast address of this interface (empty selects the default interface)")
	wakeCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second,
		"overall timeout for the send")
	return wakeCmd
}
