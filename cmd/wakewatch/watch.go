package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/ramonvermeulen/wakewatch/internal/core/config"
	"github.com/ramonvermeulen/wakewatch/internal/core/monitor"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var interval time.Duration
	watchCmd := &cobra.Command{
		Use:   "watch <device|host>",
		Short: "continuously report whether a host is on the network",
		Long: `Watch pings the given host once per interval and prints one line per
round telling whether it is online. The argument is either the name of a
configured device or an ad hoc IP address / DNS name. Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			host := args[0]
			roundInterval := cfg.IntervalFor(nil)
			if device, ok := cfg.Device(args[0]); ok {
				if device.Host == "" {
					return fmt.Errorf("device %s has no host to watch", device.Name)
				}
				host = device.Host
				roundInterval = cfg.IntervalFor(device)
			}
			if cmd.Flags().Changed("interval") {
				roundInterval = interval
			}
			if roundInterval <= 0 {
				return fmt.Errorf("interval must be positive, got %v", roundInterval)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			target := monitor.ParseTarget(host)
			for online := range monitor.New(target, roundInterval).Watch(ctx) {
				status := "offline"
				if online {
					status = "online"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n",
					time.Now().Format(time.RFC3339), target, status)
			}
			return nil
		},
	}
	watchCmd.Flags().DurationVar(&interval, "interval", config.DefaultInterval,
		"probing interval, also the per-round deadline")
	return watchCmd
}
