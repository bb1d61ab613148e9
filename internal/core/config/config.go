// Package config loads the wakewatch device list from a yaml file.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
)

// DefaultInterval is the probing interval used when neither the config file
// nor the command line specifies one.
const DefaultInterval = 5 * time.Second

// Device is one configured host that can be watched and woken.
type Device struct {
	Name string `yaml:"name"`
	// Host is the device's DNS name or IP literal, used for reachability
	// monitoring.
	Host string `yaml:"host"`
	// MAC is the device's hardware address in colon-separated hex, used for
	// Wake-on-LAN.
	MAC string `yaml:"mac"`
	// Interval overrides the global probing interval, e.g. "2s". Optional.
	Interval string `yaml:"interval,omitempty"`
}

// HardwareAddr parses the device's MAC address.
func (d *Device) HardwareAddr() (net.HardwareAddr, error) {
	mac, err := net.ParseMAC(d.MAC)
	if err != nil {
		return nil, fmt.Errorf("device %s: invalid MAC address %q: %w", d.Name, d.MAC, err)
	}
	return mac, nil
}

// Config is the top-level yaml document.
type Config struct {
	// Interval is the global probing interval, e.g. "5s". Optional.
	Interval string   `yaml:"interval,omitempty"`
	Devices  []Device `yaml:"devices"`
}

// Load reads and validates the config file at path. A missing file is not an
// error: devices can also be given ad hoc on the command line, so Load then
// returns an empty config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// DefaultPath returns the per-user config file location,
// e.g. ~/.config/wakewatch/config.yaml on Linux.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "wakewatch", "config.yaml")
}

// Validate checks device names, MAC addresses and intervals.
func (c *Config) Validate() error {
	if _, err := parseInterval(c.Interval); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Devices))
	for i := range c.Devices {
		d := &c.Devices[i]
		if d.Name == "" {
			return fmt.Errorf("device %d has no name", i)
		}
		if seen[d.Name] {
			return fmt.Errorf("duplicate device name %q", d.Name)
		}
		seen[d.Name] = true
		if d.Host == "" && d.MAC == "" {
			return fmt.Errorf("device %s has neither host nor mac", d.Name)
		}
		if d.MAC != "" {
			if _, err := d.HardwareAddr(); err != nil {
				return err
			}
		}
		if _, err := parseInterval(d.Interval); err != nil {
			return fmt.Errorf("device %s: %w", d.Name, err)
		}
	}
	return nil
}

// Device looks up a configured device by name.
func (c *Config) Device(name string) (*Device, bool) {
	for i := range c.Devices {
		if c.Devices[i].Name == name {
			return &c.Devices[i], true
		}
	}
	return nil, false
}

// IntervalFor returns the probing interval for the given device: the
// device's own interval if set, else the global one, else DefaultInterval.
// The device may be nil for ad hoc targets.
func (c *Config) IntervalFor(d *Device) time.Duration {
	if d != nil {
		if interval, err := parseInterval(d.Interval); err == nil && interval > 0 {
			return interval
		}
	}
	if interval, err := parseInterval(c.Interval); err == nil && interval > 0 {
		return interval
	}
	return DefaultInterval
}

func parseInterval(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	interval, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", s, err)
	}
	if interval <= 0 {
		return 0, fmt.Errorf("interval %q must be positive", s)
	}
	return interval, nil
}
