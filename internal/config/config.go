package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all devdash configuration.
type Config struct {
	RefreshInterval int      `yaml:"refresh_interval"` // seconds, TUI redraw cadence
	ScanInterval    int      `yaml:"scan_interval"`    // seconds, port scan cadence
	GracePeriodMS   int      `yaml:"grace_period_ms"`  // wait before force-killing on stop
	ProbeTimeoutMS  int      `yaml:"probe_timeout_ms"` // per-port connect timeout
	CandidatePorts  []string `yaml:"candidate_ports"`  // "8080" or "3000-3010"
}

// Default returns a Config with sensible default values. The candidate
// set covers the ranges common dev servers bind to.
func Default() *Config {
	return &Config{
		RefreshInterval: 2,
		ScanInterval:    30,
		GracePeriodMS:   500,
		ProbeTimeoutMS:  50,
		CandidatePorts: []string{
			"3000-3010",
			"4000-4010",
			"5000-5010",
			"8000-8010",
			"8080",
			"9000",
		},
	}
}

// Load loads config from the given path. If path is empty, it uses the
// default location (~/.config/devdash/config.yaml). If the file does
// not exist, it returns defaults without creating the file.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return Default(), nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	return LoadFrom(path)
}

// LoadFrom loads and parses config from the given path. Missing fields
// keep their default values.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save marshals the config to YAML and writes it to the given path,
// creating parent directories as needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "devdash", "config.yaml")
}

// GracePeriod returns the stop grace period as a duration.
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodMS) * time.Millisecond
}

// ProbeTimeout returns the per-port probe timeout as a duration.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutMS) * time.Millisecond
}

// Ports expands the candidate port specs into a flat port list,
// preserving spec order and keeping ranges inclusive.
func (c *Config) Ports() ([]int, error) {
	var ports []int
	for _, spec := range c.CandidatePorts {
		expanded, err := parsePortSpec(spec)
		if err != nil {
			return nil, err
		}
		ports = append(ports, expanded...)
	}
	return ports, nil
}

// parsePortSpec expands a single spec: either one port ("8080") or an
// inclusive range ("3000-3010").
func parsePortSpec(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)

	if lo, hi, ok := strings.Cut(spec, "-"); ok {
		start, err := parsePort(lo)
		if err != nil {
			return nil, fmt.Errorf("invalid port range %q: %w", spec, err)
		}
		end, err := parsePort(hi)
		if err != nil {
			return nil, fmt.Errorf("invalid port range %q: %w", spec, err)
		}
		if end < start {
			return nil, fmt.Errorf("invalid port range %q: end before start", spec)
		}

		ports := make([]int, 0, end-start+1)
		for p := start; p <= end; p++ {
			ports = append(ports, p)
		}
		return ports, nil
	}

	p, err := parsePort(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", spec, err)
	}
	return []int{p}, nil
}

func parsePort(s string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if p < 0 || p > 65535 {
		return 0, fmt.Errorf("port %d out of range", p)
	}
	return p, nil
}
