package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is read-only after startup; every component receives it by value or
// pointer and none mutates it.
type Config struct {
	AlertmanagerURL string
	AlertNames      []string
	Interval        time.Duration // poll cadence
	ActiveState     string        // alert source's "firing" literal

	PodName        string // lease holder identity
	LeaseName      string
	LeaseNamespace string
	LeaseTTL       time.Duration

	HTTPAddr string
}

// fileConfig is the YAML shape; durations are strings ("30s") parsed in Load.
type fileConfig struct {
	AlertmanagerURL string   `yaml:"alertmanagerURL"`
	AlertNames      []string `yaml:"alertNames"`
	Interval        string   `yaml:"interval"`
	ActiveState     string   `yaml:"activeState"`
	PodName         string   `yaml:"podName"`
	LeaseName       string   `yaml:"leaseName"`
	LeaseNamespace  string   `yaml:"leaseNamespace"`
	LeaseTTL        string   `yaml:"leaseTTL"`
	HTTPAddr        string   `yaml:"httpAddr"`
}

func Default() Config {
	return Config{
		Interval:    60 * time.Second,
		ActiveState: "active",
		LeaseName:   "alert-deleter",
		LeaseTTL:    10 * time.Second,
		HTTPAddr:    ":8080",
	}
}

// Load reads a YAML file over the defaults. Flags applied afterwards win.
func Load(path string) (Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	var f fileConfig
	if err := yaml.Unmarshal(b, &f); err != nil {
		return c, err
	}
	if f.AlertmanagerURL != "" {
		c.AlertmanagerURL = f.AlertmanagerURL
	}
	if len(f.AlertNames) > 0 {
		c.AlertNames = f.AlertNames
	}
	if f.ActiveState != "" {
		c.ActiveState = f.ActiveState
	}
	if f.PodName != "" {
		c.PodName = f.PodName
	}
	if f.LeaseName != "" {
		c.LeaseName = f.LeaseName
	}
	if f.LeaseNamespace != "" {
		c.LeaseNamespace = f.LeaseNamespace
	}
	if f.HTTPAddr != "" {
		c.HTTPAddr = f.HTTPAddr
	}
	if f.Interval != "" {
		if c.Interval, err = time.ParseDuration(f.Interval); err != nil {
			return c, fmt.Errorf("interval: %w", err)
		}
	}
	if f.LeaseTTL != "" {
		if c.LeaseTTL, err = time.ParseDuration(f.LeaseTTL); err != nil {
			return c, fmt.Errorf("leaseTTL: %w", err)
		}
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.AlertmanagerURL == "" {
		return fmt.Errorf("alertmanager-url is required")
	}
	if len(c.AlertNames) == 0 {
		return fmt.Errorf("alert-names is required (comma-separated allow-list)")
	}
	if c.PodName == "" {
		return fmt.Errorf("pod-name is required for leader election")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.LeaseTTL <= 0 {
		return fmt.Errorf("lease-secs must be positive, got %s", c.LeaseTTL)
	}
	return nil
}

// SplitNames turns the --alert-names flag value into the allow-list.
func SplitNames(csv string) []string {
	var out []string
	for _, n := range strings.Split(csv, ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
