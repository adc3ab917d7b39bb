package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the browser configuration loaded from config.toml.
type Config struct {
	PollInterval     time.Duration `toml:"-"`
	PollIntervalStr  string        `toml:"poll_interval"`
	DisableDiscovery bool          `toml:"disable_discovery"`
	// StrictSetup marks a host OFFLINE when the RPC client cannot even be
	// constructed. The default leaves the status untouched for that cycle.
	StrictSetup bool `toml:"strict_setup"`
	// SNMPCommunity is used by the fallback reachability probe; empty
	// disables the fallback entirely.
	SNMPCommunity string            `toml:"snmp_community"`
	Hosts         []Host            `toml:"hosts"`
	Columns       []Column          `toml:"columns"`
	Passwords     map[string]string `toml:"passwords"`
}

// Host is one statically configured agent.
type Host struct {
	Name     string `toml:"name"`
	IP       string `toml:"ip"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// Column names one metric digest to poll and display.
type Column struct {
	Plugin string `toml:"plugin"`
	Field  string `toml:"field"`
	Subkey string `toml:"subkey"`
}

const (
	DefaultPort     = 61209
	DefaultUsername = "user"
)

// DefaultColumns is the digest shown when no [[columns]] are configured.
var DefaultColumns = []Column{
	{Plugin: "cpu", Field: "total"},
	{Plugin: "mem", Field: "percent"},
	{Plugin: "load", Field: "min5"},
}

func DefaultConfig() *Config {
	cfg := &Config{
		PollInterval:    3 * time.Second,
		PollIntervalStr: "3s",
		SNMPCommunity:   "public",
	}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads the TOML file at path. A missing file yields defaults.
// Host entries get the default port and username applied; an empty column
// list falls back to DefaultColumns.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.PollIntervalStr != "" {
		d, err := time.ParseDuration(cfg.PollIntervalStr)
		if err == nil {
			cfg.PollInterval = d
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (cfg *Config) applyDefaults() {
	for i := range cfg.Hosts {
		if cfg.Hosts[i].Port == 0 {
			cfg.Hosts[i].Port = DefaultPort
		}
		if cfg.Hosts[i].Username == "" {
			cfg.Hosts[i].Username = DefaultUsername
		}
	}
	if len(cfg.Columns) == 0 {
		cfg.Columns = append([]Column(nil), DefaultColumns...)
	}
	if cfg.Passwords == nil {
		cfg.Passwords = make(map[string]string)
	}
}

// SaveConfig writes the configuration back to path.
func SaveConfig(cfg *Config, path string) error {
	cfg.PollIntervalStr = cfg.PollInterval.String()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
