package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tonhe/spyglass/internal/config"
)

func configCmd(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: spyglass config <path|show|interval>")
		os.Exit(1)
	}

	switch args[0] {
	case "path":
		configPath()
	case "show":
		configShow()
	case "interval":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: spyglass config interval DUR")
			os.Exit(1)
		}
		configSetInterval(args[1])
	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		fmt.Fprintln(os.Stderr, "Usage: spyglass config <path|show|interval>")
		os.Exit(1)
	}
}

func configPath() {
	dir, err := config.GetConfigDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(dir)
}

func configShow() {
	cfg := loadOrDefaultConfig()
	if err := toml.NewEncoder(os.Stdout).Encode(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func configSetInterval(raw string) {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		fmt.Fprintf(os.Stderr, "Error: invalid interval %q\n", raw)
		os.Exit(1)
	}

	cfg := loadOrDefaultConfig()
	cfg.PollIntervalStr = raw
	cfg.PollInterval = d
	saveConfig(cfg)

	fmt.Printf("Poll interval set to %s.\n", d)
}

// loadOrDefaultConfig loads the config from disk, falling back to defaults.
func loadOrDefaultConfig() *config.Config {
	path, err := config.GetConfigPath()
	if err != nil {
		return config.DefaultConfig()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// saveConfig writes the config to disk, creating directories as needed.
func saveConfig(cfg *config.Config) {
	if err := config.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config directories: %v\n", err)
		os.Exit(1)
	}

	path, err := config.GetConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.SaveConfig(cfg, path); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}
}
