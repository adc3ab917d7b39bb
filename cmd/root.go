package cmd

import (
	"fmt"
	"os"
)

// knownSubcommands is the set of CLI subcommands that bypass the TUI.
var knownSubcommands = map[string]bool{
	"check":   true,
	"config":  true,
	"version": true,
	"help":    true,
}

// IsSubcommand returns true if the argument is a known CLI subcommand.
func IsSubcommand(arg string) bool {
	return knownSubcommands[arg]
}

// Execute dispatches to the appropriate CLI subcommand handler.
func Execute(args []string) {
	if len(args) == 0 {
		return
	}

	switch args[0] {
	case "check":
		checkCmd(args[1:])
	case "config":
		configCmd(args[1:])
	case "version":
		fmt.Println("spyglass v0.1.0")
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`spyglass - agent fleet browser

Usage:
  spyglass                  Launch TUI browser
  spyglass check HOST       Poll one agent once and print its stats
  spyglass config <cmd>     Manage configuration
  spyglass version          Show version
  spyglass help             Show this help

Check:
  spyglass check [--port PORT] [--user NAME] [--password] HOST

  --password prompts for the agent password (input is hidden).
  Without it the configured password for a matching host entry is used.

Config Commands:
  spyglass config path             Show config directory path
  spyglass config show             Print the effective configuration
  spyglass config interval DUR     Set the browse poll interval (e.g. 3s)`)
}
