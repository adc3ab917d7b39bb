package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/tonhe/spyglass/internal/agentrpc"
	"github.com/tonhe/spyglass/internal/config"
	"github.com/tonhe/spyglass/internal/engine"
	"github.com/tonhe/spyglass/internal/fleet"
	"github.com/tonhe/spyglass/internal/logger"
	"github.com/tonhe/spyglass/internal/password"
	"golang.org/x/term"
)

// checkCmd polls a single agent once and prints its status and the
// configured column values. It is the headless variant of selecting a
// host in the browser.
func checkCmd(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	port := fs.Int("port", config.DefaultPort, "Agent RPC port")
	user := fs.String("user", config.DefaultUsername, "Agent username")
	askPassword := fs.Bool("password", false, "Prompt for the agent password")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: spyglass check [--port PORT] [--user NAME] [--password] HOST")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: HOST argument is required")
		fs.Usage()
		os.Exit(1)
	}
	addr := fs.Arg(0)

	cfg := loadOrDefaultConfig()
	if len(cfg.Columns) == 0 {
		cfg.Columns = config.DefaultColumns
	}
	store := openPasswordStore(cfg)

	host := fleet.NewHostRecord(addr, addr, *port, *user)
	if *askPassword {
		secret := promptSecret(fmt.Sprintf("Password for %s: ", addr))
		if secret != "" {
			host.SetPassword(store.Hash(secret))
		}
	} else if hashed, ok := lookupSecret(store, addr); ok {
		host.SetPassword(hashed)
	}

	columns := make([]fleet.ColumnSpec, 0, len(cfg.Columns))
	for _, c := range cfg.Columns {
		columns = append(columns, fleet.ColumnSpec{Plugin: c.Plugin, Field: c.Field, Subkey: c.Subkey})
	}

	poller := engine.NewPoller(columns, true, logger.Noop())
	ctx, cancel := context.WithTimeout(context.Background(), agentrpc.DefaultTimeout)
	defer cancel()
	poller.Poll(ctx, host)

	view := host.Snapshot()
	fmt.Printf("%s:%d  %s\n", view.IP, view.Port, view.Status)
	if view.Status != fleet.StatusOnline {
		os.Exit(1)
	}
	for _, col := range columns {
		key := col.MetricKey()
		if v, ok := view.Metrics[key]; ok {
			fmt.Printf("  %-24s %v\n", key, v)
		} else {
			fmt.Printf("  %-24s -\n", key)
		}
	}
}

// lookupSecret hashes the configured cleartext for addr. Agents
// authenticate against the hash, so this must match what the browser sends
// for the same host.
func lookupSecret(store *password.Store, addr string) (string, bool) {
	clear, ok := store.Lookup(addr)
	if !ok {
		return "", false
	}
	return store.Hash(clear), true
}

// openPasswordStore loads the on-disk salt so hashed lookups match what
// the browser would send. A salt failure degrades to an empty store.
func openPasswordStore(cfg *config.Config) *password.Store {
	saltPath, err := config.GetSaltPath()
	if err != nil {
		return password.NewStore(cfg.Passwords, nil)
	}
	salt, err := password.LoadOrCreateSalt(saltPath)
	if err != nil {
		return password.NewStore(cfg.Passwords, nil)
	}
	return password.NewStore(cfg.Passwords, salt)
}

// promptSecret reads a password without echoing it back.
func promptSecret(label string) string {
	fmt.Fprint(os.Stderr, label)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		os.Exit(1)
	}
	return string(secret)
}
