package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tonhe/spyglass/cmd"
	"github.com/tonhe/spyglass/internal/client"
	"github.com/tonhe/spyglass/internal/config"
	"github.com/tonhe/spyglass/internal/discovery"
	"github.com/tonhe/spyglass/internal/engine"
	"github.com/tonhe/spyglass/internal/fleet"
	"github.com/tonhe/spyglass/internal/logger"
	"github.com/tonhe/spyglass/internal/password"
	"github.com/tonhe/spyglass/internal/session"
	"github.com/tonhe/spyglass/tui"
)

func main() {
	if len(os.Args) > 1 && cmd.IsSubcommand(os.Args[1]) {
		cmd.Execute(os.Args[1:])
		return
	}

	if err := config.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfgPath, err := config.GetConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	log := logger.Noop()
	logPath, err := config.GetLogPath()
	if err == nil {
		if fl, ferr := logger.NewFileLogger(logPath); ferr == nil {
			log = fl
		}
	}

	store := openStore(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	static := fleet.NewStaticList(cfg, cfgPath, log)
	go func() {
		if err := static.Watch(ctx); err != nil {
			log.Warn("config watch unavailable: %v", err)
		}
	}()

	var discovered fleet.Source
	if !cfg.DisableDiscovery {
		listener := discovery.NewListener(log)
		if err := listener.Start(ctx); err != nil {
			log.Warn("discovery unavailable: %v", err)
		} else {
			discovered = listener
		}
	}

	dir := fleet.NewDirectory(static, discovered)
	columns := static.Columns()

	poller := engine.NewPoller(columns, cfg.StrictSetup, log)
	sup := engine.NewSupervisor(poller.Poll)

	state := tui.NewState()
	model := tui.NewModel(columns, state)
	program := tea.NewProgram(model, tea.WithAltScreen())
	pres := tui.NewPresenter(program, state)

	resolver := session.NewResolver(store, pres)
	newClient := func(host *fleet.HostRecord) session.FullClient {
		return client.New(host, pres, client.Config{
			Columns:       columns,
			Interval:      cfg.PollInterval,
			SNMPCommunity: cfg.SNMPCommunity,
			Log:           log,
		})
	}

	router := session.NewRouter(session.RouterConfig{
		Directory: dir,
		Superv:    sup,
		Resolver:  resolver,
		Presenter: pres,
		NewClient: newClient,
		Static:    static,
		Log:       log,
		Tick:      cfg.PollInterval,
		LogPath:   logPath,
	})

	go func() {
		router.Run(ctx)
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cancel()
}

// openStore loads the persistent salt and wraps the configured password
// table. Salt problems are not fatal; hashes just won't survive restarts.
func openStore(cfg *config.Config) *password.Store {
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
