// Package main is the entry point for the coinflip application. Without a
// subcommand it runs the terminal UI.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/j-veylop/coinflip-tui/internal/app"
	"github.com/j-veylop/coinflip-tui/internal/config"
	"github.com/j-veylop/coinflip-tui/internal/db"
	"github.com/j-veylop/coinflip-tui/internal/logger"
	"github.com/j-veylop/coinflip-tui/internal/services"
	"github.com/j-veylop/coinflip-tui/internal/ui/tabs/account"
	fliptab "github.com/j-veylop/coinflip-tui/internal/ui/tabs/flip"
	"github.com/j-veylop/coinflip-tui/internal/ui/tabs/history"
	"github.com/j-veylop/coinflip-tui/internal/version"
)

// Hooks replaced by tests.
var (
	loadConfig     = config.Load
	managerOptions []services.Option
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   version.Name,
		Short: "Ask a question, flip a coin",
		Long: `coinflip - a terminal coin flipper with a 7-day free trial,
5 free flips a day and unlimited flips with Pro.

Run without arguments to start the interactive UI.`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(RunFlipCommand())
	rootCmd.AddCommand(RunStatusCommand())
	rootCmd.AddCommand(RunHistoryCommand())
	rootCmd.AddCommand(RunPurchaseCommand())
	rootCmd.AddCommand(RunRestoreCommand())
	rootCmd.AddCommand(RunClearHistoryCommand())
	rootCmd.AddCommand(RunDevCommand())
	rootCmd.AddCommand(RunVersionCommand())

	return rootCmd
}

// openManager loads configuration, points the logger at the log file and
// starts the services. The returned cleanup flushes pending writes.
func openManager() (*services.Manager, *config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logCloser, err := logger.Init(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}

	mgr, err := services.NewManager(cfg, managerOptions...)
	if err != nil {
		_ = logCloser.Close()
		if errors.Is(err, db.ErrLocked) {
			return nil, nil, nil, fmt.Errorf("%w: quit the running %s first", db.ErrLocked, version.Name)
		}
		return nil, nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	cleanup := func() {
		if closeErr := mgr.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
		closeQuietly(logCloser)
	}
	return mgr, cfg, cleanup, nil
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

// runTUI runs the interactive application until the user quits.
func runTUI() error {
	svcManager, cfg, cleanup, err := openManager()
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("starting", "version", version.GetVersion(), "database", cfg.DatabasePath)

	model := app.NewModel(svcManager)

	state := model.GetState()
	model.SetTabs([]app.Tab{
		fliptab.New(state),
		history.New(state, svcManager),
		account.New(state, cfg),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
