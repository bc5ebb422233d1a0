package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/danielpatrickdp/stopcoach/internal/config"
	"github.com/danielpatrickdp/stopcoach/internal/logging"
	"github.com/danielpatrickdp/stopcoach/internal/scenario"
	"github.com/danielpatrickdp/stopcoach/internal/session"
	"github.com/danielpatrickdp/stopcoach/internal/storage"
	"github.com/danielpatrickdp/stopcoach/internal/tui"
)

// shutdownTimeout bounds how long quitting waits for a pending autosave.
const shutdownTimeout = 5 * time.Second

// #region main

func main() {
	fs := pflag.NewFlagSet("coach", pflag.ContinueOnError)
	cfg, err := config.Parse(fs, os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		config.Exitf("error: %v", err)
	}
}

// #endregion main

// #region run

func run(cfg config.Config) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("coach needs an interactive terminal; use inspect or export from scripts")
	}

	// The TUI owns stdout, so logs go to a file or nowhere.
	logger, logCloser, err := logging.Open(cfg.LogFile, cfg.LogLevel, cfg.LogFormat, nil)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	deck := scenario.DefaultDeck()
	if cfg.DeckPath != "" {
		deck, err = scenario.LoadDeck(cfg.DeckPath)
		if err != nil {
			return err
		}
	}
	mode := scenario.ModeSession
	if cfg.Drill {
		mode = scenario.ModeDrill
	}

	controller, err := session.New(session.Deps{
		Adapter:         storage.NewSQLite(cfg.DBPath),
		Deck:            deck,
		EngineMode:      mode,
		HistoryCapacity: cfg.HistoryCap,
		SlowLoadWarning: cfg.SlowLoad,
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	logger.Info("coach started", "db", cfg.DBPath, "scenarios", deck.Len(), "drill", cfg.Drill)

	_, runErr := tea.NewProgram(tui.NewModel(controller, cfg.ExportDir), tea.WithAltScreen()).Run()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	closeErr := controller.Close(ctx)
	if closeErr != nil {
		logger.Error("shutdown", "error", closeErr)
	}
	return errors.Join(runErr, closeErr)
}

// #endregion run
