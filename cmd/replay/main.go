package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/danielpatrickdp/stopcoach/internal/config"
	"github.com/danielpatrickdp/stopcoach/internal/history"
	"github.com/danielpatrickdp/stopcoach/internal/logging"
	"github.com/danielpatrickdp/stopcoach/internal/replay"
	"github.com/danielpatrickdp/stopcoach/internal/scenario"
	"github.com/danielpatrickdp/stopcoach/internal/storage"
)

// #region main

func main() {
	fs := pflag.NewFlagSet("replay", pflag.ContinueOnError)
	fixturePath := fs.String("fixture", "", "path to fixture JSON (fixture mode)")
	cfg, err := config.Parse(fs, os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		fmt.Fprintln(os.Stderr, "       replay [--db path/to/stopcoach.db] [--deck deck.yaml]")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(cfg)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region db-mode

// runDBMode re-evaluates every persisted practice attempt against the
// current deck and reports attempts that would now be judged differently.
func runDBMode(cfg config.Config) int {
	logger, logCloser, err := logging.Open(cfg.LogFile, cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log: %v\n", err)
		return 2
	}
	defer logCloser.Close()

	deck := scenario.DefaultDeck()
	if cfg.DeckPath != "" {
		if deck, err = scenario.LoadDeck(cfg.DeckPath); err != nil {
			fmt.Fprintf(os.Stderr, "load deck: %v\n", err)
			return 2
		}
	}

	store, err := storage.OpenExistingSQLite(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open history: %v\n", err)
		return 2
	}
	defer store.Close()

	entries, err := history.ReadPersisted(context.Background(), store, 0, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read history: %v\n", err)
		return 2
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no practice attempts found")
		return 2
	}

	drifts := replay.CheckHistory(deck, entries)
	fmt.Printf("%-10s| %-36s| %s\n", "Entry", "Scenario", "Drift")
	fmt.Printf("%-10s+%-37s+%s\n", "----------", "-------------------------------------", "------")
	for _, d := range drifts {
		id := d.EntryID
		if len(id) > 8 {
			id = id[:8]
		}
		prompt := d.Prompt
		if r := []rune(prompt); len(r) > 35 {
			prompt = string(r[:34]) + "…"
		}
		fmt.Printf("%-10s| %-36s| %s\n", id, prompt, d.Reason)
	}
	fmt.Printf("\nSummary: %d total, %d match, %d drift\n", len(entries), len(entries)-len(drifts), len(drifts))

	if len(drifts) > 0 {
		return 1
	}
	return 0
}

// #endregion db-mode

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	deck, err := f.LoadDeck()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load deck: %v\n", err)
		return 2
	}
	mode, err := f.EngineMode()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fixture: %v\n", err)
		return 2
	}

	results, summary, err := replay.Replay(deck, mode, f.ToSteps())
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	fmt.Printf("%-6s| %-8s| %-12s| %-6s| %s\n", "Step", "Action", "Phase", "Index", "Outcome")
	fmt.Printf("%-6s+%-9s+%-13s+%-7s+%s\n", "------", "---------", "-------------", "-------", "--------")
	for i, r := range results {
		outcome := ""
		switch {
		case r.Err != nil:
			outcome = "rejected: " + r.Err.Error()
		case r.Result != nil:
			outcome = fmt.Sprintf("correct=%t legally_sound=%t", r.Result.WasCorrect, r.Result.LegallySound)
		}
		fmt.Printf("%-6d| %-8s| %-12s| %-6d| %s\n", i, f.Steps[i].Action, r.Phase, r.Index, outcome)
	}

	mismatches := f.Check(results, summary)
	for _, m := range mismatches {
		fmt.Println("DIFF " + m)
	}
	fmt.Printf("\nSummary: %d steps, %d answered, %d correct, %d legally sound, %d rejected, %d diverge\n",
		summary.TotalSteps, summary.Score.Answered, summary.Score.Correct,
		summary.Score.LegallySound, summary.Rejected, len(mismatches))

	if len(mismatches) > 0 {
		return 1
	}
	return 0
}

// #endregion fixture-mode
