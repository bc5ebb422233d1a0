package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/danielpatrickdp/stopcoach/internal/config"
	"github.com/danielpatrickdp/stopcoach/internal/history"
	"github.com/danielpatrickdp/stopcoach/internal/incident"
	"github.com/danielpatrickdp/stopcoach/internal/logging"
	"github.com/danielpatrickdp/stopcoach/internal/storage"
)

// #region main

func main() {
	fs := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
	last := fs.Int("last", 20, "show N most recent practice attempts (0 for all)")
	showDoc := fs.Bool("doc", false, "show the saved incident log draft instead of practice history")
	jsonOut := fs.Bool("json", false, "output as JSON instead of table")
	cfg, err := config.Parse(fs, os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "usage: inspect [--db path] [--last N] [--doc] [--json]: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg, *last, *showDoc, *jsonOut); err != nil {
		config.Exitf("error: %v", err)
	}
}

func run(cfg config.Config, last int, showDoc, jsonOut bool) error {
	logger, logCloser, err := logging.Open(cfg.LogFile, cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	store, err := storage.OpenExistingSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	if showDoc {
		return runDocMode(ctx, store, jsonOut)
	}
	entries, err := history.ReadPersisted(ctx, store, last, logger)
	if err != nil {
		return err
	}
	return runListMode(entries, jsonOut)
}

// #endregion main

// #region list-mode

type listRow struct {
	ID           string `json:"id"`
	Prompt       string `json:"scenario_prompt"`
	Chosen       string `json:"chosen_text"`
	WasCorrect   bool   `json:"was_correct"`
	LegallySound bool   `json:"legally_sound"`
	CreatedAt    string `json:"created_at"`
}

func runListMode(entries []history.Entry, jsonOut bool) error {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no practice attempts found")
		return nil
	}

	// Entries arrive newest first; print chronologically.
	rows := make([]listRow, len(entries))
	correct, sound := 0, 0
	for i, e := range entries {
		rows[len(entries)-1-i] = listRow{
			ID:           e.ID,
			Prompt:       e.ScenarioPrompt,
			Chosen:       e.ChosenText,
			WasCorrect:   e.WasCorrect,
			LegallySound: e.LegallySound,
			CreatedAt:    e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
		if e.WasCorrect {
			correct++
		}
		if e.LegallySound {
			sound++
		}
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %-9s  %-6s  %-20s  %s\n", "ID", "Outcome", "Legal", "Time", "Scenario")
	fmt.Printf("%-10s+-%-9s+-%-6s+-%-20s+-%s\n", "----------", "---------", "------", "--------------------", "--------------------")
	for _, r := range rows {
		outcome := "risky"
		if r.WasCorrect {
			outcome = "protected"
		}
		legal := "no"
		if r.LegallySound {
			legal = "yes"
		}
		fmt.Printf("%-10s  %-9s  %-6s  %-20s  %s\n", shortID(r.ID), outcome, legal, r.CreatedAt, truncate(r.Prompt, 48))
	}
	fmt.Printf("\n%d attempts, %d protected, %d legally safe\n", len(rows), correct, sound)
	return nil
}

// #endregion list-mode

// #region doc-mode

func runDocMode(ctx context.Context, store storage.Adapter, jsonOut bool) error {
	rec, found, err := incident.Load(ctx, store)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintln(os.Stderr, "no saved incident log")
		return nil
	}
	if jsonOut {
		return printJSON(rec)
	}

	for _, f := range incident.Fields() {
		v, _ := rec.Get(f)
		if v == "" {
			v = "-"
		}
		fmt.Printf("%-22s %s\n", f.Label()+":", v)
	}
	for _, f := range incident.Flags() {
		v, _ := rec.GetFlag(f)
		fmt.Printf("%-22s %t\n", f.Label()+":", v)
	}
	if !rec.UpdatedAt.IsZero() {
		fmt.Printf("\nUpdated: %s\n", rec.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// #endregion doc-mode

// #region helpers

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// #endregion helpers
