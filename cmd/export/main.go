package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/danielpatrickdp/stopcoach/internal/config"
	"github.com/danielpatrickdp/stopcoach/internal/incident"
	"github.com/danielpatrickdp/stopcoach/internal/logging"
	"github.com/danielpatrickdp/stopcoach/internal/storage"
)

// #region main

func main() {
	fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
	toStdout := fs.Bool("stdout", false, "print the report instead of writing a file")
	cfg, err := config.Parse(fs, os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "usage: export [--db path] [--export-dir dir] [--stdout]: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg, *toStdout); err != nil {
		config.Exitf("error: %v", err)
	}
}

// #endregion main

// #region export

func run(cfg config.Config, toStdout bool) error {
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

	rec, found, err := incident.Load(context.Background(), store)
	if err != nil {
		return err
	}
	if !found {
		logger.Warn("no saved incident log, exporting an empty report", "db", cfg.DBPath)
	}

	now := time.Now()
	if toStdout {
		_, err := fmt.Print(incident.ExportText(rec, now))
		return err
	}
	path, err := incident.WriteExport(cfg.ExportDir, rec, now)
	if err != nil {
		return err
	}
	logger.Info("incident log exported", "path", path)
	fmt.Println(path)
	return nil
}

// #endregion export
