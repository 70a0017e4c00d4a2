package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

var (
	logLevel  string
	logFormat string
)

const defaultTimeout = 8 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("brevets failed", "err", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "brevets"
	app.Version = Version
	app.Usage = "ACP brevet control open and close times"
	app.EnableBashCompletion = true
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Value:       "info",
			Usage:       "minimum log level: debug, info, warn or error",
			EnvVars:     []string{"BREVETS_LOG_LEVEL"},
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Value:       "text",
			Usage:       "log output format: text or json",
			EnvVars:     []string{"BREVETS_LOG_FORMAT"},
			Destination: &logFormat,
		},
	}
	app.Before = func(c *cli.Context) error {
		return setupLogger(c.App.ErrWriter, logLevel, logFormat)
	}
	app.Commands = []*cli.Command{
		serveCommand,
		timesCommand,
		scheduleCommand,
		brevetsCommand,
	}
	return app
}

func setupLogger(w io.Writer, level, format string) error {
	if w == nil {
		w = os.Stderr
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	switch format {
	case "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	slog.SetDefault(slog.New(h))
	return nil
}
