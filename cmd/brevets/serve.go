package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"brevets/internal/handler"
	"brevets/internal/signaler"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "run the control times HTTP API",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "host",
			Usage: "interface to listen on, all when empty",
		},
		&cli.StringFlag{
			Name:    "port",
			Value:   "8000",
			Usage:   "port to listen on",
			EnvVars: []string{"PORT"},
		},
		&cli.Float64Flag{
			Name:    "rate-limit",
			Value:   10,
			Usage:   "requests per second allowed per client, 0 disables limiting",
			EnvVars: []string{"BREVETS_RATE_LIMIT"},
		},
		&cli.IntFlag{
			Name:    "rate-burst",
			Value:   20,
			Usage:   "burst size of the per-client limiter",
			EnvVars: []string{"BREVETS_RATE_BURST"},
		},
		&cli.DurationFlag{
			Name:  "rate-idle",
			Value: 10 * time.Minute,
			Usage: "drop the limiter state of clients idle for this long, 0 keeps it forever",
		},
		&cli.DurationFlag{
			Name:  "read-header-timeout",
			Value: 5 * time.Second,
			Usage: "maximum time to read request headers",
		},
		&cli.DurationFlag{
			Name:  "shutdown-timeout",
			Value: 10 * time.Second,
			Usage: "grace period for in-flight requests on shutdown",
		},
	},
	Action: serve,
}

func serve(c *cli.Context) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	opts := handler.Options{
		Metrics:  handler.NewMetrics(reg),
		Gatherer: reg,
		Build:    buildInfo(),
	}
	if r := c.Float64("rate-limit"); r > 0 {
		opts.Limiter = handler.NewClientRateLimiter(rate.Limit(r), c.Int("rate-burst"))
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(c.String("host"), c.String("port")),
		Handler:           handler.NewRouter(opts),
		ReadHeaderTimeout: c.Duration("read-header-timeout"),
	}

	g, ctx := errgroup.WithContext(c.Context)
	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g.Go(func() error {
		slog.Info("brevets listening", "addr", srv.Addr, "version", Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		select {
		case sig := <-signaler.WaitForInterrupt():
			slog.Info("shutting down", "signal", sig.String())
		case <-ctx.Done():
		}
		stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Duration("shutdown-timeout"))
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if idle := c.Duration("rate-idle"); opts.Limiter != nil && idle > 0 {
		g.Go(func() error {
			return opts.Limiter.Run(ctx, idle/2, idle)
		})
	}
	return g.Wait()
}
