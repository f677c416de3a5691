package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/stripd/internal/registry"
	"github.com/desertthunder/stripd/internal/render"
	"github.com/desertthunder/stripd/internal/repositories"
	"github.com/desertthunder/stripd/internal/server"
	"github.com/desertthunder/stripd/internal/shared"
	"github.com/desertthunder/stripd/internal/sinks"
)

// Serve loads the configuration, restores the segments, then runs the render loop and the HTTP API until
// SIGINT or SIGTERM.
//
// Database, sink and listen failures abort startup. A missing or unreadable persisted configuration does not;
// the built-in defaults are used instead.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	if port := cmd.Int("port"); port > 0 {
		config.Server.Port = int(port)
	}
	if sink := cmd.String("sink"); sink != "" {
		config.Strip.Sink = sink
	}

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer db.Close()

	store := repositories.NewSegmentStore(repositories.NewBlobRepository(db), shared.WithLogger(r.logger, "component", "store"))
	reg := registry.New(store.Restore())

	sink, err := sinks.New(config.Strip, sinks.Options{Output: r.output, Logger: r.logger})
	if err != nil {
		return fmt.Errorf("failed to open pixel sink: %w", err)
	}
	defer sinks.Close(sink)

	clock := render.NewClock()
	loop := render.NewLoop(reg, sink, render.LoopOptions{
		Tick:                config.Render.Tick,
		OverrunWarnInterval: config.Render.OverrunWarnInterval,
		Clock:               clock,
		Diagnostics:         sinks.NewLogDiagnostics(shared.WithLogger(r.logger, "component", "sink"), time.Second, 5),
		Logger:              shared.WithLogger(r.logger, "component", "render"),
	})

	httpLogger := shared.WithLogger(r.logger, "component", "http")
	handler := server.NewConfigHandler(reg, store, config.Server.StrictPersist, httpLogger)
	router := server.NewRouter(handler, clock, server.OptionsFromConfig(config.Server, httpLogger))
	srv := server.NewServer(config.Server.Addr(), router, httpLogger)
	if err := srv.Listen(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("starting stripd",
		"addr", srv.Addr(),
		"sink", config.Strip.Sink,
		"pixels", sink.Len(),
		"segments", reg.Snapshot().Len(),
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		loop.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		watchConfiguration(ctx, reg, sink.Len(), shared.WithLogger(r.logger, "component", "registry"))
	}()

	err = srv.ListenAndServe(ctx)
	stop()
	wg.Wait()

	r.logger.Info("shutting down")
	return err
}

// watchConfiguration logs every configuration swap until ctx is done.
func watchConfiguration(ctx context.Context, reg *registry.Registry, stripLen int, logger *log.Logger) {
	changes := reg.Watch()
	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			snap := reg.Snapshot()
			logger.Info("configuration replaced", "version", reg.Version(), "segments", snap.Len(), "pixels", snap.TotalLength())
			if total := snap.TotalLength(); total > stripLen {
				logger.Warn("configuration is longer than the strip", "pixels", total, "strip", stripLen)
			}
		}
	}
}
