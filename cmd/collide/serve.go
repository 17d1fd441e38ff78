package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/collide/engine"
	"github.com/lixenwraith/collide/event"
	"github.com/lixenwraith/collide/network"
	"github.com/lixenwraith/collide/observability"
	"github.com/lixenwraith/collide/service"
	"github.com/lixenwraith/collide/status"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a headless world and stream it over websocket",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Server.Address = serveAddr
		}
		if cfg.Server.Address == "" {
			return errors.New("serve requires a listen address")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address, overrides server.address")
	rootCmd.AddCommand(serveCmd)
}

// runServe blocks until ctx is cancelled or the runner fails
func runServe(ctx context.Context) error {
	logger := observability.GetLogger()

	// The network broadcaster is the only queue consumer on this host
	metrics := status.NewRegistry()
	queue := event.NewQueue()
	queue.Instrument(metrics)
	world, err := buildWorld(cfg, queue, logger)
	if err != nil {
		return err
	}
	defer world.Dispose()

	runner := engine.NewRunner(world, engine.NewTimeProvider(), cfg.Sandbox.FrameInterval, logger.Named("runner"))
	runner.Instrument(metrics)

	hub := service.NewHub(logger)
	netSvc := network.NewService()
	if err := hub.Register(netSvc); err != nil {
		return err
	}
	if err := hub.InitAll(cfg.Server, runner, queue, metrics, logger); err != nil {
		return fmt.Errorf("init services: %w", err)
	}
	if err := hub.StartAll(); err != nil {
		return fmt.Errorf("start services: %w", err)
	}
	defer func() {
		if err := hub.StopAll(); err != nil {
			logger.Warn("service shutdown incomplete", zap.Error(err))
		}
	}()

	if srv := netSvc.Server(); srv != nil {
		logger.Info("serving", zap.String("addr", srv.Addr()), zap.String("path", cfg.Server.Path))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// A disposed world ends Run cleanly; release the waiter too
		defer cancel()
		return runner.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return nil
	})
	return g.Wait()
}
