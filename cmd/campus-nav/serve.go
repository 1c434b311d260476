package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ritzau/campus-nav/pkg/logging"
	"github.com/ritzau/campus-nav/pkg/metrics"
	"github.com/ritzau/campus-nav/pkg/navigation"
	"github.com/ritzau/campus-nav/pkg/pubsub"
	"github.com/ritzau/campus-nav/pkg/web"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the navigation API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().String("host", "0.0.0.0", "listen host")
	cmd.Flags().Int("port", 5000, "listen port")
	cmd.Flags().Bool("watch", false, "rebuild when floor plans or the room file change")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.DefaultRegistry()
	svc := navigation.NewService(reg)
	pub := pubsub.NewSSEPublisher()
	pub.ConfigureTopic(pubsub.TopicCampusStatus, pubsub.TopicConfig{BufferSize: 10})
	pub.ConfigureTopic(pubsub.TopicDirectory, pubsub.TopicConfig{BufferSize: 1})

	runner, err := newRunner(cfg, svc, pub, reg)
	if err != nil {
		return err
	}

	if extra, err := unconfiguredFloorPlans(cfg); err != nil {
		logging.Warn("could not scan floor plans", "error", err)
	} else {
		for _, f := range extra {
			logging.Warn("floor plan not in configured floors", "path", f.Path, "floor", f.Floor)
		}
	}

	server := web.NewServer(web.Options{
		Service:   svc,
		Status:    runner,
		Publisher: pub,
		Metrics:   reg,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx, cfg.Addr())
	})
	g.Go(func() error {
		// The API answers 503 until the first build is in.
		if _, err := runner.Build(ctx, "startup"); err != nil {
			logging.Error("initial build failed", "error", err)
		}
		if !cfg.Watch {
			return nil
		}
		if err := runner.Watch(ctx, cfg.Maps, cfg.Pattern); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
