package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ritzau/campus-nav/pkg/campus"
	"github.com/ritzau/campus-nav/pkg/config"
	"github.com/ritzau/campus-nav/pkg/finder"
	"github.com/ritzau/campus-nav/pkg/floorplan"
	"github.com/ritzau/campus-nav/pkg/logging"
	"github.com/ritzau/campus-nav/pkg/metrics"
	"github.com/ritzau/campus-nav/pkg/navigation"
	"github.com/ritzau/campus-nav/pkg/pubsub"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "campus-nav",
		Short:         "Indoor navigation across the floors of a campus",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.String("config", "", "config file (default "+config.DefaultFile+" if present)")
	f.String("maps", "static", "directory holding the floor plan SVGs")
	f.StringSlice("floors", nil, "floors in order, bottom to top")
	f.String("pattern", "Floor_%s.svg", "floor plan file name, %s is the floor")
	f.String("rooms", "", "YAML room directory (default: rooms found on the floor plans)")
	f.String("linking", "exact", "inter-floor linking: exact or proximity")
	f.String("weighting", "distance", "edge weights: distance or cost")
	f.String("heuristic", "euclidean", "search heuristic: euclidean or manhattan")
	f.Bool("cardinal", false, "forbid diagonal moves within a floor")
	f.CountP("verbose", "v", "increase log verbosity (-v debug, -vv trace)")
	f.String("verbosity", "", "log level: trace, debug, info, warn or error")
	f.Bool("log-json", false, "log as JSON")

	root.AddCommand(newServeCmd(), newRouteCmd(), newInspectCmd())
	return root
}

// setup loads the configuration and applies its logging settings.
func setup(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cmd.Flags(), path)
	if err != nil {
		return nil, err
	}

	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	if cfg.LogJSON {
		logging.SetJSONOutput(level)
	} else {
		logging.SetLevel(level)
	}
	return cfg, nil
}

// newRunner wires a runner over the floor plans on disk.
func newRunner(cfg *config.Config, svc *navigation.Service, pub pubsub.Publisher, reg *metrics.Registry) (*campus.Runner, error) {
	search, err := cfg.SearchOptions()
	if err != nil {
		return nil, err
	}
	opts := campus.Options{
		Floors: cfg.FloorList(),
		Graph:  cfg.GraphOptions(),
		Search: search,
		Rooms:  cfg.Rooms,
	}
	return campus.NewRunner(opts, floorplan.NewFileSource(cfg.Maps, cfg.Pattern), svc, pub, reg), nil
}

// buildOnce builds the campus for one-shot commands.
func buildOnce(ctx context.Context, cfg *config.Config) (*navigation.Service, *navigation.Snapshot, error) {
	svc := navigation.NewService(nil)
	runner, err := newRunner(cfg, svc, nil, nil)
	if err != nil {
		return nil, nil, err
	}
	snap, err := runner.Build(ctx, "command line")
	if err != nil {
		return nil, nil, err
	}
	return svc, snap, nil
}

// unconfiguredFloorPlans returns floor plans on disk that no configured
// floor refers to.
func unconfiguredFloorPlans(cfg *config.Config) ([]finder.FloorPlanFile, error) {
	files, err := finder.FindFloorPlans(cfg.Maps, cfg.Pattern)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", cfg.Maps, err)
	}
	return finder.Unconfigured(files, cfg.FloorList()), nil
}
