package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ritzau/campus-nav/pkg/model"
	"github.com/ritzau/campus-nav/pkg/output"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Build the campus graph and report on it",
		Args:  cobra.NoArgs,
		RunE:  runInspect,
	}
	cmd.Flags().Bool("json", false, "print the snapshot summary as JSON")
	cmd.Flags().String("graph", "", "print the graph of one floor as JSON")
	return cmd
}

func runInspect(cmd *cobra.Command, _ []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	_, snap, err := buildOnce(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if floor, _ := cmd.Flags().GetString("graph"); floor != "" {
		if snap.Graph.FloorIndex(model.Floor(floor)) < 0 {
			return fmt.Errorf("unknown floor %q", floor)
		}
		return enc.Encode(snap.Graph.View(model.Floor(floor)))
	}
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return enc.Encode(snap.Summary())
	}

	output.PrintBuildReport(os.Stdout, snap.Report, snap.Graph.Components())
	extra, err := unconfiguredFloorPlans(cfg)
	if err != nil {
		return err
	}
	output.PrintUnconfigured(os.Stdout, extra)
	return nil
}
