package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/ritzau/campus-nav/pkg/output"
)

func newRouteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route FROM TO",
		Short: "Print the route between two rooms",
		Args:  cobra.ExactArgs(2),
		RunE:  runRoute,
	}
	cmd.Flags().Bool("json", false, "print the route as JSON")
	return cmd
}

func runRoute(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	svc, _, err := buildOnce(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	res, err := svc.Navigate(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	output.PrintRoute(os.Stdout, args[0], args[1], res.Route)
	return nil
}
