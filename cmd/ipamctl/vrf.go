package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ipamkit/pkg/nipap"
)

func init() {
	rootCmd.AddCommand(newVRFCmd())
}

func newVRFCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vrf <id>",
		Short: "Show the display metadata of a VRF",
		Long: `The vrf command looks up one VRF by id and prints the route
distinguisher and name used as its panel title.

Example:
  ipamctl vrf 0
  ipamctl vrf 3 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVRF(cmd.Context(), args)
		},
	}
}

func runVRF(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	_, client, err := setup()
	if err != nil {
		return err
	}

	v, err := client.VRF(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to look up VRF %d: %w", id, err)
	}
	if jsonOut {
		return printJSON(v)
	}

	info := nipap.GroupInfo(v)
	printInfo("%s\n", info.Title)
	printInfo("  ID: %d\n", v.ID)
	if v.RT != nil {
		printInfo("  RT: %s\n", *v.RT)
	}
	printInfo("  Name: %s\n", v.Name)
	if v.Description != "" {
		printInfo("  Description: %s\n", v.Description)
	}
	return nil
}
