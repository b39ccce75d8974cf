package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newSalvageCmd() *cobra.Command {
	var salvager string
	cmd := &cobra.Command{
		Use:   "salvage",
		Short: "Harvest loaded debris next to a vessel and print what was recovered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if salvager == "" {
				return errors.New("--vessel is required")
			}
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			world, _, err := loadWorld(ctx, cfg.Scenario, log)
			if err != nil {
				return err
			}
			scanner, err := newScanner(cfg, log)
			if err != nil {
				return err
			}
			res, err := scanner.Salvage(ctx, world, salvager)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "removed %d vessel(s)", len(res.Removed))
			if res.Failed > 0 {
				fmt.Fprintf(out, ", %d failed", res.Failed)
			}
			fmt.Fprintln(out)
			for _, r := range res.Recovered {
				fmt.Fprintf(out, "  %-16s %10.2f\n", r.Name, r.Amount)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&salvager, "vessel", "", "ID of the salvaging vessel")
	return cmd
}
