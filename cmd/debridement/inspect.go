package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/signalsfoundry/debridement/core"
)

func newInspectCmd() *cobra.Command {
	var advance time.Duration
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print a one-shot diagnostic report of every debris candidate",
		Long: "inspect loads the scenario, optionally ages it, and prints how close each " +
			"candidate is to removal. Nothing is deleted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			world, sum, err := loadWorld(ctx, cfg.Scenario, log)
			if err != nil {
				return err
			}
			if advance > 0 {
				if err := world.Advance(sum.Epoch.Add(advance), advance); err != nil {
					return err
				}
			}
			scanner, err := newScanner(cfg, log)
			if err != nil {
				return err
			}
			projections, err := scanner.Report(ctx, world)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), projections)
		},
	}
	cmd.Flags().DurationVar(&advance, "advance", 0, "age every vessel by this much simulation time first")
	return cmd
}

func writeReport(out io.Writer, projections []core.Projection) error {
	if len(projections) == 0 {
		_, err := fmt.Fprintln(out, "no debris candidates")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VESSEL\tID\tCATEGORY\tELIGIBLE\tDETAIL\tTIME LEFT (h)")
	for _, p := range projections {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\n",
			p.VesselName, p.VesselID, p.Category, p.Eligible, detail(p), hours(p.TimeLeft))
	}
	return tw.Flush()
}

func detail(p core.Projection) string {
	switch p.Category {
	case core.CategoryLanded:
		if !p.GeometryKnown {
			return "distance unknown"
		}
		return fmt.Sprintf("factor %.2f, %.0f m", p.DistanceFactor, p.Distance)
	case core.CategoryDecay:
		return fmt.Sprintf("%.2f atm-s, %.4f atm-s/orbit", p.TotalAtmosphereSeconds, p.AtmosphereSecondsPerOrbit)
	default:
		return ""
	}
}

func hours(seconds float64) string {
	if math.IsInf(seconds, 1) {
		return "never"
	}
	return fmt.Sprintf("%.2f", seconds/3600)
}
