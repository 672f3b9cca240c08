package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"kycgate/internal/platform/health"
)

type healthReport struct {
	Status    *health.StatusResponse    `json:"status"`
	Readiness *health.ReadinessResponse `json:"readiness"`
}

func newHealthCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server status and dependency readiness",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := root.client()
			status, err := c.Status(cmd.Context())
			if err != nil {
				return err
			}
			ready, err := c.Readiness(cmd.Context())
			if err != nil {
				return err
			}
			report := healthReport{Status: status, Readiness: ready}
			if root.output != outputTable {
				return encode(cmd.OutOrStdout(), root.output, report)
			}
			renderHealth(cmd.OutOrStdout(), report)
			if ready.Status == health.StatusNotReady {
				return fmt.Errorf("server is %s", ready.Status)
			}
			return nil
		},
	}
}

func renderHealth(w io.Writer, r healthReport) {
	fmt.Fprintf(w, "%s %s (%s), up %ds\n\n", r.Status.Status, r.Status.Version, r.Status.Environment, r.Status.UptimeSeconds)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Dependency", "State"})
	for _, name := range slices.Sorted(maps.Keys(r.Readiness.Checks)) {
		state := r.Readiness.Checks[name]
		switch {
		case strings.HasPrefix(state, "up"):
			state = color.GreenString(state)
		case strings.HasPrefix(state, "degraded"):
			state = color.YellowString(state)
		default:
			state = color.RedString(state)
		}
		table.Append([]string{name, state})
	}
	table.Render()
}
