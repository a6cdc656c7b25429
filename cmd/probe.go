package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fudanglp/docker-layers/internal/app"
	"github.com/fudanglp/docker-layers/internal/ui"
)

func newProbeCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Detect installed container runtimes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.Config()
			if cfg.JSON {
				return wrapOutput(writeJSON(a.Out, cfg.Probe))
			}
			_, err := fmt.Fprint(a.Out, ui.ProbeResult(cfg.Probe))
			return wrapOutput(err)
		},
	}
}
