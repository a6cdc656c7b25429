package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fudanglp/docker-layers/internal/app"
	"github.com/fudanglp/docker-layers/internal/ui"
)

func newInspectCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <image>",
		Short: "Inspect layers of a container image",
		Long: `Inspect layers of a container image.

The image is a reference known to the selected runtime, or a path to a
tar archive written by "docker save".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd.Context(), a, args[0])
		},
	}
}

func runInspect(ctx context.Context, a *app.App, target string) error {
	info, err := inspectTarget(ctx, a, target)
	if err != nil {
		return err
	}

	if a.Config().JSON {
		return wrapOutput(writeJSON(a.Out, info))
	}
	_, err = fmt.Fprint(a.Out, ui.Image(info))
	return wrapOutput(err)
}
