package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fudanglp/docker-layers/internal/app"
	"github.com/fudanglp/docker-layers/internal/errors"
	"github.com/fudanglp/docker-layers/internal/report"
)

// interruptContext scopes signal handling to the serve loop, so Ctrl+C
// stops the server and peel exits normally.
var interruptContext = func(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

func newReportCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "report <image>",
		Short: "Serve an HTML report of an image's layers",
		Long: `Inspect an image and serve the result as an HTML page on a local port.

The server runs until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := inspectTarget(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			html, err := report.BuildImage(info)
			if err != nil {
				return errors.Wrap(errors.ExitGeneralError, "render report", err)
			}

			ctx, stop := interruptContext(cmd.Context())
			defer stop()
			return a.Serve(ctx, html, a.ErrOut)
		},
	}
}
