package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fudanglp/docker-layers/internal/app"
	"github.com/fudanglp/docker-layers/internal/config"
	"github.com/fudanglp/docker-layers/internal/logging"
	"github.com/fudanglp/docker-layers/internal/probe"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	runtime    string
	jsonOutput bool
	useOCI     bool
	verbose    bool
	configPath string
}

// NewRootCmd builds the peel command tree around a.
func NewRootCmd(a *app.App) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "peel [image]",
		Short: "A container image layer inspection tool",
		Long: `peel inspects the layers of container images.

It finds the container runtimes installed on this host (Docker, Podman,
containerd) and reads image layers straight from their storage. When that
storage needs root, peel offers to re-run itself with sudo, or you can pass
--use-oci to go through the runtime API instead.

An image may also be a path to a "docker save" archive.`,
		Example: `  peel probe
  peel alpine:3.19
  peel inspect --use-oci nginx
  peel report ./image.tar`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initialize(cmd, a)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runInspect(cmd.Context(), a, args[0])
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.runtime, "runtime", "", "Override runtime selection ("+probe.ValidRuntimeNames+")")
	flags.BoolVar(&opts.jsonOutput, "json", false, "Output as JSON")
	flags.BoolVar(&opts.useOCI, "use-oci", false, "Use the runtime API instead of direct storage access (no root needed, slower)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	flags.StringVar(&opts.configPath, "config", "", "Path to the config file (default $XDG_CONFIG_HOME/peel/config.toml)")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetOut(a.Out)
	rootCmd.SetErr(a.ErrOut)

	rootCmd.AddCommand(
		newProbeCmd(a),
		newInspectCmd(a),
		newReportCmd(a),
	)
	return rootCmd
}

// initialize loads preferences, probes the host and fills the store. Flags
// given on the command line win over the config file.
func (o *rootOptions) initialize(cmd *cobra.Command, a *app.App) error {
	logging.Setup(o.verbose, o.jsonOutput, a.ErrOut)

	path := o.configPath
	if path == "" {
		path, _ = config.DefaultPath(a.Env)
	}
	file, err := config.Load(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("runtime") {
		o.runtime = file.Runtime
	}
	if !flags.Changed("json") {
		o.jsonOutput = file.JSON
	}
	if !flags.Changed("use-oci") {
		o.useOCI = file.UseOCI
	}
	logging.Setup(o.verbose, o.jsonOutput, a.ErrOut)

	result, err := probe.Select(a.Prober.Probe(cmd.Context()), o.runtime)
	if err != nil {
		return err
	}

	a.Store.Initialize(config.AppConfig{
		Probe:           result,
		JSON:            o.jsonOutput,
		RuntimeOverride: o.runtime,
		UseAPI:          o.useOCI,
		Verbose:         o.verbose,
		ElevateWith:     file.ElevateWith,
	})
	return nil
}

// Execute runs peel against the real host. Interrupts keep their default
// behaviour and end the process, except while `peel report` is serving.
func Execute() error {
	return NewRootCmd(app.New()).ExecuteContext(context.Background())
}
