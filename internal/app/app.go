package app

import (
	"context"
	"io"
	"os"

	"github.com/fudanglp/docker-layers/internal/config"
	"github.com/fudanglp/docker-layers/internal/escalate"
	"github.com/fudanglp/docker-layers/internal/inspector"
	"github.com/fudanglp/docker-layers/internal/probe"
	"github.com/fudanglp/docker-layers/internal/report"
	"github.com/fudanglp/docker-layers/internal/system"
)

// ServeFunc serves a rendered report until ctx is cancelled.
type ServeFunc func(ctx context.Context, html string, w io.Writer) error

// App holds the application dependencies
type App struct {
	// Store holds the per-invocation configuration. Commands read it after
	// the root command's pre-run has initialized it.
	Store *config.Store

	// Prober detects container runtimes on the host.
	Prober *probe.Prober

	// Escalation, when set, replaces the controller built by Escalator.
	Escalation *escalate.Controller

	// Inspectors builds the inspector for a request.
	Inspectors inspector.Factory

	// Serve publishes the HTML report.
	Serve ServeFunc

	FS   system.FileSystem
	Env  system.Environment
	Exec system.CommandExecutor

	Out    io.Writer
	ErrOut io.Writer
}

// Option is a function that configures the App
type Option func(*App)

// WithStore sets the configuration store
func WithStore(s *config.Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithProber sets a custom prober
func WithProber(p *probe.Prober) Option {
	return func(a *App) {
		a.Prober = p
	}
}

// WithEscalation sets a fixed escalation controller
func WithEscalation(c *escalate.Controller) Option {
	return func(a *App) {
		a.Escalation = c
	}
}

// WithInspectors sets the inspector factory
func WithInspectors(f inspector.Factory) Option {
	return func(a *App) {
		a.Inspectors = f
	}
}

// WithServe sets the report server
func WithServe(f ServeFunc) Option {
	return func(a *App) {
		a.Serve = f
	}
}

// WithHost sets the filesystem, environment and executor seams
func WithHost(h *probe.Host) Option {
	return func(a *App) {
		a.FS = h.FS
		a.Env = h.Env
		a.Exec = h.Exec
	}
}

// WithOutput sets the writers for command output and diagnostics
func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) {
		a.Out = out
		a.ErrOut = errOut
	}
}

// New creates a new App with the given options. Anything not provided is
// backed by the real host.
func New(opts ...Option) *App {
	app := &App{}

	for _, opt := range opts {
		opt(app)
	}

	if app.Store == nil {
		app.Store = config.NewStore()
	}
	if app.FS == nil {
		app.FS = system.DefaultFS()
	}
	if app.Env == nil {
		app.Env = system.DefaultEnv()
	}
	if app.Exec == nil {
		app.Exec = system.DefaultExecutor()
	}
	if app.Prober == nil {
		app.Prober = probe.NewProber()
		app.Prober.Host = &probe.Host{Exec: app.Exec, FS: app.FS, Env: app.Env}
	}
	if app.Inspectors == nil {
		app.Inspectors = inspector.DefaultFactory(app.Env)
	}
	if app.Serve == nil {
		app.Serve = report.Serve
	}
	if app.Out == nil {
		app.Out = os.Stdout
	}
	if app.ErrOut == nil {
		app.ErrOut = os.Stderr
	}

	return app
}

// Config returns the initialized configuration.
func (a *App) Config() config.AppConfig {
	return a.Store.Get()
}

// Escalator returns the controller guarding direct storage reads, relaunching
// under the configured elevation program.
func (a *App) Escalator() *escalate.Controller {
	if a.Escalation != nil {
		return a.Escalation
	}
	tool := escalate.DefaultTool
	if a.Store.Initialized() {
		if t := a.Store.Get().ElevateWith; t != "" {
			tool = t
		}
	}
	c := escalate.NewController(escalate.NewToolRelauncher(tool, a.Exec))
	c.Out = a.ErrOut
	return c
}

// Request builds an inspector request for target from the configuration.
func (a *App) Request(target string) inspector.Request {
	cfg := a.Config()
	req := inspector.Request{Target: target, UseAPI: cfg.UseAPI}
	if rt, ok := cfg.DefaultRuntime(); ok {
		req.Runtime = &rt
	}
	return req
}
