// Package app provides the application context for peel.
//
// An App bundles the configuration store, the runtime prober, the
// escalation controller and the inspector factory so commands can be
// exercised against fakes:
//
//	a := app.New(app.WithHost(host), app.WithOutput(&out, &errOut))
//
// Nothing here is global; main builds one App per process.
package app
