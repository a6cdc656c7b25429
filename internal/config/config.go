package config

import (
	"sync/atomic"

	"github.com/fudanglp/docker-layers/internal/probe"
)

// AppConfig is the configuration for one peel invocation. It is built once
// at startup from the probe result and the command line.
type AppConfig struct {
	// Probe is the probe result with any --runtime override applied.
	Probe probe.Result

	JSON            bool
	RuntimeOverride string

	// UseAPI selects the non-privileged API path over direct storage reads.
	UseAPI bool

	Verbose bool

	// ElevateWith is the program used to relaunch with root privileges.
	ElevateWith string
}

// DefaultRuntime returns the runtime direct-storage operations use.
func (c AppConfig) DefaultRuntime() (probe.RuntimeInfo, bool) {
	return c.Probe.DefaultRuntime()
}

// Store holds the AppConfig for the life of the process. It is assigned
// exactly once; both a second Initialize and a Get before Initialize are
// programming errors and panic.
type Store struct {
	value atomic.Pointer[AppConfig]
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Initialize sets the configuration. It panics if called more than once.
func (s *Store) Initialize(cfg AppConfig) {
	if !s.value.CompareAndSwap(nil, &cfg) {
		panic("config: Store initialized twice")
	}
}

// Get returns the configuration. It panics if Initialize has not run.
func (s *Store) Get() AppConfig {
	cfg := s.value.Load()
	if cfg == nil {
		panic("config: Store read before Initialize")
	}
	return *cfg
}

// Initialized reports whether Initialize has run.
func (s *Store) Initialized() bool {
	return s.value.Load() != nil
}
