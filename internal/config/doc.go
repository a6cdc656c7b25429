// Package config provides peel's configuration.
//
// # Preferences File
//
// FileConfig is an optional TOML file at $XDG_CONFIG_HOME/peel/config.toml
// (or ~/.config/peel/config.toml):
//
//	runtime      = "podman"  # default for --runtime
//	use_oci      = false     # default for --use-oci
//	json         = false     # default for --json
//	elevate_with = "sudo"    # program used to relaunch as root
//
// Flags given on the command line win over the file.
//
// # Application Config
//
// AppConfig combines the probe result with the resolved flags. The root
// command builds it once and puts it in a Store, which every command reads:
//
//	store := config.NewStore()
//	store.Initialize(config.AppConfig{Probe: result, JSON: true})
//	cfg := store.Get()
//
// A Store cannot be reassigned. Initializing it twice, or reading it before
// it is initialized, panics.
package config
