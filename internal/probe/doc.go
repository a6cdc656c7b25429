// Package probe detects the container runtimes installed on the host.
//
// Supported runtimes:
//   - Docker: binary "docker", storage under /var/lib/docker
//   - Podman: binary "podman", system or rootless storage
//   - containerd: binary "ctr", storage under /var/lib/containerd
//
// For each runtime found, probe records where its layers live, which storage
// driver wrote them, whether the daemon is up, and whether the current user
// can list the storage root directly:
//
//	result := probe.NewProber().Probe(ctx)
//	result, err := probe.Select(result, "podman")
//	rt, ok := result.DefaultRuntime()
//
// # Ordering
//
// Runtimes are reported in a fixed order, Docker, Podman, containerd, and the
// first one found is the default. Select moves the default to the first
// runtime of a requested kind.
//
// # Platforms
//
// Platform selects the detectors for the host. Only Linux exposes runtime
// storage on the host file system; on other systems the platform has no
// detectors and Probe returns an empty result.
//
// # Storage Drivers
//
// A running daemon is asked for its driver. Otherwise the storage root is
// searched for the subdirectories in DriverProbeOrder. containerd is always
// reported as overlay2.
//
// # Testing
//
// Host wraps the system package's CommandExecutor, FileSystem and
// Environment, so detectors run against system.MockExecutor and
// system.MockFS in tests.
package probe
