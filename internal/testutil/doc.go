// Package testutil builds fake hosts for tests.
//
// A Host is a temp dir holding a bin directory, storage roots and a config
// home. Stub executables placed in the bin directory are found both by
// the probe's PATH search and by os/exec, so detection runs end to end
// without a real container runtime:
//
//	h := testutil.NewHost(t)
//	h.Stub("docker", `echo overlay2`)
//	h.StorageRoot(probe.KindDocker, "overlay2")
//	result := h.Prober().Probe(ctx)
//
// TOML config fixtures are embedded and can be installed at the default
// config path with InstallConfig.
package testutil
