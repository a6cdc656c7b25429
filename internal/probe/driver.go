package probe

import (
	"context"

	"github.com/fudanglp/docker-layers/internal/logging"
	"github.com/fudanglp/docker-layers/internal/system"
)

// DriverProbe maps a storage-root subdirectory to the driver that creates it.
type DriverProbe struct {
	Dir    string
	Driver StorageDriver
}

// DriverProbeOrder is the order GuessStorageDriver checks subdirectories in.
// Several driver directories can coexist after a driver switch.
var DriverProbeOrder = []DriverProbe{
	{Dir: "overlay2", Driver: DriverOverlay2},
	{Dir: "fuse-overlayfs", Driver: DriverFuse},
	{Dir: "btrfs", Driver: DriverBtrfs},
	{Dir: "zfs", Driver: DriverZfs},
	{Dir: "vfs", Driver: DriverVfs},
}

// GuessStorageDriver infers the driver from which subdirectories exist under
// storageRoot. The first match in DriverProbeOrder wins.
func GuessStorageDriver(fsys system.FileSystem, storageRoot string) StorageDriver {
	if !fsys.CanList(storageRoot) {
		return DriverUnknown
	}
	for _, p := range DriverProbeOrder {
		dir, err := fsys.ResolveIn(storageRoot, p.Dir)
		if err != nil {
			logging.Debug("skipping driver directory", "root", storageRoot, "dir", p.Dir, "error", err)
			continue
		}
		if fsys.IsDir(dir) {
			return p.Driver
		}
	}
	return DriverUnknown
}

// driverQuery is the CLI invocation that prints a runtime's configured driver.
type driverQuery struct {
	cmd  string
	args []string
}

var (
	dockerDriverQuery = driverQuery{cmd: "docker", args: []string{"info", "--format", "{{.Driver}}"}}
	podmanDriverQuery = driverQuery{cmd: "podman", args: []string{"info", "--format", "{{.Store.GraphDriverName}}"}}
)

// daemonStorageDriver asks a running daemon for its driver.
func daemonStorageDriver(ctx context.Context, h *Host, q driverQuery) StorageDriver {
	out, ok := h.CommandOutput(ctx, q.cmd, q.args...)
	if !ok {
		return DriverUnknown
	}
	return ParseStorageDriver(out)
}

// detectStorageDriver asks the daemon when it is running and falls back to
// the directory heuristic otherwise.
func detectStorageDriver(ctx context.Context, h *Host, running bool, q driverQuery, storageRoot string) StorageDriver {
	if running {
		return daemonStorageDriver(ctx, h, q)
	}
	return GuessStorageDriver(h.FS, storageRoot)
}
