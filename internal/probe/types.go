package probe

import (
	"fmt"
	"strings"

	"github.com/fudanglp/docker-layers/internal/errors"
)

// RuntimeKind identifies a supported container runtime
type RuntimeKind string

const (
	KindDocker     RuntimeKind = "docker"
	KindPodman     RuntimeKind = "podman"
	KindContainerd RuntimeKind = "containerd"
)

// ValidRuntimeNames lists the names accepted by ParseRuntimeKind, for messages.
const ValidRuntimeNames = "docker, podman, containerd"

// ParseRuntimeKind resolves a user supplied runtime name, ignoring case.
// "ctr" is accepted as an alias for containerd.
func ParseRuntimeKind(name string) (RuntimeKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "docker":
		return KindDocker, nil
	case "podman":
		return KindPodman, nil
	case "containerd", "ctr":
		return KindContainerd, nil
	default:
		return "", errors.UnknownRuntime(name, ValidRuntimeNames)
	}
}

// Matches reports whether both kinds name the same runtime.
func (k RuntimeKind) Matches(other RuntimeKind) bool {
	return k == other
}

// Name returns the lowercase CLI name.
func (k RuntimeKind) Name() string {
	return string(k)
}

func (k RuntimeKind) String() string {
	switch k {
	case KindDocker:
		return "Docker"
	case KindPodman:
		return "Podman"
	case KindContainerd:
		return "containerd"
	default:
		return string(k)
	}
}

// MarshalText encodes the kind by variant name, e.g. "Containerd".
func (k RuntimeKind) MarshalText() ([]byte, error) {
	switch k {
	case KindDocker:
		return []byte("Docker"), nil
	case KindPodman:
		return []byte("Podman"), nil
	case KindContainerd:
		return []byte("Containerd"), nil
	default:
		return nil, fmt.Errorf("unknown runtime kind %q", string(k))
	}
}

// StorageDriver is the on-disk layer format used by a runtime
type StorageDriver string

const (
	DriverOverlay2 StorageDriver = "overlay2"
	DriverFuse     StorageDriver = "fuse-overlayfs"
	DriverBtrfs    StorageDriver = "btrfs"
	DriverZfs      StorageDriver = "zfs"
	DriverVfs      StorageDriver = "vfs"
	DriverUnknown  StorageDriver = "unknown"
)

// ParseStorageDriver normalizes a driver name reported by a daemon.
// Unrecognized names map to DriverUnknown.
func ParseStorageDriver(s string) StorageDriver {
	switch s {
	case "overlay2", "overlay":
		return DriverOverlay2
	case "fuse-overlayfs":
		return DriverFuse
	case "btrfs":
		return DriverBtrfs
	case "zfs":
		return DriverZfs
	case "vfs":
		return DriverVfs
	default:
		return DriverUnknown
	}
}

func (d StorageDriver) String() string {
	return string(d)
}

var driverVariants = map[StorageDriver]string{
	DriverOverlay2: "Overlay2",
	DriverFuse:     "Fuse",
	DriverBtrfs:    "Btrfs",
	DriverZfs:      "Zfs",
	DriverVfs:      "Vfs",
	DriverUnknown:  "Unknown",
}

// MarshalText encodes the driver by variant name, e.g. "Fuse".
func (d StorageDriver) MarshalText() ([]byte, error) {
	if v, ok := driverVariants[d]; ok {
		return []byte(v), nil
	}
	return []byte(driverVariants[DriverUnknown]), nil
}

// RuntimeInfo describes one detected runtime.
// CanRead and IsRunning are snapshots taken at probe time.
type RuntimeInfo struct {
	Kind          RuntimeKind   `json:"kind"`
	BinaryPath    string        `json:"binary_path"`
	StorageRoot   string        `json:"storage_root"`
	StorageDriver StorageDriver `json:"storage_driver"`
	CanRead       bool          `json:"can_read"`
	IsRunning     bool          `json:"is_running"`
}

// Result is the outcome of probing the host.
type Result struct {
	// Runtimes are in detection order: Docker, Podman, containerd.
	Runtimes []RuntimeInfo `json:"runtimes"`

	// Default indexes Runtimes; nil when nothing was detected.
	Default *int `json:"default"`
}

// DefaultRuntime returns the runtime direct-storage operations use.
func (r Result) DefaultRuntime() (RuntimeInfo, bool) {
	if r.Default == nil || *r.Default < 0 || *r.Default >= len(r.Runtimes) {
		return RuntimeInfo{}, false
	}
	return r.Runtimes[*r.Default], true
}

// IsDefault reports whether i is the default index.
func (r Result) IsDefault(i int) bool {
	return r.Default != nil && *r.Default == i
}
