package probe

import (
	"context"
	"path/filepath"

	"github.com/fudanglp/docker-layers/internal/logging"
)

// Paths holds the well-known locations the detectors inspect.
type Paths struct {
	DockerRoot   string
	DockerSocket string

	PodmanRoot string
	// PodmanRootlessRoot is relative to $HOME.
	PodmanRootlessRoot string

	ContainerdRoot string
}

// DefaultPaths returns the standard Linux locations.
func DefaultPaths() Paths {
	return Paths{
		DockerRoot:         "/var/lib/docker",
		DockerSocket:       "/var/run/docker.sock",
		PodmanRoot:         "/var/lib/containers/storage",
		PodmanRootlessRoot: ".local/share/containers/storage",
		ContainerdRoot:     "/var/lib/containerd",
	}
}

// Detector looks for one runtime. It reports false when the runtime's
// binary is absent and never fails on environmental conditions.
type Detector struct {
	Kind   RuntimeKind
	Detect func(ctx context.Context, h *Host, p Paths) (RuntimeInfo, bool)
}

// Detectors in default-priority order.
var (
	DockerDetector     = Detector{Kind: KindDocker, Detect: detectDocker}
	PodmanDetector     = Detector{Kind: KindPodman, Detect: detectPodman}
	ContainerdDetector = Detector{Kind: KindContainerd, Detect: detectContainerd}
)

func detectDocker(ctx context.Context, h *Host, p Paths) (RuntimeInfo, bool) {
	binary, ok := h.FindBinary("docker")
	if !ok {
		return RuntimeInfo{}, false
	}

	// `docker info` needs the docker group or root; the socket existing is
	// enough to call the daemon running.
	running := h.CheckDaemon(ctx, "docker", "info") || h.FS.Exists(p.DockerSocket)

	return RuntimeInfo{
		Kind:          KindDocker,
		BinaryPath:    binary,
		StorageRoot:   p.DockerRoot,
		StorageDriver: detectStorageDriver(ctx, h, running, dockerDriverQuery, p.DockerRoot),
		CanRead:       h.CheckReadAccess(p.DockerRoot),
		IsRunning:     running,
	}, true
}

func detectPodman(ctx context.Context, h *Host, p Paths) (RuntimeInfo, bool) {
	binary, ok := h.FindBinary("podman")
	if !ok {
		return RuntimeInfo{}, false
	}
	running := h.CheckDaemon(ctx, "podman", "info")

	root := p.PodmanRoot
	if !h.CheckReadAccess(root) {
		home, ok := h.Env.LookupEnv("HOME")
		if !ok || home == "" {
			logging.Debug("podman system storage unreadable and HOME unset, skipping")
			return RuntimeInfo{}, false
		}
		root = filepath.Join(home, p.PodmanRootlessRoot)
	}

	return RuntimeInfo{
		Kind:          KindPodman,
		BinaryPath:    binary,
		StorageRoot:   root,
		StorageDriver: detectStorageDriver(ctx, h, running, podmanDriverQuery, root),
		CanRead:       h.CheckReadAccess(root),
		IsRunning:     running,
	}, true
}

func detectContainerd(ctx context.Context, h *Host, p Paths) (RuntimeInfo, bool) {
	binary, ok := h.FindBinary("ctr")
	if !ok {
		return RuntimeInfo{}, false
	}

	return RuntimeInfo{
		Kind:        KindContainerd,
		BinaryPath:  binary,
		StorageRoot: p.ContainerdRoot,
		// Not probed: containerd's default snapshotter is overlayfs.
		StorageDriver: DriverOverlay2,
		CanRead:       h.CheckReadAccess(p.ContainerdRoot),
		IsRunning:     h.CheckDaemon(ctx, "ctr", "version"),
	}, true
}
