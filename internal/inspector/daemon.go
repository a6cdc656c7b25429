package inspector

import (
	"context"
	_ "crypto/sha256" // digest.Parse needs sha256 registered
	"fmt"
	"path/filepath"

	"github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/opencontainers/go-digest"

	"github.com/fudanglp/docker-layers/internal/errors"
	"github.com/fudanglp/docker-layers/internal/logging"
	"github.com/fudanglp/docker-layers/internal/probe"
	"github.com/fudanglp/docker-layers/internal/system"
)

// imageAPI is the subset of the Docker Engine API client the daemon
// inspector uses.
type imageAPI interface {
	ImageInspect(ctx context.Context, imageID string, opts ...client.ImageInspectOption) (image.InspectResponse, error)
	ImageHistory(ctx context.Context, imageID string, opts ...client.ImageHistoryOption) ([]image.HistoryResponseItem, error)
	Close() error
}

// DaemonInspector reads image metadata through the runtime's Engine API
// socket. It needs no root, but the API does not expose layer contents.
type DaemonInspector struct {
	api imageAPI
}

// NewDaemonInspector connects to the API of the given runtime. Docker uses
// the standard DOCKER_HOST environment; Podman uses its Docker-compatible
// service socket. containerd has no Engine API.
func NewDaemonInspector(kind probe.RuntimeKind, env system.Environment) (*DaemonInspector, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}

	switch kind {
	case probe.KindDocker, "":
	case probe.KindPodman:
		if _, ok := env.LookupEnv("DOCKER_HOST"); !ok {
			opts = append(opts, client.WithHost(podmanSocket(env)))
		}
	default:
		return nil, errors.NotAvailable(fmt.Sprintf("API inspection for %s", kind))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, errors.Wrap(errors.ExitGeneralError, "create engine API client", err)
	}
	logging.Debug("using engine API", "runtime", kind, "host", cli.DaemonHost())
	return &DaemonInspector{api: cli}, nil
}

// podmanSocket returns the Podman API socket: the per-user one when
// XDG_RUNTIME_DIR is set, the system one otherwise.
func podmanSocket(env system.Environment) string {
	if dir, ok := env.LookupEnv("XDG_RUNTIME_DIR"); ok && dir != "" {
		return "unix://" + filepath.Join(dir, "podman", "podman.sock")
	}
	return "unix:///run/podman/podman.sock"
}

func (d *DaemonInspector) Inspect(ctx context.Context, ref string) (*ImageInfo, error) {
	resp, err := d.api.ImageInspect(ctx, ref)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil, errors.NotFound(fmt.Sprintf("image %q not found", ref), err)
		}
		return nil, errors.Wrap(errors.ExitGeneralError, fmt.Sprintf("inspect image %q", ref), err)
	}
	history, err := d.api.ImageHistory(ctx, ref)
	if err != nil {
		return nil, errors.Wrap(errors.ExitGeneralError, fmt.Sprintf("image history %q", ref), err)
	}

	info := &ImageInfo{
		Architecture: resp.Architecture,
		TotalSize:    resp.Size,
	}
	info.Name, info.Tag = daemonImageName(ref, resp.RepoTags)

	info.Layers = pairHistory(resp.RootFS.Layers, history)

	logging.Debug("inspected image through API", "ref", ref, "layers", len(info.Layers))
	return info, nil
}

// ListFiles is not possible over the API; layer tarballs are only available
// through a full image export.
func (d *DaemonInspector) ListFiles(ctx context.Context, layer LayerInfo) ([]FileEntry, error) {
	return nil, errors.NotAvailable("listing layer files through the engine API")
}

// Close releases the API connection.
func (d *DaemonInspector) Close() error {
	return d.api.Close()
}

func daemonImageName(ref string, repoTags []string) (string, string) {
	if _, err := digest.Parse(ref); err != nil {
		if name, tag, ok := splitReference(ref); ok {
			return name, tag
		}
	}
	// ref is an image ID; use the first tag the daemon knows
	for _, t := range repoTags {
		if name, tag, ok := splitReference(t); ok {
			return name, tag
		}
	}
	return ref, ""
}

// pairHistory matches layer digests, oldest first, with the history entries
// that created them. The API reports history newest first without marking
// empty layers, so entries with a non-zero size are taken as the layer
// producers. When their count does not match, sizes and commands are left
// out rather than attributed to the wrong layer.
func pairHistory(diffIDs []string, history []image.HistoryResponseItem) []LayerInfo {
	var producers []image.HistoryResponseItem
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Size > 0 {
			producers = append(producers, history[i])
		}
	}
	paired := len(producers) == len(diffIDs)
	if !paired {
		logging.Debug("history does not line up with layers", "layers", len(diffIDs), "sized_history", len(producers))
	}

	layers := make([]LayerInfo, 0, len(diffIDs))
	for i, id := range diffIDs {
		layer := LayerInfo{Digest: id, Files: []FileEntry{}}
		if paired {
			layer.CreatedBy = producers[i].CreatedBy
			layer.Size = producers[i].Size
		}
		layers = append(layers, layer)
	}
	return layers
}
