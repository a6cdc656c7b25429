package probe

import (
	"context"

	"github.com/fudanglp/docker-layers/internal/errors"
	"github.com/fudanglp/docker-layers/internal/logging"
)

// Prober runs a platform's detectors against a host.
type Prober struct {
	Host     *Host
	Paths    Paths
	Platform Platform
}

// NewProber returns a Prober for the current host with default paths.
func NewProber() *Prober {
	return &Prober{
		Host:     NewHost(),
		Paths:    DefaultPaths(),
		Platform: CurrentPlatform(),
	}
}

// Probe runs every detector in order and collects the runtimes found.
// Detection failures are data, so Probe never returns an error; an empty
// result is a normal outcome.
func (p *Prober) Probe(ctx context.Context) Result {
	logging.Debug("probing container runtimes", "platform", p.Platform.Name())

	result := Result{Runtimes: []RuntimeInfo{}}
	for _, d := range p.Platform.Detectors() {
		info, ok := d.Detect(ctx, p.Host, p.Paths)
		if !ok {
			logging.Debug("runtime not found", "kind", d.Kind)
			continue
		}
		logging.Debug("runtime detected",
			"kind", info.Kind,
			"binary", info.BinaryPath,
			"storage_root", info.StorageRoot,
			"driver", info.StorageDriver,
			"can_read", info.CanRead,
			"running", info.IsRunning,
		)
		result.Runtimes = append(result.Runtimes, info)
	}

	if len(result.Runtimes) > 0 {
		first := 0
		result.Default = &first
	}
	return result
}

// Select applies a user's runtime override, returning a copy of r whose
// default is the first runtime of the requested kind. An empty override
// returns r unchanged.
func Select(r Result, override string) (Result, error) {
	if override == "" {
		return r, nil
	}

	kind, err := ParseRuntimeKind(override)
	if err != nil {
		return r, err
	}

	for i, rt := range r.Runtimes {
		if rt.Kind.Matches(kind) {
			selected := Result{
				Runtimes: append([]RuntimeInfo(nil), r.Runtimes...),
				Default:  &i,
			}
			logging.Debug("runtime override applied", "override", override, "index", i)
			return selected, nil
		}
	}
	return r, errors.RuntimeNotDetected(override)
}
