package inspector

import (
	"github.com/containerd/errdefs"

	"github.com/fudanglp/docker-layers/internal/errors"
	"github.com/fudanglp/docker-layers/internal/logging"
	"github.com/fudanglp/docker-layers/internal/probe"
	"github.com/fudanglp/docker-layers/internal/system"
)

// Source identifies which inspector serves a request.
type Source int

const (
	SourceStorage Source = iota
	SourceArchive
	SourceDaemon
)

func (s Source) String() string {
	switch s {
	case SourceStorage:
		return "storage"
	case SourceArchive:
		return "archive"
	case SourceDaemon:
		return "daemon"
	default:
		return "unknown"
	}
}

// Request describes what the user asked to inspect.
type Request struct {
	// Target is an image reference or the path of a `docker save` archive.
	Target string

	// UseAPI selects the engine API over direct storage reads.
	UseAPI bool

	// Runtime is the selected default runtime, nil when none was detected.
	Runtime *probe.RuntimeInfo
}

// Choose picks the source for req: an existing file is an archive,
// otherwise the API or direct storage per UseAPI.
func Choose(fsys system.FileSystem, req Request) (Source, error) {
	switch {
	case fsys.IsRegular(req.Target):
		return SourceArchive, nil
	case req.UseAPI:
		return SourceDaemon, nil
	case req.Runtime == nil:
		return 0, &errors.PeelError{
			Code:    errors.ExitRuntimeNotFound,
			Message: "no container runtime detected. Run `peel probe` to check, or pass an image archive",
			Class:   errdefs.ErrNotFound,
		}
	default:
		return SourceStorage, nil
	}
}

// Factory builds inspectors. Tests replace it to avoid real daemons.
type Factory func(src Source, req Request) (Inspector, error)

// DefaultFactory returns the production Factory.
func DefaultFactory(env system.Environment) Factory {
	return func(src Source, req Request) (Inspector, error) {
		logging.Debug("selected inspector", "source", src, "target", req.Target)
		switch src {
		case SourceArchive:
			return NewArchiveInspector(req.Target), nil
		case SourceDaemon:
			var kind probe.RuntimeKind
			if req.Runtime != nil {
				kind = req.Runtime.Kind
			}
			return NewDaemonInspector(kind, env)
		default:
			return NewStorageInspector(*req.Runtime), nil
		}
	}
}
