package cmd

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/fudanglp/docker-layers/internal/app"
	"github.com/fudanglp/docker-layers/internal/errors"
	"github.com/fudanglp/docker-layers/internal/inspector"
	"github.com/fudanglp/docker-layers/internal/logging"
)

// writeJSON writes v indented, followed by a newline.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// inspectTarget resolves where target's layers come from, clears the
// escalation check for direct storage reads, and inspects it. File lists
// are filled in for every source that can produce them.
func inspectTarget(ctx context.Context, a *app.App, target string) (*inspector.ImageInfo, error) {
	if strings.TrimSpace(target) == "" {
		return nil, errors.ValidationError("an image reference or archive path is required")
	}

	cfg := a.Config()
	req := a.Request(target)

	src, err := inspector.Choose(a.FS, req)
	if err != nil {
		return nil, err
	}

	if src == inspector.SourceStorage {
		if err := a.Escalator().Ensure(ctx, req.Runtime, cfg.UseAPI); err != nil {
			return nil, err
		}
	}

	in, err := a.Inspectors(src, req)
	if err != nil {
		return nil, err
	}
	if c, ok := in.(io.Closer); ok {
		defer c.Close()
	}

	if src == inspector.SourceDaemon {
		logging.Debug("file lists are not available through the runtime API", "target", target)
		return in.Inspect(ctx, target)
	}
	return inspector.InspectAll(ctx, in, target)
}

// wrapOutput turns a failed write to the user's terminal into a PeelError.
func wrapOutput(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(errors.ExitGeneralError, "write output", err)
}
