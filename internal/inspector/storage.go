package inspector

import (
	"context"
	"fmt"

	"github.com/fudanglp/docker-layers/internal/errors"
	"github.com/fudanglp/docker-layers/internal/probe"
)

// StorageInspector reads layers straight from a runtime's storage root.
// Reading requires the access the escalation controller arranges.
type StorageInspector struct {
	Runtime probe.RuntimeInfo
}

// NewStorageInspector returns an inspector for rt's storage.
func NewStorageInspector(rt probe.RuntimeInfo) *StorageInspector {
	return &StorageInspector{Runtime: rt}
}

func (s *StorageInspector) Inspect(ctx context.Context, ref string) (*ImageInfo, error) {
	return nil, s.unavailable()
}

func (s *StorageInspector) ListFiles(ctx context.Context, layer LayerInfo) ([]FileEntry, error) {
	return nil, s.unavailable()
}

func (s *StorageInspector) unavailable() error {
	return errors.NotAvailable(fmt.Sprintf("direct %s storage inspection (%s)", s.Runtime.Kind, s.Runtime.StorageDriver))
}
