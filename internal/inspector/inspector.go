package inspector

import (
	"context"
)

// ImageInfo describes an image and its layers, oldest first.
type ImageInfo struct {
	Name         string      `json:"name"`
	Tag          string      `json:"tag"`
	Architecture string      `json:"architecture"`
	TotalSize    int64       `json:"total_size"`
	Layers       []LayerInfo `json:"layers"`
}

// LayerInfo describes one filesystem layer.
type LayerInfo struct {
	Digest    string      `json:"digest"`
	CreatedBy string      `json:"created_by"`
	Size      int64       `json:"size"`
	Files     []FileEntry `json:"files"`
}

// FileEntry is one path inside a layer. Whiteouts mark deletions of paths
// from lower layers.
type FileEntry struct {
	Path       string `json:"path"`
	Size       int64  `json:"size"`
	IsWhiteout bool   `json:"is_whiteout"`
}

// Inspector reads image metadata and layer contents from one source.
type Inspector interface {
	// Inspect returns the image's metadata and layer list. Layer file lists
	// are left empty; use ListFiles to fill them.
	Inspect(ctx context.Context, ref string) (*ImageInfo, error)

	// ListFiles returns the entries of a layer returned by Inspect.
	ListFiles(ctx context.Context, layer LayerInfo) ([]FileEntry, error)
}

// InspectAll inspects ref and fills in every layer's file list.
func InspectAll(ctx context.Context, in Inspector, ref string) (*ImageInfo, error) {
	info, err := in.Inspect(ctx, ref)
	if err != nil {
		return nil, err
	}
	for i := range info.Layers {
		files, err := in.ListFiles(ctx, info.Layers[i])
		if err != nil {
			return nil, err
		}
		info.Layers[i].Files = files
	}
	return info, nil
}
