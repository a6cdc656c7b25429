package inspector

import (
	"archive/tar"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/moby/go-archive"
	"github.com/moby/go-archive/compression"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/fudanglp/docker-layers/internal/errors"
	"github.com/fudanglp/docker-layers/internal/logging"
)

const manifestEntry = "manifest.json"

// saveManifest is one image entry in a `docker save` manifest.json.
type saveManifest struct {
	Config   string   `json:"Config"`
	RepoTags []string `json:"RepoTags"`
	Layers   []string `json:"Layers"`
}

// ArchiveInspector reads images from a `docker save` tarball. It needs no
// daemon and no privileges. The tarball may itself be compressed.
type ArchiveInspector struct {
	Path string

	// layers maps layer digests from the last Inspect to archive entries.
	layers map[string]string
}

// NewArchiveInspector returns an inspector for the archive at path.
func NewArchiveInspector(path string) *ArchiveInspector {
	return &ArchiveInspector{Path: path}
}

func (a *ArchiveInspector) Inspect(ctx context.Context, ref string) (*ImageInfo, error) {
	sizes := make(map[string]int64)
	var manifestData []byte

	err := a.walk(ctx, func(name string, hdr *tar.Header, r io.Reader) (bool, error) {
		if hdr.Typeflag == tar.TypeReg {
			sizes[name] = hdr.Size
		}
		if name == manifestEntry {
			data, err := io.ReadAll(r)
			if err != nil {
				return false, err
			}
			manifestData = data
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if manifestData == nil {
		return nil, errors.InvalidArchive(a.Path, "no manifest.json, not a docker save archive", nil)
	}

	var manifests []saveManifest
	if err := json.Unmarshal(manifestData, &manifests); err != nil {
		return nil, errors.InvalidArchive(a.Path, "malformed manifest.json", err)
	}
	m, repoTag, err := a.pickImage(manifests, ref)
	if err != nil {
		return nil, err
	}

	configData, err := a.readEntry(ctx, cleanEntry(m.Config))
	if err != nil {
		return nil, err
	}
	var cfg ocispec.Image
	if err := json.Unmarshal(configData, &cfg); err != nil {
		return nil, errors.InvalidArchive(a.Path, "malformed image config "+m.Config, err)
	}
	if len(cfg.RootFS.DiffIDs) != len(m.Layers) {
		return nil, errors.InvalidArchive(a.Path,
			fmt.Sprintf("config lists %d layers but manifest has %d", len(cfg.RootFS.DiffIDs), len(m.Layers)), nil)
	}

	info := &ImageInfo{
		Architecture: cfg.Architecture,
		Layers:       make([]LayerInfo, 0, len(m.Layers)),
	}
	info.Name, info.Tag = a.imageName(repoTag)

	createdBy := layerCommands(cfg.History)
	a.layers = make(map[string]string, len(m.Layers))
	for i, entry := range m.Layers {
		entry = cleanEntry(entry)
		layer := LayerInfo{
			Digest: cfg.RootFS.DiffIDs[i].String(),
			Size:   sizes[entry],
			Files:  []FileEntry{},
		}
		if i < len(createdBy) {
			layer.CreatedBy = createdBy[i]
		}
		a.layers[layer.Digest] = entry
		info.TotalSize += layer.Size
		info.Layers = append(info.Layers, layer)
	}

	logging.Debug("inspected archive", "path", a.Path, "image", info.Name, "layers", len(info.Layers))
	return info, nil
}

func (a *ArchiveInspector) ListFiles(ctx context.Context, layer LayerInfo) ([]FileEntry, error) {
	entry, ok := a.layers[layer.Digest]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("layer %s is not in %s", layer.Digest, a.Path), nil)
	}

	var files []FileEntry
	found := false
	err := a.walk(ctx, func(name string, _ *tar.Header, r io.Reader) (bool, error) {
		if name != entry {
			return false, nil
		}
		found = true
		var err error
		files, err = listLayer(r)
		return true, err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.InvalidArchive(a.Path, "missing layer "+entry, nil)
	}
	return files, nil
}

// pickImage returns the manifest entry for ref. An archive holding a single
// image matches any ref.
func (a *ArchiveInspector) pickImage(manifests []saveManifest, ref string) (saveManifest, string, error) {
	if len(manifests) == 0 {
		return saveManifest{}, "", errors.InvalidArchive(a.Path, "manifest.json lists no images", nil)
	}
	for _, m := range manifests {
		for _, tag := range m.RepoTags {
			if tag == ref || sameImage(tag, ref) {
				return m, tag, nil
			}
		}
	}
	if len(manifests) == 1 {
		m := manifests[0]
		if len(m.RepoTags) > 0 {
			return m, m.RepoTags[0], nil
		}
		return m, "", nil
	}
	return saveManifest{}, "", errors.NotFound(fmt.Sprintf("image %q is not in %s", ref, a.Path), nil)
}

// imageName splits a repo tag, or names the image after the archive file.
func (a *ArchiveInspector) imageName(repoTag string) (string, string) {
	if name, tag, ok := splitReference(repoTag); ok {
		return name, tag
	}
	base := filepath.Base(a.Path)
	for _, ext := range []string{".gz", ".tgz", ".zst", ".xz", ".tar"} {
		base = strings.TrimSuffix(base, ext)
	}
	return base, ""
}

// walk calls fn for each archive entry until fn reports done.
func (a *ArchiveInspector) walk(ctx context.Context, fn func(name string, hdr *tar.Header, r io.Reader) (bool, error)) error {
	f, err := os.Open(a.Path)
	if err != nil {
		return errors.NotFound("cannot open image archive", err)
	}
	defer f.Close()

	stream, err := compression.DecompressStream(f)
	if err != nil {
		return errors.InvalidArchive(a.Path, "cannot decompress", err)
	}
	defer stream.Close()

	tr := tar.NewReader(stream)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := tr.Next()
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.InvalidArchive(a.Path, "corrupt tar stream", err)
		}
		done, err := fn(cleanEntry(hdr.Name), hdr, tr)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (a *ArchiveInspector) readEntry(ctx context.Context, entry string) ([]byte, error) {
	var data []byte
	err := a.walk(ctx, func(name string, _ *tar.Header, r io.Reader) (bool, error) {
		if name != entry {
			return false, nil
		}
		var err error
		data, err = io.ReadAll(r)
		return true, err
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, errors.InvalidArchive(a.Path, "missing "+entry, nil)
	}
	return data, nil
}

// listLayer lists a layer tarball. Directories are omitted. A whiteout is
// reported under the path it deletes; an opaque marker under its directory.
func listLayer(r io.Reader) ([]FileEntry, error) {
	stream, err := compression.DecompressStream(r)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	files := []FileEntry{}
	tr := tar.NewReader(stream)
	for {
		hdr, err := tr.Next()
		if stderrors.Is(err, io.EOF) {
			return files, nil
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag == tar.TypeDir {
			continue
		}

		name := cleanEntry(hdr.Name)
		dir, base := path.Split(name)
		switch {
		case base == archive.WhiteoutOpaqueDir:
			files = append(files, FileEntry{Path: strings.TrimSuffix(dir, "/"), IsWhiteout: true})
		case strings.HasPrefix(base, archive.WhiteoutMetaPrefix):
			// hardlink bookkeeping, not content
		case strings.HasPrefix(base, archive.WhiteoutPrefix):
			files = append(files, FileEntry{Path: dir + strings.TrimPrefix(base, archive.WhiteoutPrefix), IsWhiteout: true})
		default:
			files = append(files, FileEntry{Path: name, Size: hdr.Size})
		}
	}
}

// layerCommands returns the created_by of each history entry that produced
// a layer, oldest first.
func layerCommands(history []ocispec.History) []string {
	var out []string
	for _, h := range history {
		if !h.EmptyLayer {
			out = append(out, h.CreatedBy)
		}
	}
	return out
}

func cleanEntry(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}
