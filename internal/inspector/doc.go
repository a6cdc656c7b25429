// Package inspector reads image metadata and layer contents.
//
// Three sources implement Inspector:
//
//   - ArchiveInspector reads a `docker save` tarball, plain or compressed.
//   - DaemonInspector asks the Docker or Podman engine API. It cannot list
//     layer files.
//   - StorageInspector reads a runtime's storage root directly. It is not
//     available yet and returns an error wrapping errdefs.ErrNotImplemented.
//
// Choose maps a Request to a Source; a Factory turns that into an Inspector.
package inspector
