package ports

import "ndk-build/internal/types"

// ManifestWriterPort serialises a manifest into a build directory.
type ManifestWriterPort interface {
	WriteManifest(dir string, manifest types.AndroidManifest) error
}
