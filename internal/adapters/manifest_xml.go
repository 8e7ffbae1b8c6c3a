package adapters

import (
	"encoding/xml"
	"os"
	"path/filepath"

	"ndk-build/internal/ports"
	"ndk-build/internal/types"
)

type ManifestXMLAdapter struct{}

func NewManifestXMLAdapter() ManifestXMLAdapter {
	return ManifestXMLAdapter{}
}

// WriteManifest writes AndroidManifest.xml into dir, adding the
// NativeActivity launcher entry.
func (a ManifestXMLAdapter) WriteManifest(dir string, manifest types.AndroidManifest) error {
	data, err := MarshalManifest(manifest)
	if err != nil {
		return types.IOError("failed to encode manifest", err)
	}
	path := filepath.Join(dir, types.ManifestFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return types.IOPathError(path, err)
	}
	return nil
}

func MarshalManifest(manifest types.AndroidManifest) ([]byte, error) {
	body, err := xml.MarshalIndent(manifest.WithNativeActivity(), "", "    ")
	if err != nil {
		return nil, err
	}
	data := append([]byte(xml.Header), body...)
	return append(data, '\n'), nil
}

var _ ports.ManifestWriterPort = ManifestXMLAdapter{}
