package adapters

import (
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"ndk-build/internal/ports"
	"ndk-build/internal/types"
)

type BuildSpecFileAdapter struct{}

func NewBuildSpecFileAdapter() BuildSpecFileAdapter {
	return BuildSpecFileAdapter{}
}

// LoadBuildSpec reads a YAML build description. Relative paths in the file
// are resolved against the directory containing it.
func (a BuildSpecFileAdapter) LoadBuildSpec(path string) (types.BuildSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.BuildSpec{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("build spec file not found").
			WithCause(err)
	}
	var spec types.BuildSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return types.BuildSpec{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse build spec yaml").
			WithCause(err)
	}

	base := filepath.Dir(path)
	spec.BuildDir = resolveRelative(base, spec.BuildDir)
	spec.Assets = resolveRelative(base, spec.Assets)
	spec.Resources = resolveRelative(base, spec.Resources)
	spec.RuntimeLibs = resolveRelative(base, spec.RuntimeLibs)
	spec.Key.Path = resolveRelative(base, spec.Key.Path)
	for i := range spec.Libraries {
		spec.Libraries[i].Path = resolveRelative(base, spec.Libraries[i].Path)
	}
	for i := range spec.SearchPaths {
		spec.SearchPaths[i] = resolveRelative(base, spec.SearchPaths[i])
	}
	return spec, nil
}

func resolveRelative(base string, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

var _ ports.BuildSpecPort = BuildSpecFileAdapter{}
