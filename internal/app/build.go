package app

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ndk-build/internal/core"
	"ndk-build/internal/shared"
	"ndk-build/internal/types"
)

// Build creates, fills, aligns and signs the package described by the
// request.
func (s Service) Build(ctx context.Context, req BuildRequest) (BuildResult, error) {
	spec := req.Spec
	if err := validateSpec(spec); err != nil {
		return BuildResult{}, err
	}
	if strings.TrimSpace(spec.Key.Path) == "" {
		return BuildResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("signing key path is required")
	}
	libraries, err := parseLibraries(spec.Libraries)
	if err != nil {
		return BuildResult{}, err
	}
	if len(libraries) == 0 {
		return BuildResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one library is required")
	}
	if spec.Manifest.LibName() == "" {
		spec.Manifest = spec.Manifest.WithLibName(libName(libraries[0].path))
	}
	ctx = withBuildID(ctx)

	unaligned, err := core.CreateAPK(ctx, s.buildConfig(spec))
	if err != nil {
		return BuildResult{}, err
	}
	var targets []types.Target
	seen := map[types.Target]struct{}{}
	for _, lib := range libraries {
		if err := unaligned.AddLibRecursively(ctx, lib.path, lib.target, spec.SearchPaths); err != nil {
			return BuildResult{}, err
		}
		if _, ok := seen[lib.target]; !ok {
			seen[lib.target] = struct{}{}
			targets = append(targets, lib.target)
		}
	}
	if spec.RuntimeLibs != "" {
		for _, target := range targets {
			if err := unaligned.AddRuntimeLibs(ctx, spec.RuntimeLibs, target, spec.SearchPaths); err != nil {
				return BuildResult{}, err
			}
		}
	}
	staged := unaligned.PendingLibs()

	unsigned, err := unaligned.AddPendingLibsAndAlign(ctx)
	if err != nil {
		return BuildResult{}, err
	}
	apk, err := unsigned.Sign(ctx, spec.Key)
	if err != nil {
		return BuildResult{}, err
	}
	digest, err := shared.FileDigest(apk.Path())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return BuildResult{}, types.IOPathError(apk.Path(), err)
	}
	zerolog.Ctx(ctx).Info().
		Str("apk", apk.Path()).
		Int("libraries", len(staged)).
		Str("blake3", digest).
		Msg("apk built")
	return BuildResult{APK: apk, Libraries: staged, Digest: digest}, nil
}

func (s Service) buildConfig(spec types.BuildSpec) core.BuildConfig {
	return core.BuildConfig{
		Toolchain:              s.Toolchain,
		ManifestWriter:         s.ManifestWriter,
		BuildDir:               spec.BuildDir,
		APKName:                spec.APKName,
		Assets:                 spec.Assets,
		Resources:              spec.Resources,
		Manifest:               spec.Manifest,
		DisableAaptCompression: spec.DisableAaptCompression,
		Strip:                  spec.Strip,
		ReversePortForward:     spec.ReversePortForward,
	}
}

func validateSpec(spec types.BuildSpec) error {
	if strings.TrimSpace(spec.BuildDir) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("build directory is required")
	}
	if strings.TrimSpace(spec.APKName) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("apk name is required")
	}
	if strings.TrimSpace(spec.Manifest.Package) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("manifest package is required")
	}
	return nil
}

type library struct {
	path   string
	target types.Target
}

func parseLibraries(inputs []types.LibraryInput) ([]library, error) {
	libraries := make([]library, 0, len(inputs))
	for _, input := range inputs {
		if strings.TrimSpace(input.Path) == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("library path is empty")
		}
		target, err := types.ParseTarget(input.Target)
		if err != nil {
			return nil, err
		}
		libraries = append(libraries, library{path: input.Path, target: target})
	}
	return libraries, nil
}

// libName turns libfoo.so into foo.
func libName(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), ".so")
	return strings.TrimPrefix(name, "lib")
}

// withBuildID tags every log line of one pipeline run.
func withBuildID(ctx context.Context) context.Context {
	logger := zerolog.Ctx(ctx).With().Str("build_id", uuid.NewString()).Logger()
	return logger.WithContext(ctx)
}
