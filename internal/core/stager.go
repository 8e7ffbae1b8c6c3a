package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"ndk-build/internal/types"
)

// StagedLibrarySet holds archive paths of libraries waiting to be added to
// the container.
type StagedLibrarySet struct {
	paths map[string]struct{}
}

func NewStagedLibrarySet() StagedLibrarySet {
	return StagedLibrarySet{paths: map[string]struct{}{}}
}

// Add records path and reports whether it was not staged before.
func (s *StagedLibrarySet) Add(path string) bool {
	if s.paths == nil {
		s.paths = map[string]struct{}{}
	}
	if _, ok := s.paths[path]; ok {
		return false
	}
	s.paths[path] = struct{}{}
	return true
}

func (s StagedLibrarySet) Contains(path string) bool {
	_, ok := s.paths[path]
	return ok
}

func (s StagedLibrarySet) Len() int {
	return len(s.paths)
}

// Paths returns the staged archive paths in lexical order.
func (s StagedLibrarySet) Paths() []string {
	paths := make([]string, 0, len(s.paths))
	for path := range s.paths {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// ArchivePath returns the path a library built for target takes inside
// the container. The device loader only understands '/' separators.
func ArchivePath(target types.Target, library string) string {
	return toArchiveSeparators(libPath(target, library))
}

func libPath(target types.Target, library string) string {
	return filepath.Join("lib", target.AndroidABI(), filepath.Base(library))
}

func toArchiveSeparators(path string) string {
	return strings.ReplaceAll(filepath.ToSlash(path), `\`, "/")
}

// AddLib copies library into the build directory according to the strip
// policy and stages it for the container.
func (a *UnalignedAPK) AddLib(ctx context.Context, library string, target types.Target) error {
	if a.consumed {
		return types.HandleConsumed("unaligned apk")
	}
	if target.AndroidABI() == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported target %q", target))
	}
	if _, err := os.Stat(library); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.PathNotFound(library)
		}
		return types.IOPathError(library, err)
	}
	src, err := filepath.Abs(library)
	if err != nil {
		return types.IOError("failed to resolve library path", err)
	}

	rel := libPath(target, src)
	out := filepath.Join(a.config.BuildDir, rel)
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return types.IOPathError(filepath.Dir(out), err)
	}

	if a.symbols.CopiesVerbatim() {
		if err := copyLibrary(src, out); err != nil {
			return err
		}
	} else {
		steps, err := a.symbols.Steps(src, out)
		if err != nil {
			return err
		}
		for _, step := range steps {
			if err := a.config.Toolchain.Objcopy(ctx, target, step.Dir, step.Args...); err != nil {
				return err
			}
		}
	}

	archive := toArchiveSeparators(rel)
	if a.pending.Add(archive) {
		log.Ctx(ctx).Debug().Str("library", archive).Msg("library staged")
	}
	return nil
}

// AddRuntimeLibs stages every shared library in root/<abi> together with
// the libraries they need that can be found in searchPaths.
func (a *UnalignedAPK) AddRuntimeLibs(ctx context.Context, root string, target types.Target, searchPaths []string) error {
	abiDir := filepath.Join(root, target.AndroidABI())
	entries, err := os.ReadDir(abiDir)
	if err != nil {
		return types.IOPathError(abiDir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".so" {
			continue
		}
		if err := a.AddLibRecursively(ctx, filepath.Join(abiDir, entry.Name()), target, searchPaths); err != nil {
			return err
		}
	}
	return nil
}

// AddLibRecursively stages library and, transitively, each library it
// needs. Libraries the platform provides at the manifest's minimum API
// level are skipped and every library is staged at most once per target.
func (a *UnalignedAPK) AddLibRecursively(ctx context.Context, library string, target types.Target, searchPaths []string) error {
	if a.consumed {
		return types.HandleConsumed("unaligned apk")
	}
	resolved, err := a.resolvedLibraries(target)
	if err != nil {
		return err
	}
	if _, ok := resolved[filepath.Base(library)]; ok {
		return nil
	}

	// Libraries join the resolved set only when the whole closure has been
	// staged, so a failed call can be retried on the same handle.
	visited := map[string]struct{}{filepath.Base(library): {}}
	artifacts := []string{library}
	for len(artifacts) > 0 {
		artifact := artifacts[len(artifacts)-1]
		artifacts = artifacts[:len(artifacts)-1]

		if err := a.AddLib(ctx, artifact, target); err != nil {
			return err
		}
		needed, err := a.config.Toolchain.NeededLibraries(artifact)
		if err != nil {
			return err
		}
		for _, need := range needed {
			if _, ok := resolved[need]; ok {
				continue
			}
			if _, ok := visited[need]; ok {
				continue
			}
			visited[need] = struct{}{}
			found, ok := findLibrary(searchPaths, need)
			if !ok {
				log.Ctx(ctx).Warn().
					Str("library", need).
					Str("needed_by", filepath.Base(artifact)).
					Msg("shared library not found in search paths")
				continue
			}
			artifacts = append(artifacts, found)
		}
	}
	maps.Copy(resolved, visited)
	return nil
}

func (a *UnalignedAPK) resolvedLibraries(target types.Target) (map[string]struct{}, error) {
	if resolved, ok := a.resolved[target]; ok {
		return resolved, nil
	}
	system, err := a.config.Toolchain.PlatformLibraries(target, a.config.MinSDKVersion())
	if err != nil {
		return nil, err
	}
	resolved := make(map[string]struct{}, len(system))
	for _, lib := range system {
		resolved[lib] = struct{}{}
	}
	a.resolved[target] = resolved
	return resolved, nil
}

func findLibrary(searchPaths []string, name string) (string, bool) {
	for _, dir := range searchPaths {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

func copyLibrary(srcPath string, destPath string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return types.IOPathError(srcPath, err)
	}
	defer srcFile.Close()
	info, err := srcFile.Stat()
	if err != nil {
		return types.IOPathError(srcPath, err)
	}
	destFile, err := os.OpenFile(destPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return types.IOPathError(destPath, err)
	}
	if _, err := io.Copy(destFile, srcFile); err != nil {
		destFile.Close()
		return types.IOPathError(destPath, err)
	}
	if err := destFile.Close(); err != nil {
		return types.IOPathError(destPath, err)
	}
	return nil
}
