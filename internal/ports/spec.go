package ports

import "ndk-build/internal/types"

type BuildSpecPort interface {
	LoadBuildSpec(path string) (types.BuildSpec, error)
}
