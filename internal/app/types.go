package app

import (
	"ndk-build/internal/core"
	"ndk-build/internal/types"
)

type BuildRequest struct {
	Spec types.BuildSpec
}

type BuildResult struct {
	APK       *core.APK
	Libraries []string
	// Digest is the BLAKE3 digest of the signed package. It is empty when
	// the toolchain did not produce a file, as in dry runs.
	Digest string
}

type DeployRequest struct {
	Spec   types.BuildSpec
	Serial string
}

type RunResult struct {
	APK *core.APK
}

type UIDResult struct {
	Package string
	UID     uint32
}
