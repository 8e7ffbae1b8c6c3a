package app

import (
	"ndk-build/internal/adapters"
	"ndk-build/internal/ports"
)

type Service struct {
	SpecLoader     ports.BuildSpecPort
	ManifestWriter ports.ManifestWriterPort
	Toolchain      ports.ToolchainPort
}

func NewService(toolchain ports.ToolchainPort) Service {
	return Service{
		SpecLoader:     adapters.NewBuildSpecFileAdapter(),
		ManifestWriter: adapters.NewManifestXMLAdapter(),
		Toolchain:      toolchain,
	}
}
