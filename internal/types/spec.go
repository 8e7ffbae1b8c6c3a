package types

// Key is the keystore used to sign a package.
type Key struct {
	Path     string `yaml:"path"`
	Password string `yaml:"password"`
}

// LibraryInput is one compiled shared library destined for Target.
type LibraryInput struct {
	Target string `yaml:"target"`
	Path   string `yaml:"path"`
}

// BuildSpec is the on-disk description of a package build.
type BuildSpec struct {
	BuildDir               string            `yaml:"build_dir"`
	APKName                string            `yaml:"apk_name"`
	Assets                 string            `yaml:"assets,omitempty"`
	Resources              string            `yaml:"resources,omitempty"`
	Manifest               AndroidManifest   `yaml:"manifest"`
	DisableAaptCompression bool              `yaml:"disable_aapt_compression,omitempty"`
	Strip                  StripConfig       `yaml:"strip,omitempty"`
	Libraries              []LibraryInput    `yaml:"libraries"`
	RuntimeLibs            string            `yaml:"runtime_libs,omitempty"`
	SearchPaths            []string          `yaml:"search_paths,omitempty"`
	Key                    Key               `yaml:"key"`
	ReversePortForward     map[string]string `yaml:"reverse_port_forward,omitempty"`
}
