package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ndk-build/internal/adapters"
	"ndk-build/internal/app"
	"ndk-build/internal/ports"
	"ndk-build/internal/types"
)

const (
	debugKeystorePassword = "android"
)

// specOptions are the flags shared by every command that needs a build
// description. Flags override the values loaded from --spec.
type specOptions struct {
	Spec               string
	BuildDir           string
	APKName            string
	Package            string
	Target             string
	Libraries          []string
	Assets             string
	Resources          string
	Strip              string
	DisableCompression bool
	RuntimeLibs        string
	SearchPaths        []string
	KeyPath            string
	KeyPassword        string
	ReverseForward     []string
}

func addSpecFlags(cmd *cobra.Command, opts *specOptions) {
	cmd.Flags().StringVar(&opts.Spec, "spec", "", "Build description YAML file")
	cmd.Flags().StringVar(&opts.BuildDir, "build-dir", "", "Build directory")
	cmd.Flags().StringVar(&opts.APKName, "apk-name", "", "APK base name")
	cmd.Flags().StringVar(&opts.Package, "package", "", "Manifest package name")
	cmd.Flags().StringVar(&opts.Target, "target", "", "Default target for --lib entries without one")
	cmd.Flags().StringSliceVar(&opts.Libraries, "lib", nil, "Shared library to add, as [target=]path")
	cmd.Flags().StringVar(&opts.Assets, "assets", "", "Assets directory")
	cmd.Flags().StringVar(&opts.Resources, "resources", "", "Resources directory")
	cmd.Flags().StringVar(&opts.Strip, "strip", "", "Debug symbol handling: default, strip or split")
	cmd.Flags().BoolVar(&opts.DisableCompression, "disable-aapt-compression", false, "Store all entries uncompressed")
	cmd.Flags().StringVar(&opts.RuntimeLibs, "runtime-libs", "", "Directory with per-ABI runtime libraries")
	cmd.Flags().StringSliceVar(&opts.SearchPaths, "search-path", nil, "Directory searched for needed libraries")
	cmd.Flags().StringVar(&opts.KeyPath, "key-path", "", "Keystore path (defaults to the debug keystore)")
	cmd.Flags().StringVar(&opts.KeyPassword, "key-password", "", "Keystore password")
	cmd.Flags().StringSliceVar(&opts.ReverseForward, "reverse-port-forward", nil, "Reverse port forward rule, as device=host")

	_ = viper.BindPFlag("spec", cmd.Flags().Lookup("spec"))
	_ = viper.BindPFlag("build_dir", cmd.Flags().Lookup("build-dir"))
	_ = viper.BindPFlag("apk_name", cmd.Flags().Lookup("apk-name"))
	_ = viper.BindPFlag("package", cmd.Flags().Lookup("package"))
	_ = viper.BindPFlag("target", cmd.Flags().Lookup("target"))
	_ = viper.BindPFlag("libs", cmd.Flags().Lookup("lib"))
	_ = viper.BindPFlag("assets", cmd.Flags().Lookup("assets"))
	_ = viper.BindPFlag("resources", cmd.Flags().Lookup("resources"))
	_ = viper.BindPFlag("strip", cmd.Flags().Lookup("strip"))
	_ = viper.BindPFlag("disable_aapt_compression", cmd.Flags().Lookup("disable-aapt-compression"))
	_ = viper.BindPFlag("runtime_libs", cmd.Flags().Lookup("runtime-libs"))
	_ = viper.BindPFlag("search_paths", cmd.Flags().Lookup("search-path"))
	_ = viper.BindPFlag("key_path", cmd.Flags().Lookup("key-path"))
	_ = viper.BindPFlag("key_password", cmd.Flags().Lookup("key-password"))
	_ = viper.BindPFlag("reverse_port_forward", cmd.Flags().Lookup("reverse-port-forward"))
}

// loadSpec builds the effective build description from --spec and the
// flag/config overrides.
func loadSpec(cmd *cobra.Command, opts specOptions, loader ports.BuildSpecPort) (types.BuildSpec, error) {
	var spec types.BuildSpec
	if path := resolveString(cmd, opts.Spec, "spec", "spec"); path != "" {
		loaded, err := loader.LoadBuildSpec(path)
		if err != nil {
			return types.BuildSpec{}, err
		}
		spec = loaded
	}

	override(&spec.BuildDir, resolveString(cmd, opts.BuildDir, "build_dir", "build-dir"))
	override(&spec.APKName, resolveString(cmd, opts.APKName, "apk_name", "apk-name"))
	override(&spec.Manifest.Package, resolveString(cmd, opts.Package, "package", "package"))
	override(&spec.Assets, resolveString(cmd, opts.Assets, "assets", "assets"))
	override(&spec.Resources, resolveString(cmd, opts.Resources, "resources", "resources"))
	override(&spec.RuntimeLibs, resolveString(cmd, opts.RuntimeLibs, "runtime_libs", "runtime-libs"))
	override(&spec.Key.Path, resolveString(cmd, opts.KeyPath, "key_path", "key-path"))
	override(&spec.Key.Password, resolveString(cmd, opts.KeyPassword, "key_password", "key-password"))
	if resolveBool(cmd, opts.DisableCompression, "disable_aapt_compression", "disable-aapt-compression") {
		spec.DisableAaptCompression = true
	}
	if strip := resolveString(cmd, opts.Strip, "strip", "strip"); strip != "" {
		parsed, err := types.ParseStripConfig(strip)
		if err != nil {
			return types.BuildSpec{}, err
		}
		spec.Strip = parsed
	}
	if paths := resolveStrings(cmd, opts.SearchPaths, "search_paths", "search-path"); len(paths) > 0 {
		spec.SearchPaths = paths
	}

	defaultTarget := resolveString(cmd, opts.Target, "target", "target")
	for _, entry := range resolveStrings(cmd, opts.Libraries, "libs", "lib") {
		lib, err := parseLibraryFlag(entry, defaultTarget)
		if err != nil {
			return types.BuildSpec{}, err
		}
		spec.Libraries = append(spec.Libraries, lib)
	}
	rules, err := parseForwardRules(resolveStrings(cmd, opts.ReverseForward, "reverse_port_forward", "reverse-port-forward"))
	if err != nil {
		return types.BuildSpec{}, err
	}
	if len(rules) > 0 {
		if spec.ReversePortForward == nil {
			spec.ReversePortForward = map[string]string{}
		}
		for from, to := range rules {
			spec.ReversePortForward[from] = to
		}
	}

	if spec.APKName == "" && spec.Manifest.Package != "" {
		parts := strings.Split(spec.Manifest.Package, ".")
		spec.APKName = parts[len(parts)-1]
	}
	// Only the missing half of the key falls back to the debug keystore.
	if spec.Key.Path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			spec.Key.Path = filepath.Join(home, ".android", "debug.keystore")
			if spec.Key.Password == "" {
				spec.Key.Password = debugKeystorePassword
			}
		}
	}
	return spec, nil
}

func override(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func parseLibraryFlag(entry string, defaultTarget string) (types.LibraryInput, error) {
	target, path, ok := strings.Cut(entry, "=")
	if !ok {
		target, path = defaultTarget, entry
	}
	if strings.TrimSpace(target) == "" {
		return types.LibraryInput{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("library " + entry + " has no target: use target=path or --target")
	}
	return types.LibraryInput{Target: target, Path: path}, nil
}

func parseForwardRules(entries []string) (map[string]string, error) {
	rules := map[string]string{}
	for _, entry := range entries {
		from, to, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid reverse port forward rule " + entry + ": expected device=host")
		}
		if _, exists := rules[from]; exists {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("duplicate reverse port forward rule for " + from)
		}
		rules[from] = to
	}
	return rules, nil
}

func newAppService() (app.Service, error) {
	var toolchain ports.ToolchainPort
	if viper.GetBool("dry_run") {
		toolchain = adapters.NewRecordingToolchainAdapter(os.Stdout)
	} else {
		ndk, err := adapters.NewNDKToolchainAdapter(viper.GetString("sdk_path"), viper.GetString("ndk_path"))
		if err != nil {
			return app.Service{}, err
		}
		toolchain = ndk
	}
	return app.NewService(toolchain), nil
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetStringSlice(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
