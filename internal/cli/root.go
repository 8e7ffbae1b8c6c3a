package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ndk-build/internal/types"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "NDK_BUILD"

type RootConfig struct {
	ConfigFile string
	LogLevel   string
	SDKPath    string
	NDKPath    string
	DryRun     bool
}

func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		log.Error().Msg(errorMessage(err))
		os.Exit(exitCodeForError(err))
	}
}

func newRootCommand() *cobra.Command {
	cfg := RootConfig{}
	cmd := &cobra.Command{
		Use:           "ndk-build",
		Short:         "Package native Android libraries into a signed APK and deploy it",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initConfig(cfg.ConfigFile); err != nil {
				return err
			}
			setupLogging(viper.GetString("log_level"))
			cmd.SetContext(log.Logger.WithContext(contextOf(cmd)))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "", "Config file path")
	cmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	cmd.PersistentFlags().StringVar(&cfg.SDKPath, "sdk-path", "", "Android SDK root (defaults to ANDROID_HOME)")
	cmd.PersistentFlags().StringVar(&cfg.NDKPath, "ndk-path", "", "Android NDK root (defaults to ANDROID_NDK_ROOT)")
	cmd.PersistentFlags().BoolVar(&cfg.DryRun, "dry-run", false, "Print tool invocations instead of running them")
	_ = viper.BindPFlag("log_level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("sdk_path", cmd.PersistentFlags().Lookup("sdk-path"))
	_ = viper.BindPFlag("ndk_path", cmd.PersistentFlags().Lookup("ndk-path"))
	_ = viper.BindPFlag("dry_run", cmd.PersistentFlags().Lookup("dry-run"))

	cmd.AddCommand(newBuildCommand())
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newInstallCommand())
	cmd.AddCommand(newUIDCommand())
	return cmd
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func initConfig(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read config file").
				WithCause(err)
		}
		return nil
	}

	viper.SetConfigName("ndk-build")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/ndk-build")
	if err := viper.ReadInConfig(); err != nil {
		return nil
	}
	return nil
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func exitCodeForError(err error) int {
	switch types.CodeOf(err) {
	case errbuilder.CodeInvalidArgument:
		if types.IsKind(err, types.ErrUIDNotInOutput) || types.IsKind(err, types.ErrNotAUID) {
			return 5
		}
		return 2
	case errbuilder.CodeNotFound:
		return 3
	case errbuilder.CodeFailedPrecondition:
		return 4
	case errbuilder.CodeInternal:
		return 5
	default:
		return 1
	}
}

func errorMessage(err error) string {
	var buildErr *types.BuildError
	if errors.As(err, &buildErr) {
		return buildErr.Error()
	}
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
