package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ndk-build/internal/app"
)

func newBuildCommand() *cobra.Command {
	opts := specOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Package, align and sign native libraries into an APK",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd.Context(), cmd, opts)
		},
	}
	addSpecFlags(cmd, &opts)
	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, opts specOptions) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	spec, err := loadSpec(cmd, opts, service.SpecLoader)
	if err != nil {
		return err
	}
	result, err := service.Build(ctx, app.BuildRequest{Spec: spec})
	if err != nil {
		return err
	}
	for _, lib := range result.Libraries {
		fmt.Fprintf(cmd.OutOrStdout(), "staged: %s\n", lib)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "built apk: %s\n", result.APK.Path())
	if result.Digest != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "blake3: %s\n", result.Digest)
	}
	return nil
}
