package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ndk-build/internal/app"
)

type deviceOptions struct {
	specOptions
	Device string
}

func addDeviceFlag(cmd *cobra.Command, opts *deviceOptions) {
	cmd.Flags().StringVar(&opts.Device, "device", "", "Target device serial (adb -s)")
	_ = viper.BindPFlag("device", cmd.Flags().Lookup("device"))
}

func newRunCommand() *cobra.Command {
	opts := deviceOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Build the APK, install it on a device and start it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd.Context(), cmd, opts)
		},
	}
	addSpecFlags(cmd, &opts.specOptions)
	addDeviceFlag(cmd, &opts)
	return cmd
}

func newInstallCommand() *cobra.Command {
	opts := deviceOptions{}
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install a previously built APK on a device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInstall(cmd.Context(), cmd, opts)
		},
	}
	addSpecFlags(cmd, &opts.specOptions)
	addDeviceFlag(cmd, &opts)
	return cmd
}

func newUIDCommand() *cobra.Command {
	opts := deviceOptions{}
	cmd := &cobra.Command{
		Use:   "uid",
		Short: "Print the user id the device assigned to the package",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUID(cmd.Context(), cmd, opts)
		},
	}
	addSpecFlags(cmd, &opts.specOptions)
	addDeviceFlag(cmd, &opts)
	return cmd
}

func deployRequest(cmd *cobra.Command, opts deviceOptions, service app.Service) (app.DeployRequest, error) {
	spec, err := loadSpec(cmd, opts.specOptions, service.SpecLoader)
	if err != nil {
		return app.DeployRequest{}, err
	}
	return app.DeployRequest{
		Spec:   spec,
		Serial: resolveString(cmd, opts.Device, "device", "device"),
	}, nil
}

func runRun(ctx context.Context, cmd *cobra.Command, opts deviceOptions) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	req, err := deployRequest(cmd, opts, service)
	if err != nil {
		return err
	}
	result, err := service.Run(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "started %s\n", result.APK.PackageName())
	return nil
}

func runInstall(ctx context.Context, cmd *cobra.Command, opts deviceOptions) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	req, err := deployRequest(cmd, opts, service)
	if err != nil {
		return err
	}
	if err := service.Install(ctx, req); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "installed %s\n", req.Spec.Manifest.Package)
	return nil
}

func runUID(ctx context.Context, cmd *cobra.Command, opts deviceOptions) error {
	service, err := newAppService()
	if err != nil {
		return err
	}
	req, err := deployRequest(cmd, opts, service)
	if err != nil {
		return err
	}
	result, err := service.UID(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d\n", result.UID)
	return nil
}
