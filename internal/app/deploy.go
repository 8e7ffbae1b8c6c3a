package app

import (
	"context"

	"ndk-build/internal/core"
)

// Run builds the package, applies the reverse port forwards, installs it
// and launches it.
func (s Service) Run(ctx context.Context, req DeployRequest) (RunResult, error) {
	result, err := s.Build(ctx, BuildRequest{Spec: req.Spec})
	if err != nil {
		return RunResult{}, err
	}
	apk := result.APK
	if err := apk.ReversePortForward(ctx, req.Serial); err != nil {
		return RunResult{}, err
	}
	if err := apk.Install(ctx, req.Serial); err != nil {
		return RunResult{}, err
	}
	if err := apk.Start(ctx, req.Serial); err != nil {
		return RunResult{}, err
	}
	return RunResult{APK: apk}, nil
}

// Install installs a previously built package.
func (s Service) Install(ctx context.Context, req DeployRequest) error {
	apk, err := s.open(ctx, req)
	if err != nil {
		return err
	}
	return apk.Install(ctx, req.Serial)
}

// UID looks up the user id of a previously built package on the device.
func (s Service) UID(ctx context.Context, req DeployRequest) (UIDResult, error) {
	apk, err := s.open(ctx, req)
	if err != nil {
		return UIDResult{}, err
	}
	uid, err := apk.UIDOf(ctx, req.Serial)
	if err != nil {
		return UIDResult{}, err
	}
	return UIDResult{Package: apk.PackageName(), UID: uid}, nil
}

func (s Service) open(ctx context.Context, req DeployRequest) (*core.APK, error) {
	if err := validateSpec(req.Spec); err != nil {
		return nil, err
	}
	return core.OpenAPK(ctx, s.buildConfig(req.Spec))
}
