package core

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"ndk-build/internal/shared"
	"ndk-build/internal/types"
)

// DeviceBridge runs adb subcommands against a device. An empty serial
// leaves device selection to adb.
type DeviceBridge interface {
	Adb(ctx context.Context, serial string, args ...string) ([]byte, error)
}

// ReversePortForward asks the device to forward each configured device
// socket back to the host. Forwarding stops at the first failure; rules
// already applied stay in place.
func (a *APK) ReversePortForward(ctx context.Context, serial string) error {
	for _, key := range shared.SortedKeys(a.reversePortForward) {
		to := a.reversePortForward[key]
		log.Ctx(ctx).Info().Str("from", key).Str("to", to).Msg("reverse port forwarding")
		if _, err := a.bridge.Adb(ctx, serial, "reverse", key, to); err != nil {
			return err
		}
	}
	return nil
}

// Install installs the package, replacing an existing installation.
func (a *APK) Install(ctx context.Context, serial string) error {
	_, err := a.bridge.Adb(ctx, serial, "install", "-r", a.path)
	return err
}

// Start launches the package's NativeActivity.
func (a *APK) Start(ctx context.Context, serial string) error {
	_, err := a.bridge.Adb(ctx, serial,
		"shell", "am", "start",
		"-a", "android.intent.action.MAIN",
		"-n", a.packageName+"/"+types.NativeActivityName,
	)
	return err
}

// UIDOf returns the user id the device assigned to the package.
func (a *APK) UIDOf(ctx context.Context, serial string) (uint32, error) {
	output, err := a.bridge.Adb(ctx, serial, "shell", "pm", "list", "package", "-U", a.packageName)
	if err != nil {
		return 0, err
	}
	return parseUID(a.packageName, string(output))
}

// parseUID reads `package:<name> uid:<n>` lines. pm filters packages by
// substring, so only a line naming pkg exactly is accepted.
func parseUID(pkg string, output string) (uint32, error) {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		name, ok := strings.CutPrefix(fields[0], "package:")
		if !ok || name != pkg {
			continue
		}
		for _, field := range fields[1:] {
			value, ok := strings.CutPrefix(field, "uid:")
			if !ok {
				continue
			}
			uid, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return 0, types.NotAUID(value, err)
			}
			return uint32(uid), nil
		}
		return 0, types.UIDNotInOutput(output)
	}
	return 0, types.PackageNotInOutput(pkg, output)
}
