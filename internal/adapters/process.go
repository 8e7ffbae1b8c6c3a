package adapters

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/rs/zerolog/log"

	"ndk-build/internal/types"
)

// runTool runs inv to completion and returns its standard output. Standard
// error is attached to the returned error when the tool fails.
func runTool(ctx context.Context, inv types.Invocation) ([]byte, error) {
	log.Ctx(ctx).Debug().Str("tool", inv.Tool).Str("command", inv.Redacted().String()).Msg("running tool")
	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	cmd.Dir = inv.Dir
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		output := stderr.Bytes()
		if len(bytes.TrimSpace(output)) == 0 {
			output = stdout.Bytes()
		}
		return nil, types.ToolFailed(inv, output, err)
	}
	return stdout.Bytes(), nil
}
