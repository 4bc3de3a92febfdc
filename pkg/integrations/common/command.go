package common

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/oculus/oculus/pkg/window"
)

// CommandExists checks if a command is available in PATH
func CommandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// Query runs a window-manager query command and returns its stdout.
// Any failure, including ctx expiring, is reported as a
// window.DirectoryUnavailableError for backend.
func Query(ctx context.Context, backend, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, window.Unavailable(backend, errors.Wrapf(ctxErr, "%s did not respond", name))
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, window.Unavailable(backend, errors.Wrapf(err, "%s: %s", name, msg))
		}
		return nil, window.Unavailable(backend, errors.Wrapf(err, "failed to execute %s", name))
	}

	return stdout.Bytes(), nil
}
