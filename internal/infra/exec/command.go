package exec

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// RunCommand runs commandLine (split on whitespace, no shell) with a timeout
// and returns its combined output.
func RunCommand(ctx context.Context, commandLine string, timeout time.Duration) ([]byte, error) {
	args := strings.Fields(commandLine)
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	path, err := exec.LookPath(args[0])
	if err != nil {
		return nil, fmt.Errorf("command %q not found in PATH: %w", args[0], err)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, path, args[1:]...)
	cmd.Dir = "."

	output, err := cmd.CombinedOutput()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return output, fmt.Errorf("command timed out after %v", timeout)
	}
	if err != nil {
		return output, fmt.Errorf("command %q failed: %w", args[0], err)
	}
	return output, nil
}
