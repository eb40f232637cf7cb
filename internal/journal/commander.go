package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"unicode/utf8"
)

// Commander runs the journal tool. Tests substitute a fake.
type Commander interface {
	// CombinedOutput runs name with args and returns stdout and stderr
	// interleaved.
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)

	// Stream runs name with args, copying stdout to w.
	Stream(ctx context.Context, w io.Writer, name string, args ...string) error
}

// ExecCommander runs commands through os/exec without a shell.
type ExecCommander struct{}

// CombinedOutput implements Commander.
func (ExecCommander) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, commandError(name, err, output)
	}
	return output, nil
}

// Stream implements Commander.
func (ExecCommander) Stream(ctx context.Context, w io.Writer, name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = w
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return commandError(name, err, stderr.Bytes())
	}
	return nil
}

// maxErrorOutput bounds how much tool output is quoted in an error.
const maxErrorOutput = 200

func commandError(name string, err error, output []byte) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s interrupted: %w", name, err)
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("%s: %w", name, err)
	}

	out := strings.TrimSpace(string(output))
	if len(out) > maxErrorOutput {
		out = out[:maxErrorOutput]
		for len(out) > 0 && !utf8.ValidString(out) {
			out = out[:len(out)-1]
		}
		out += "..."
	}
	if out != "" {
		return fmt.Errorf("%s failed (exit code %d): %s", name, exitErr.ExitCode(), out)
	}
	return fmt.Errorf("%s failed (exit code %d)", name, exitErr.ExitCode())
}
