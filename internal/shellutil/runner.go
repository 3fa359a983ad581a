package shellutil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Result captures the output of a completed command.
type Result struct {
	Stdout string
	Stderr string
}

// ExitError describes a command that ran and exited nonzero. The stderr
// capture is included in the message so job history records are diagnosable.
type ExitError struct {
	Binary   string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Binary, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (Result, error)
}

// Runner executes external binaries without a shell, capturing stdout and
// stderr separately. Long-running commands can be started under nice.
type Runner struct {
	// NiceBinary prefixes commands with the nice binary when set and the
	// call requests it.
	NiceBinary string
}

// Run executes binary with args.
func (r Runner) Run(ctx context.Context, binary string, args []string) (Result, error) {
	return r.run(ctx, binary, args, false)
}

// RunNice executes binary with args under nice when a nice binary is
// configured; otherwise it behaves like Run.
func (r Runner) RunNice(ctx context.Context, binary string, args []string) (Result, error) {
	return r.run(ctx, binary, args, true)
}

func (r Runner) run(ctx context.Context, binary string, args []string, nice bool) (Result, error) {
	if strings.TrimSpace(binary) == "" {
		return Result{}, fmt.Errorf("binary required")
	}

	argv := append([]string{binary}, args...)
	if nice && strings.TrimSpace(r.NiceBinary) != "" {
		argv = append([]string{r.NiceBinary}, argv...)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}
	if ctx.Err() != nil {
		return result, fmt.Errorf("run %s: %w", binary, ctx.Err())
	}
	var exitErr *exec.ExitError
	if ok := asExitError(err, &exitErr); ok {
		return result, &ExitError{Binary: binary, ExitCode: exitErr.ExitCode(), Stderr: result.Stderr}
	}
	return result, fmt.Errorf("run %s: %w", binary, err)
}

func asExitError(err error, target **exec.ExitError) bool {
	e, ok := err.(*exec.ExitError)
	if ok {
		*target = e
	}
	return ok
}
