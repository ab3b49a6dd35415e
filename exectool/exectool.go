// Package exectool runs the external command line tools the ceremony
// depends on. Tools are resolved on the search path once at startup and
// every invocation is synchronous; a non zero exit is reported as *Error
// and is fatal to the ceremony, there is no retry.
package exectool

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/nealmcb/psf-tuf-runbook/metricskey"
)

var logger = xlog.NewPackageLogger("github.com/nealmcb/psf-tuf-runbook", "exectool")

// Error reports a non zero exit status from an external tool.
type Error struct {
	Tool     string
	ExitCode int
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
}

// Tool is an external executable resolved on the search path.
type Tool struct {
	name string
	path string
}

// Find resolves the named executable on the search path.
func Find(name string) (*Tool, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, errors.WithMessagef(err, "tool not found on PATH: %s", name)
	}
	logger.KV(xlog.DEBUG, "tool", name, "path", path)
	return &Tool{name: name, path: path}, nil
}

// Name returns the tool name.
func (t *Tool) Name() string {
	return t.name
}

// Path returns the resolved executable path.
func (t *Tool) Path() string {
	return t.path
}

// Run executes the tool with the given arguments and waits for completion.
// The tool's output is passed through to stderr so the operator can follow
// progress; stdout of the ceremony itself stays reserved for results.
func (t *Tool) Run(args ...string) error {
	defer metricskey.PerfToolExec.MeasureSince(time.Now(), t.name)

	logger.KV(xlog.DEBUG, "tool", t.name, "args", strings.Join(Redact(args), " "))

	cmd := exec.Command(t.path, args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return errors.WithStack(&Error{Tool: t.name, ExitCode: exitErr.ExitCode()})
	}
	return errors.WithMessagef(err, "failed to run %s", t.name)
}

// Redact returns a copy of the argument vector with secret values masked,
// suitable for logging. Both the `--pin value` and `--pin=value` forms are
// handled.
func Redact(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := range out {
		switch {
		case out[i] == "--pin" || out[i] == "--so-pin":
			if i+1 < len(out) {
				out[i+1] = "****"
			}
		case strings.HasPrefix(out[i], "--pin="):
			out[i] = "--pin=****"
		case strings.HasPrefix(out[i], "--so-pin="):
			out[i] = "--so-pin=****"
		}
	}
	return out
}
