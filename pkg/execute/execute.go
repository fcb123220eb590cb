// pkg/execute/execute.go

package execute

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Result is what a finished process reported.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner runs a named command found on PATH and captures its outcome.
//
// A process that starts and exits nonzero is not an error: it is reported
// through Result.ExitCode. The error return is reserved for commands that
// could not be launched at all.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner is the os/exec backed Runner. No timeout is applied.
type ExecRunner struct{}

// Run executes name with args, capturing stdout and stderr separately.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmdStr := buildCommandString(name, args...)
	logger := otelzap.Ctx(ctx)

	ctx, span := telemetry.Start(ctx, "execute.Run",
		attribute.String("command", name),
		attribute.String("args", strings.Join(args, " ")),
	)
	defer span.End()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("Starting execution", zap.String("command", cmdStr))
	err := cmd.Run()

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		logger.Debug("Execution succeeded", zap.String("command", cmdStr))
	case cerr.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		logger.Debug("Execution exited nonzero",
			zap.String("command", cmdStr),
			zap.Int("exit_code", result.ExitCode),
			zap.String("summary", ExtractSummary(result.Stderr, 2)))
	default:
		span.RecordError(err)
		logger.Warn("Execution could not start", zap.String("command", cmdStr), zap.Error(err))
		return Result{ExitCode: -1}, cerr.Wrapf(err, "launch %s", cmdStr)
	}

	span.SetAttributes(attribute.Int("exit_code", result.ExitCode))
	return result, nil
}

// IsNotFound reports whether a launch error means the executable is missing.
func IsNotFound(err error) bool {
	return cerr.Is(err, exec.ErrNotFound)
}
