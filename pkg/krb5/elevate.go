package krb5

import (
	"context"
	"os"
	"os/exec"

	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/eos_err"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/eos_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ElevatedFlag marks a process started by an Elevator, so it never elevates twice.
const ElevatedFlag = "--elevated"

// Elevator re-runs the current program with elevated privileges. On success
// the real implementation does not return.
type Elevator interface {
	Elevate(ctx context.Context, args []string) error
}

// SudoElevator replaces the current process with "sudo <self> args...",
// passing the current environment through.
type SudoElevator struct {
	LookPath   func(file string) (string, error)
	Executable func() (string, error)
	Environ    func() []string
	Exec       func(argv0 string, argv []string, envv []string) error
}

// NewSudoElevator returns an Elevator that execs sudo.
func NewSudoElevator() *SudoElevator {
	return &SudoElevator{
		LookPath:   exec.LookPath,
		Executable: os.Executable,
		Environ:    os.Environ,
		Exec:       execve,
	}
}

// Elevate execs sudo with the current binary and args.
func (s *SudoElevator) Elevate(ctx context.Context, args []string) error {
	sudo, err := s.LookPath("sudo")
	if err != nil {
		return eos_err.NewDependencyError("sudo", "privilege elevation",
			"Install sudo, or re-run this command as root")
	}

	self, err := s.Executable()
	if err != nil {
		return cerr.Wrap(err, "resolve own executable")
	}

	argv := append([]string{"sudo", self}, args...)
	otelzap.Ctx(ctx).Info("Re-executing under sudo", zap.Strings("argv", argv))

	if err := s.Exec(sudo, argv, s.Environ()); err != nil {
		return cerr.Wrapf(err, "exec %s", sudo)
	}
	return nil
}

// EnsureWritable returns nil when path is writable. Otherwise it asks elevator
// to re-run the program with args plus ElevatedFlag, at most once: a process
// that is already elevated gets a permission error instead.
//
// When the elevator returns without error the work has been handed over and
// eos_err.ErrReexecCompleted is returned.
func EnsureWritable(rc *eos_io.RuntimeContext, path string, writable func(string) bool, elevated bool, elevator Elevator, args []string) error {
	logger := otelzap.Ctx(rc.Ctx)

	if writable(path) {
		logger.Debug("Target is writable", zap.String("path", path))
		return nil
	}

	if elevated || elevator == nil {
		return eos_err.NewPermissionError(path, "write",
			"Re-run this command as root",
			"Or pass --krb5-conf to write somewhere else and point KRB5_CONFIG at it")
	}

	logger.Info("Root privileges required, requesting sudo", zap.String("path", path))
	elevatedArgs := append(append([]string{}, args...), ElevatedFlag)
	if err := elevator.Elevate(rc.Ctx, elevatedArgs); err != nil {
		var classified *eos_err.ClassifiedError
		if cerr.As(err, &classified) {
			return err
		}
		return cerr.WithSecondaryError(eos_err.NewPermissionError(path, "write",
			"Re-run this command with sudo"), err)
	}
	return eos_err.ErrReexecCompleted
}
