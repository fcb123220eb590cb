package krb5

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/eos_err"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/eos_io"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/fileops"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const (
	backupInfix      = ".backup."
	backupTimeFormat = "20060102_150405"
	maxBackupSuffix  = 100
)

// Target is the on-disk configuration file the installer owns for one run.
type Target struct {
	Path string
	// Perm applies only when the file does not exist yet.
	Perm os.FileMode
	FS   fileops.FileSystem
	Now  func() time.Time
}

// NewTarget returns a Target for path backed by fs.
func NewTarget(path string, fs fileops.FileSystem) *Target {
	return &Target{
		Path: path,
		Perm: 0o644,
		FS:   fs,
		Now:  time.Now,
	}
}

// ReadCurrent returns the existing file content and whether the file exists.
func (t *Target) ReadCurrent(rc *eos_io.RuntimeContext) ([]byte, bool, error) {
	exists, err := t.FS.Exists(rc.Ctx, t.Path)
	if err != nil || !exists {
		return nil, false, err
	}
	data, err := t.FS.ReadFile(rc.Ctx, t.Path)
	if err != nil {
		return nil, true, err
	}
	return data, true, nil
}

// BackupExisting copies the current file to "<path>.backup.<timestamp>" and
// returns the record, or returns nil when there is nothing to back up.
// An existing backup with the same timestamp is never overwritten.
func (t *Target) BackupExisting(rc *eos_io.RuntimeContext) (*BackupRecord, error) {
	logger := otelzap.Ctx(rc.Ctx)

	// ASSESS
	exists, err := t.FS.Exists(rc.Ctx, t.Path)
	if err != nil {
		return nil, eos_err.NewFilesystemError(
			fmt.Sprintf("failed to check for existing %s", t.Path), err)
	}
	if !exists {
		logger.Info("No existing configuration to back up", zap.String("path", t.Path))
		return nil, nil
	}

	now := t.Now()
	backupPath, err := t.freeBackupPath(rc, now)
	if err != nil {
		return nil, err
	}

	// INTERVENE
	if err := t.FS.CopyFile(rc.Ctx, t.Path, backupPath); err != nil {
		return nil, eos_err.NewFilesystemError(
			fmt.Sprintf("failed to back up %s to %s", t.Path, backupPath), err,
			"Check that "+filepath.Dir(t.Path)+" is writable",
			"Free disk space and retry")
	}

	// EVALUATE
	logger.Info("Backed up existing configuration",
		zap.String("path", t.Path),
		zap.String("backup_path", backupPath))

	return &BackupRecord{
		OriginalPath: t.Path,
		BackupPath:   backupPath,
		CreatedAt:    now,
	}, nil
}

func (t *Target) freeBackupPath(rc *eos_io.RuntimeContext, now time.Time) (string, error) {
	base := t.Path + backupInfix + now.Format(backupTimeFormat)
	candidate := base
	for i := 1; i <= maxBackupSuffix; i++ {
		taken, err := t.FS.Exists(rc.Ctx, candidate)
		if err != nil {
			return "", eos_err.NewFilesystemError("failed to check backup path "+candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", eos_err.NewFilesystemError(
		fmt.Sprintf("too many backups of %s named %s*", t.Path, base), nil,
		"Remove old backups from "+filepath.Dir(t.Path))
}

// Install truncates the target and writes rendered to it. If the write fails
// and backup is non-nil, the original file is restored from it before the
// failure is returned.
func (t *Target) Install(rc *eos_io.RuntimeContext, rendered RenderedConfig, backup *BackupRecord) error {
	logger := otelzap.Ctx(rc.Ctx)

	// INTERVENE
	writeErr := t.FS.WriteFile(rc.Ctx, t.Path, rendered.Bytes(), t.Perm)
	if writeErr == nil {
		// EVALUATE
		logger.Info("Configuration installed",
			zap.String("path", t.Path),
			zap.Int("size", len(rendered)))
		return nil
	}

	logger.Error("Failed to write configuration", zap.String("path", t.Path), zap.Error(writeErr))

	if backup == nil {
		return eos_err.NewFilesystemError(
			fmt.Sprintf("error writing configuration to %s", t.Path), writeErr,
			"No backup existed, nothing was restored")
	}

	if err := t.Restore(rc, backup); err != nil {
		return eos_err.NewFilesystemError(
			fmt.Sprintf("error writing configuration to %s, and restoring %s also failed", t.Path, backup.BackupPath),
			cerr.CombineErrors(writeErr, err),
			fmt.Sprintf("Restore manually: cp -p %s %s", backup.BackupPath, t.Path))
	}

	return eos_err.NewFilesystemError(
		fmt.Sprintf("error writing configuration to %s", t.Path), writeErr,
		fmt.Sprintf("The previous configuration was restored from %s", backup.BackupPath))
}

// Restore copies the backup over the target.
func (t *Target) Restore(rc *eos_io.RuntimeContext, backup *BackupRecord) error {
	logger := otelzap.Ctx(rc.Ctx)
	logger.Warn("Restoring backup",
		zap.String("backup_path", backup.BackupPath),
		zap.String("path", backup.OriginalPath))

	if err := t.FS.CopyFile(rc.Ctx, backup.BackupPath, backup.OriginalPath); err != nil {
		return cerr.Wrapf(err, "restore %s from %s", backup.OriginalPath, backup.BackupPath)
	}

	logger.Info("Backup restored", zap.String("path", backup.OriginalPath))
	return nil
}
