// Package fileops provides the filesystem operations the installer performs
// on the configuration target, behind an interface tests can substitute.
package fileops

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	cerr "github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// FileSystem is the set of operations performed on the configuration target.
type FileSystem interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error
	CopyFile(ctx context.Context, src, dst string) error
	Exists(ctx context.Context, path string) (bool, error)
	Stat(ctx context.Context, path string) (os.FileInfo, error)
}

// FileSystemOperations implements FileSystem on the local disk.
type FileSystemOperations struct {
	logger *zap.Logger
}

// NewFileSystemOperations creates a new filesystem operations implementation
func NewFileSystemOperations(logger *zap.Logger) *FileSystemOperations {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSystemOperations{
		logger: logger.Named("filesystem"),
	}
}

// ReadFile reads the entire contents of a file
func (f *FileSystemOperations) ReadFile(ctx context.Context, path string) ([]byte, error) {
	f.logger.Debug("Reading file", zap.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerr.Wrapf(err, "failed to read file %s", path)
	}

	f.logger.Debug("File read successfully",
		zap.String("path", path),
		zap.Int("size", len(data)))

	return data, nil
}

// WriteFile truncates path and writes data to it. An existing file keeps its
// mode; perm only applies when the file is created.
func (f *FileSystemOperations) WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	f.logger.Debug("Writing file",
		zap.String("path", path),
		zap.Int("size", len(data)),
		zap.String("permissions", perm.String()))

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return cerr.Wrapf(err, "failed to open %s for writing", path)
	}

	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return cerr.Wrapf(err, "failed to write file %s", path)
	}
	if err := file.Close(); err != nil {
		return cerr.Wrapf(err, "failed to close file %s", path)
	}

	f.logger.Info("File written successfully",
		zap.String("path", path),
		zap.Int("size", len(data)))

	return nil
}

// CopyFile copies src to dst, carrying over permission bits and access and
// modification times. dst is truncated if it exists.
func (f *FileSystemOperations) CopyFile(ctx context.Context, src, dst string) error {
	f.logger.Debug("Copying file",
		zap.String("src", src),
		zap.String("dst", dst))

	sourceFile, err := os.Open(src)
	if err != nil {
		return cerr.Wrapf(err, "failed to open source file %s", src)
	}
	defer func() {
		if err := sourceFile.Close(); err != nil {
			f.logger.Warn("Failed to close source file", zap.Error(err))
		}
	}()

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return cerr.Wrapf(err, "failed to stat source file %s", src)
	}
	atime := accessTime(src, sourceInfo)

	destFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, sourceInfo.Mode().Perm())
	if err != nil {
		return cerr.Wrapf(err, "failed to create destination file %s", dst)
	}

	bytesWritten, err := io.Copy(destFile, sourceFile)
	if err != nil {
		_ = destFile.Close()
		return cerr.Wrapf(err, "failed to copy contents from %s to %s", src, dst)
	}
	if err := destFile.Close(); err != nil {
		return cerr.Wrapf(err, "failed to close destination file %s", dst)
	}

	// O_CREATE honours the umask, and an existing dst keeps its old mode.
	if err := os.Chmod(dst, sourceInfo.Mode().Perm()); err != nil {
		return cerr.Wrapf(err, "failed to set mode on %s", dst)
	}
	if err := os.Chtimes(dst, atime, sourceInfo.ModTime()); err != nil {
		return cerr.Wrapf(err, "failed to set times on %s", dst)
	}

	f.logger.Info("File copied successfully",
		zap.String("src", src),
		zap.String("dst", dst),
		zap.Int64("bytes_written", bytesWritten))

	return nil
}

// Exists reports whether path exists. Errors other than not-exist are returned.
func (f *FileSystemOperations) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if cerr.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, cerr.Wrapf(err, "failed to stat %s", path)
}

// Stat returns file information for path.
func (f *FileSystemOperations) Stat(ctx context.Context, path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, cerr.Wrapf(err, "failed to stat %s", path)
	}
	return info, nil
}

// SiblingPath returns name placed in the same directory as path.
func SiblingPath(path, name string) string {
	return filepath.Join(filepath.Dir(path), name)
}
