//go:build unix

package krb5

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Writable reports whether the current process may write path, or create it
// in its parent directory when it does not exist yet.
func Writable(path string) bool {
	if _, err := os.Stat(path); err == nil {
		return unix.Access(path, unix.W_OK) == nil
	}
	return unix.Access(filepath.Dir(path), unix.W_OK) == nil
}
