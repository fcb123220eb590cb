//go:build !unix

package krb5

import (
	"os"
	"path/filepath"
)

// Writable reports whether the current process may write path, or create it
// in its parent directory when it does not exist yet.
func Writable(path string) bool {
	if _, err := os.Stat(path); err == nil {
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return false
		}
		return f.Close() == nil
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".krb5setup-probe-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name) == nil
}
