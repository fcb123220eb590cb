package krb5

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/eos_io"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/fileops"
	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var fixedNow = time.Date(2025, 6, 1, 14, 30, 5, 0, time.UTC)

func newTestRC(t *testing.T) *eos_io.RuntimeContext {
	t.Helper()
	rc := eos_io.NewContext(context.Background(), "krb5-test")
	rc.Log = zaptest.NewLogger(t)
	return rc
}

func newTestTarget(t *testing.T, fs fileops.FileSystem) *Target {
	t.Helper()
	if fs == nil {
		fs = fileops.NewFileSystemOperations(zaptest.NewLogger(t))
	}
	target := NewTarget(filepath.Join(t.TempDir(), "krb5.conf"), fs)
	target.Now = func() time.Time { return fixedNow }
	return target
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// failingFS wraps the real filesystem and fails selected operations.
type failingFS struct {
	fileops.FileSystem
	// failWrite truncates the file and then fails, like a full disk.
	failWrite bool
	failCopy  bool
	// failCopyFrom fails only copies whose source is this path.
	failCopyFrom string
}

func (f *failingFS) WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	if f.failWrite {
		if err := os.Truncate(path, 0); err != nil && !os.IsNotExist(err) {
			return err
		}
		return cerr.New("no space left on device")
	}
	return f.FileSystem.WriteFile(ctx, path, data, perm)
}

func (f *failingFS) CopyFile(ctx context.Context, src, dst string) error {
	if f.failCopy || (f.failCopyFrom != "" && src == f.failCopyFrom) {
		return cerr.Newf("copy %s: input/output error", src)
	}
	return f.FileSystem.CopyFile(ctx, src, dst)
}

type fakeCall struct {
	name string
	args []string
}

// fakeRunner returns scripted results keyed by "name args".
type fakeRunner struct {
	results map[string]execute.Result
	errs    map[string]error
	calls   []fakeCall
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (execute.Result, error) {
	f.calls = append(f.calls, fakeCall{name: name, args: args})
	key := Check{Name: name, Args: args}.String()
	if err, ok := f.errs[key]; ok {
		return execute.Result{ExitCode: -1}, err
	}
	return f.results[key], nil
}

type fakeElevator struct {
	calls [][]string
	err   error
}

func (f *fakeElevator) Elevate(ctx context.Context, args []string) error {
	f.calls = append(f.calls, args)
	return f.err
}
