package krb5

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/eos_err"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/execute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type configureFixture struct {
	c        *Configurator
	out      *bytes.Buffer
	runner   *fakeRunner
	elevator *fakeElevator
}

func newConfigureFixture(t *testing.T, input string) *configureFixture {
	t.Helper()
	out := &bytes.Buffer{}
	runner := &fakeRunner{results: map[string]execute.Result{
		"klist -k": {ExitCode: 1, Stderr: "klist: Key table file not found\n"},
	}}
	elevator := &fakeElevator{}
	return &configureFixture{
		c: &Configurator{
			Target:   newTestTarget(t, nil),
			Runner:   runner,
			Elevator: elevator,
			Writable: always(true),
			In:       strings.NewReader(input),
			Out:      out,
		},
		out:      out,
		runner:   runner,
		elevator: elevator,
	}
}

var nanocorpRequest = ConfigRequest{DomainFQDN: "nanocorp.htb", DCName: "dc01"}

func TestConfigureFreshInstallWithYes(t *testing.T) {
	t.Parallel()
	f := newConfigureFixture(t, "")

	err := f.c.Run(newTestRC(t), Options{Request: nanocorpRequest, Yes: true})
	require.NoError(t, err)

	data, err := os.ReadFile(f.c.Target.Path)
	require.NoError(t, err)
	assert.Equal(t, nanocorpDNS, string(data))
	assert.Equal(t, []string{"krb5.conf"}, dirEntries(t, filepath.Dir(f.c.Target.Path)))

	out := f.out.String()
	assert.Contains(t, out, "No existing "+f.c.Target.Path)
	assert.Contains(t, out, "New Configuration:")
	assert.Contains(t, out, strings.Repeat("=", 50))
	assert.Contains(t, out, "has been successfully configured")
	assert.Contains(t, out, "kinit username@NANOCORP.HTB")
	assert.NotContains(t, out, "Continue?")
	assert.Empty(t, f.runner.calls)
	assert.Empty(t, f.elevator.calls)
}

func TestConfigureConfirmedOverwrite(t *testing.T) {
	t.Parallel()
	f := newConfigureFixture(t, "y\n")
	require.NoError(t, os.WriteFile(f.c.Target.Path, []byte(oldConfig), 0o644))

	req := ConfigRequest{DomainFQDN: "nanocorp.htb", DCName: "dc01", KDCOverrideIP: "10.129.11.92"}
	require.NoError(t, f.c.Run(newTestRC(t), Options{Request: req}))

	data, err := os.ReadFile(f.c.Target.Path)
	require.NoError(t, err)
	assert.Equal(t, Render(req).String(), string(data))
	assert.Contains(t, string(data), "kdc = 10.129.11.92")

	backupPath := f.c.Target.Path + ".backup.20250601_143005"
	backup, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, oldConfig, string(backup))

	out := f.out.String()
	assert.Contains(t, out, "Current "+f.c.Target.Path)
	assert.Contains(t, out, "default_realm = OLD.LOCAL")
	assert.Contains(t, out, "This will overwrite "+f.c.Target.Path+". Continue? [y/N]")
	assert.Contains(t, out, "Backed up existing config to "+backupPath)
	assert.Contains(t, out, "evil-winrm -i 10.129.11.92 -r nanocorp.htb")
}

func TestConfigureDeclined(t *testing.T) {
	t.Parallel()

	for name, input := range map[string]string{
		"no":      "n\n",
		"empty":   "\n",
		"garbage": "maybe\n",
		"eof":     "",
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			f := newConfigureFixture(t, input)
			require.NoError(t, os.WriteFile(f.c.Target.Path, []byte(oldConfig), 0o644))

			err := f.c.Run(newTestRC(t), Options{Request: nanocorpRequest})
			require.Error(t, err)
			assert.True(t, eos_err.IsUserCancelled(err))
			assert.Equal(t, 1, eos_err.GetExitCode(err))

			data, err := os.ReadFile(f.c.Target.Path)
			require.NoError(t, err)
			assert.Equal(t, oldConfig, string(data))
			assert.Equal(t, []string{"krb5.conf"}, dirEntries(t, filepath.Dir(f.c.Target.Path)))
		})
	}
}

func TestConfigureWithTest(t *testing.T) {
	t.Parallel()
	f := newConfigureFixture(t, "")

	require.NoError(t, f.c.Run(newTestRC(t), Options{Request: nanocorpRequest, Yes: true, Test: true}))

	require.Len(t, f.runner.calls, 2)
	out := f.out.String()
	assert.Contains(t, out, "Testing Kerberos configuration...")
	assert.Contains(t, out, "klist -k")
	assert.Contains(t, out, "1 of 2 checks did not pass")
	assert.Contains(t, out, "Usage examples")
}

func TestConfigureInvalidRequest(t *testing.T) {
	t.Parallel()
	f := newConfigureFixture(t, "y\n")

	err := f.c.Run(newTestRC(t), Options{Request: ConfigRequest{DomainFQDN: "nanocorp.htb"}, Yes: true})
	require.Error(t, err)
	assert.Equal(t, eos_err.CategoryValidation, eos_err.CategoryOf(err))
	assert.Empty(t, dirEntries(t, filepath.Dir(f.c.Target.Path)))
	assert.Empty(t, f.out.String())
}

func TestConfigureElevates(t *testing.T) {
	t.Parallel()
	f := newConfigureFixture(t, "")
	f.c.Writable = always(false)

	args := []string{"nanocorp.htb", "dc01", "--krb5-conf=" + f.c.Target.Path}
	err := f.c.Run(newTestRC(t), Options{Request: nanocorpRequest, Yes: true, Args: args})
	require.ErrorIs(t, err, eos_err.ErrReexecCompleted)
	require.Len(t, f.elevator.calls, 1)
	assert.Equal(t, append(args, ElevatedFlag), f.elevator.calls[0])
	assert.Empty(t, dirEntries(t, filepath.Dir(f.c.Target.Path)))
}

func TestConfigureElevatedStillNotWritable(t *testing.T) {
	t.Parallel()
	f := newConfigureFixture(t, "")
	f.c.Writable = always(false)

	err := f.c.Run(newTestRC(t), Options{Request: nanocorpRequest, Yes: true, Elevated: true})
	require.Error(t, err)
	assert.True(t, eos_err.IsPermission(err))
	assert.Empty(t, f.elevator.calls)
}

func TestConfigureBackupFailureAborts(t *testing.T) {
	t.Parallel()
	f := newConfigureFixture(t, "")
	f.c.Target.FS = &failingFS{FileSystem: f.c.Target.FS, failCopy: true}
	require.NoError(t, os.WriteFile(f.c.Target.Path, []byte(oldConfig), 0o644))

	err := f.c.Run(newTestRC(t), Options{Request: nanocorpRequest, Yes: true})
	require.Error(t, err)
	assert.Equal(t, 1, eos_err.GetExitCode(err))

	data, err := os.ReadFile(f.c.Target.Path)
	require.NoError(t, err)
	assert.Equal(t, oldConfig, string(data))
	assert.Contains(t, f.out.String(), "was not modified")
}

func TestConfigureWriteFailureRestores(t *testing.T) {
	t.Parallel()
	f := newConfigureFixture(t, "")
	f.c.Target.FS = &failingFS{FileSystem: f.c.Target.FS, failWrite: true}
	require.NoError(t, os.WriteFile(f.c.Target.Path, []byte(oldConfig), 0o644))

	err := f.c.Run(newTestRC(t), Options{Request: nanocorpRequest, Yes: true, Test: true})
	require.Error(t, err)
	assert.Equal(t, 1, eos_err.GetExitCode(err))

	data, err := os.ReadFile(f.c.Target.Path)
	require.NoError(t, err)
	assert.Equal(t, oldConfig, string(data))

	out := f.out.String()
	assert.Contains(t, out, "Error writing configuration to "+f.c.Target.Path)
	assert.Contains(t, out, "Restoring backup from "+f.c.Target.Path+".backup.20250601_143005")
	assert.NotContains(t, out, "Usage examples")
	assert.Empty(t, f.runner.calls)
}
