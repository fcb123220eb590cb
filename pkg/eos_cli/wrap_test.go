package eos_cli

import (
	"testing"

	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/eos_err"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/eos_io"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPassesContextAndArgs(t *testing.T) {
	t.Parallel()

	var gotRC *eos_io.RuntimeContext
	var gotArgs []string
	cmd := &cobra.Command{Use: "krb5setup"}
	run := Wrap(func(rc *eos_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		gotRC, gotArgs = rc, args
		return nil
	})

	require.NoError(t, run(cmd, []string{"nanocorp.htb", "dc01"}))
	require.NotNil(t, gotRC)
	assert.Equal(t, "krb5setup", gotRC.Command)
	assert.NotNil(t, gotRC.Ctx)
	assert.Equal(t, []string{"nanocorp.htb", "dc01"}, gotArgs)
}

func TestWrapReturnsError(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "krb5setup"}
	want := eos_err.NewValidationError("domain_fqdn and dc_name are required")
	err := Wrap(func(*eos_io.RuntimeContext, *cobra.Command, []string) error {
		return want
	})(cmd, nil)

	assert.Equal(t, want, err)
	assert.Equal(t, 1, eos_err.GetExitCode(err))
}

func TestWrapRecoversPanic(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{Use: "krb5setup"}
	err := Wrap(func(*eos_io.RuntimeContext, *cobra.Command, []string) error {
		panic("template exploded")
	})(cmd, nil)

	require.Error(t, err)
	assert.Equal(t, eos_err.CategoryInternal, eos_err.CategoryOf(err))
	assert.Equal(t, 3, eos_err.GetExitCode(err))
	assert.Contains(t, err.Error(), "template exploded")
}
