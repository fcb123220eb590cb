package eos_err

import (
	"errors"
	"fmt"
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestGetExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain error", err: errors.New("boom"), want: 1},
		{name: "validation", err: NewValidationError("domain_fqdn and dc_name are required"), want: 1},
		{name: "user cancelled", err: NewUserCancelledError("overwrite /etc/krb5.conf"), want: 1},
		{name: "filesystem", err: NewFilesystemError("write failed", errors.New("disk full")), want: 1},
		{name: "permission", err: NewPermissionError("/etc/krb5.conf", "write"), want: 1},
		{name: "internal", err: NewInternalError("panic", nil), want: 3},
		{name: "wrapped internal", err: cerr.Wrap(NewInternalError("panic", nil), "run"), want: 3},
		{name: "fmt wrapped validation", err: fmt.Errorf("cli: %w", NewValidationError("bad")), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestClassifiedErrorMessage(t *testing.T) {
	t.Parallel()

	err := NewFilesystemError("failed to back up /etc/krb5.conf", errors.New("permission denied"),
		"Check the ownership of /etc", "Re-run with sudo")

	msg := err.Error()
	assert.Contains(t, msg, "failed to back up /etc/krb5.conf")
	assert.Contains(t, msg, "Cause: permission denied")
	assert.Contains(t, msg, "1. Check the ownership of /etc")
	assert.Contains(t, msg, "2. Re-run with sudo")
}

func TestCategoryHelpers(t *testing.T) {
	t.Parallel()

	cancelled := cerr.Wrap(NewUserCancelledError("overwrite"), "confirm")
	assert.True(t, IsUserCancelled(cancelled))
	assert.False(t, IsPermission(cancelled))

	denied := NewPermissionError("/etc/krb5.conf", "write")
	assert.True(t, IsPermission(denied))
	assert.Equal(t, "permission", CategoryOf(denied).String())

	assert.Equal(t, CategorySystem, CategoryOf(errors.New("plain")))
}
