package eos_io

import (
	"context"
	"errors"
	"testing"

	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/eos_err"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func withObservedLogger(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestNewContext(t *testing.T) {
	withObservedLogger(t)

	rc := NewContext(context.Background(), "configure")
	require.NotNil(t, rc.Ctx)
	require.NotNil(t, rc.Log)
	require.NotNil(t, rc.Span)
	assert.Equal(t, "configure", rc.Command)
	assert.NotNil(t, rc.Attributes)
	assert.False(t, rc.Timestamp.IsZero())
}

func TestEndLogsOutcome(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{name: "success", err: nil, message: "Command completed"},
		{name: "cancelled", err: eos_err.NewUserCancelledError("overwrite"), message: "Command cancelled"},
		{name: "failure", err: errors.New("disk full"), message: "Command failed"},
		{name: "handed over", err: eos_err.ErrReexecCompleted, message: "Command handed over to elevated process"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := withObservedLogger(t)
			rc := NewContext(context.Background(), "configure")
			rc.Attributes["realm"] = "NANOCORP.HTB"

			err := tt.err
			rc.End(&err)

			assert.Equal(t, 1, logs.FilterMessage(tt.message).Len())
		})
	}
}

func TestHandlePanic(t *testing.T) {
	withObservedLogger(t)
	rc := NewContext(context.Background(), "configure")

	run := func() (err error) {
		defer rc.HandlePanic(&err)
		panic("template exploded")
	}

	err := run()
	require.Error(t, err)
	assert.Equal(t, 3, eos_err.GetExitCode(err))
	assert.Contains(t, err.Error(), "template exploded")
}
