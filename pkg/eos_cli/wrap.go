// pkg/eos_cli/wrap.go

package eos_cli

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/eos_io"
	"github.com/spf13/cobra"
)

// Wrap gives fn a RuntimeContext and turns panics into internal errors. The
// command span ends and the outcome is logged when fn returns.
func Wrap(fn func(rc *eos_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}

		rc := eos_io.NewContext(parent, cmd.Name())
		defer rc.End(&err)
		defer rc.HandlePanic(&err)

		eos_io.LogRuntimeExecutionContext(rc)

		return fn(rc, cmd, args)
	}
}
