package krb5

import (
	"fmt"
	"io"

	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/eos_err"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/eos_io"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/interaction"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Options are the per-invocation switches.
type Options struct {
	Request ConfigRequest
	// Yes skips the overwrite confirmation.
	Yes bool
	// Test runs the diagnostic checks after installing.
	Test bool
	// Elevated is set in a process started by an Elevator.
	Elevated bool
	// Args are passed to the Elevator when the target is not writable.
	Args []string
}

// Configurator runs the render, confirm, backup, install, verify sequence
// against one Target.
type Configurator struct {
	Target   *Target
	Runner   execute.Runner
	Elevator Elevator
	Writable func(path string) bool
	Checks   []Check
	In       io.Reader
	Out      io.Writer
}

// Run configures the target. It returns eos_err.ErrReexecCompleted when the
// work was handed to an elevated copy of the process.
func (c *Configurator) Run(rc *eos_io.RuntimeContext, opts Options) error {
	logger := otelzap.Ctx(rc.Ctx)
	req := opts.Request

	// ASSESS
	if err := req.Validate(); err != nil {
		return err
	}
	rc.Attributes["realm"] = req.Realm()
	rc.Attributes["kdc"] = req.KDCHost()

	writable := c.Writable
	if writable == nil {
		writable = Writable
	}
	if err := EnsureWritable(rc, c.Target.Path, writable, opts.Elevated, c.Elevator, opts.Args); err != nil {
		return err
	}

	if err := c.Target.ShowCurrent(rc, c.Out); err != nil {
		return eos_err.NewFilesystemError("failed to read current "+c.Target.Path, err)
	}

	rendered := Render(req)
	summary, err := Lint(rendered.String())
	if err == nil {
		err = summary.Matches(req)
	}
	if err != nil {
		return eos_err.NewInternalError("rendered configuration failed to parse back", err)
	}
	logger.Info("Rendered configuration",
		zap.String("realm", summary.DefaultRealm),
		zap.Strings("kdc", summary.KDCs),
		zap.Bool("dns_lookup_kdc", summary.DNSLookupKDC))

	fmt.Fprintln(c.Out)
	printInfo(c.Out, "New Configuration:")
	printDocument(c.Out, rendered.String(), "=")

	if !opts.Yes {
		fmt.Fprintln(c.Out)
		ok, err := interaction.PromptYesNo(rc.Ctx, c.In, c.Out,
			fmt.Sprintf("[!] This will overwrite %s. Continue?", c.Target.Path), false)
		if err != nil {
			return eos_err.NewUserCancelledError("overwrite " + c.Target.Path + " (no answer)")
		}
		if !ok {
			printWarn(c.Out, "Aborting")
			return eos_err.NewUserCancelledError("overwrite " + c.Target.Path)
		}
	}

	// INTERVENE
	backup, err := c.Target.BackupExisting(rc)
	if err != nil {
		printErr(c.Out, "Backup failed, %s was not modified", c.Target.Path)
		return err
	}
	if backup != nil {
		printOK(c.Out, "Backed up existing config to %s", backup.BackupPath)
		rc.Attributes["backup_path"] = backup.BackupPath
	}

	if err := c.Target.Install(rc, rendered, backup); err != nil {
		printErr(c.Out, "Error writing configuration to %s", c.Target.Path)
		if backup != nil {
			printInfo(c.Out, "Restoring backup from %s", backup.BackupPath)
		}
		return err
	}
	printOK(c.Out, "%s has been successfully configured", c.Target.Path)

	// EVALUATE
	if opts.Test {
		checks := c.Checks
		if checks == nil {
			checks = DefaultChecks()
		}
		fmt.Fprintln(c.Out)
		printInfo(c.Out, "Testing Kerberos configuration...")
		report := Verify(rc, c.Runner, checks)
		report.Print(c.Out)
		if !report.AllPassed() {
			printWarn(c.Out, "%d of %d checks did not pass; this is expected without a ticket or keytab",
				len(report.Results)-report.Count(StatusPassed), len(report.Results))
		}
	}

	fmt.Fprintln(c.Out)
	printOK(c.Out, "Usage examples with the new configuration:")
	for _, hint := range UsageHints(req) {
		fmt.Fprintf(c.Out, "  %s\n", hint)
	}
	return nil
}
