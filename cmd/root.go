/* cmd/root.go */

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/eos_cli"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/eos_err"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/eos_io"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/fileops"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/interaction"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/krb5"
	"github.com/CodeMonkeyCybersecurity/krb5setup/pkg/logger"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const (
	envPrefix = "KRB5SETUP"

	flagIPKDC       = "ip-kdc"
	flagTest        = "test"
	flagShowCurrent = "show-current"
	flagYes         = "yes"
	flagKrb5Conf    = "krb5-conf"
	flagElevated    = "elevated"

	// keyKrb5Config is bound to the KRB5_CONFIG variable read by Kerberos libraries.
	keyKrb5Config = "krb5_config"
)

// Deps are the collaborators the root command talks to.
type Deps struct {
	FS       fileops.FileSystem
	Runner   execute.Runner
	Elevator krb5.Elevator
	Writable func(path string) bool
	In       io.Reader
	Out      io.Writer
	Err      io.Writer
}

// DefaultDeps wires the command to the local system.
func DefaultDeps() *Deps {
	return &Deps{
		FS:       fileops.NewFileSystemOperations(logger.GetLogger()),
		Runner:   execute.ExecRunner{},
		Elevator: krb5.NewSudoElevator(),
		Writable: krb5.Writable,
		In:       os.Stdin,
		Out:      os.Stdout,
		Err:      os.Stderr,
	}
}

// NewRootCmd builds the krb5setup command.
func NewRootCmd(deps *Deps) *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "krb5setup [flags] <domain_fqdn> <dc_name>",
		Short: "Configure krb5.conf for Active Directory Kerberos authentication",
		Long: `krb5setup writes a Kerberos client configuration for an Active Directory
domain. The previous file is backed up next to it before being overwritten.

Common tools that use this configuration:
  evil-winrm -i <DC_IP> -r <DOMAIN>
  impacket-getTGT -dc-ip <DC_IP> <DOMAIN>/<USER>
  bloodhound-python -d <DOMAIN> -k
  crackmapexec <DC_IP> -k`,
		Example: `  krb5setup nanocorp.htb dc01
  krb5setup -k 10.129.228.72 nanocorp.htb dc01
  krb5setup --ip-kdc 10.129.228.72 --test nanocorp.htb dc01
  krb5setup --show-current`,
		Args:          cobra.MaximumNArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cli.AddStringFlag(root, flagIPKDC, "k", "", "Use this IP address for the KDC instead of its DNS name")
	cli.AddBoolFlag(root, flagTest, "t", false, "Test the Kerberos configuration after setup")
	cli.AddBoolFlag(root, flagShowCurrent, "", false, "Show the current krb5.conf and exit")
	cli.AddBoolFlag(root, flagYes, "y", false, "Skip the confirmation prompt")
	cli.AddStringFlag(root, flagKrb5Conf, "", "", "Path of the krb5.conf to write (default: first entry of $KRB5_CONFIG, then "+krb5.DefaultPath+")")
	cli.AddHiddenBoolFlag(root, flagElevated, "Set on the copy of krb5setup started through sudo")

	cli.SetViperEnvPrefix(v, envPrefix)
	if err := cli.BindFlagsToViper(root, v); err != nil {
		logger.GetLogger().Warn("Failed to bind flags to environment", zap.Error(err))
	}
	if err := v.BindEnv(keyKrb5Config, "KRB5_CONFIG"); err != nil {
		logger.GetLogger().Warn("Failed to bind KRB5_CONFIG", zap.Error(err))
	}

	root.SetOut(deps.Out)
	root.SetErr(deps.Err)
	root.SetIn(deps.In)

	root.RunE = eos_cli.Wrap(func(rc *eos_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return runRoot(rc, cmd, args, v, deps)
	})
	return root
}

func runRoot(rc *eos_io.RuntimeContext, cmd *cobra.Command, args []string, v *viper.Viper, deps *Deps) error {
	logger := otelzap.Ctx(rc.Ctx)

	path := resolveTargetPath(v)
	rc.Attributes["target"] = path
	target := krb5.NewTarget(path, deps.FS)

	if v.GetBool(flagShowCurrent) {
		return target.ShowCurrent(rc, deps.Out)
	}

	if len(args) < 2 {
		_ = cmd.Help()
		fmt.Fprintln(deps.Out)
		return eos_err.NewValidationError("domain_fqdn and dc_name are required",
			"Usage: krb5setup [flags] <domain_fqdn> <dc_name>",
			"Example: krb5setup -k 10.129.11.92 nanocorp.htb dc01")
	}

	req, err := krb5.NewConfigRequest(args[0], args[1], v.GetString(flagIPKDC))
	if err != nil {
		return err
	}

	elevated, _ := cmd.Flags().GetBool(flagElevated)
	opts := krb5.Options{
		Request:  req,
		Yes:      v.GetBool(flagYes),
		Test:     v.GetBool(flagTest),
		Elevated: elevated,
	}
	opts.Args = elevationArgs(opts, path)

	if f, ok := deps.In.(*os.File); ok && !opts.Yes && !interaction.IsInteractive(f) {
		logger.Warn("Standard input is not a terminal, reading confirmation from it")
	}

	logger.Info("Configuring Kerberos client",
		zap.String("realm", req.Realm()),
		zap.String("kdc", req.KDCHost()),
		zap.String("path", path),
		zap.Bool("elevated", elevated))

	c := &krb5.Configurator{
		Target:   target,
		Runner:   deps.Runner,
		Elevator: deps.Elevator,
		Writable: deps.Writable,
		In:       deps.In,
		Out:      deps.Out,
	}
	return c.Run(rc, opts)
}

// resolveTargetPath picks --krb5-conf (or KRB5SETUP_KRB5_CONF), then the first
// entry of KRB5_CONFIG, then the system default.
func resolveTargetPath(v *viper.Viper) string {
	if p := strings.TrimSpace(v.GetString(flagKrb5Conf)); p != "" {
		return p
	}
	if list := v.GetString(keyKrb5Config); list != "" {
		if first := strings.TrimSpace(strings.Split(list, ":")[0]); first != "" {
			return first
		}
	}
	return krb5.DefaultPath
}

// elevationArgs restates the resolved invocation as flags, since sudo does
// not keep the environment it came from.
func elevationArgs(opts krb5.Options, path string) []string {
	args := []string{"--" + flagKrb5Conf + "=" + path}
	if ip := opts.Request.KDCOverrideIP; ip != "" {
		args = append(args, "--"+flagIPKDC+"="+ip)
	}
	if opts.Yes {
		args = append(args, "--"+flagYes)
	}
	if opts.Test {
		args = append(args, "--"+flagTest)
	}
	return append(args, opts.Request.DomainFQDN, opts.Request.DCName)
}

// ExecuteArgs runs the command line args and returns the process exit code.
func ExecuteArgs(args []string, deps *Deps) int {
	root := NewRootCmd(deps)
	root.SetArgs(args)

	err := root.Execute()
	switch {
	case err == nil:
		return 0
	case cerr.Is(err, eos_err.ErrReexecCompleted):
		return 0
	}

	fmt.Fprintf(deps.Err, "\n[-] Error: %v\n", err)
	return eos_err.GetExitCode(err)
}

// Execute runs krb5setup with the process arguments.
func Execute() int {
	logger.GetLogger().Debug("krb5setup starting", zap.Strings("args", os.Args[1:]))
	return ExecuteArgs(os.Args[1:], DefaultDeps())
}
