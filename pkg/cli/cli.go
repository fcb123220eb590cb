// pkg/cli/cli.go

// Package cli holds flag helpers shared by commands. Flag values can also be
// supplied through the environment once bound to a Viper instance.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AddStringFlag adds a string flag.
func AddStringFlag(cmd *cobra.Command, name, shorthand, def, help string) {
	cmd.Flags().StringP(name, shorthand, def, help)
}

// AddBoolFlag adds a boolean flag.
func AddBoolFlag(cmd *cobra.Command, name, shorthand string, def bool, help string) {
	cmd.Flags().BoolP(name, shorthand, def, help)
}

// AddHiddenBoolFlag adds a boolean flag that is left out of help output.
func AddHiddenBoolFlag(cmd *cobra.Command, name, help string) {
	cmd.Flags().Bool(name, false, help)
	if err := cmd.Flags().MarkHidden(name); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to hide flag %s: %v\n", name, err)
	}
}

// BindFlagsToViper binds all flags on a command to a Viper instance.
func BindFlagsToViper(cmd *cobra.Command, v *viper.Viper) error {
	var result error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			result = multierror.Append(result, err)
		}
	})
	return result
}

// SetViperEnvPrefix makes every key readable from PREFIX_KEY, with dashes
// in the key replaced by underscores.
func SetViperEnvPrefix(v *viper.Viper, prefix string) {
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}
