package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "sourcer"

// checkEnvironmentVariables sets flags that are not set on command line from environment variables
// named SOURCER_<FLAG> for persistent flags of the root command and SOURCER_<COMMAND>_<FLAG>
// for local flags of subcommands.
func checkEnvironmentVariables(command *cobra.Command) error {
	var errs []string
	v := viper.New()
	v.AutomaticEnv()
	flags := command.LocalNonPersistentFlags()
	if command == command.Root() {
		v.SetEnvPrefix(envPrefix)
		flags = command.PersistentFlags()
	} else {
		v.SetEnvPrefix(fmt.Sprintf("%s_%s", envPrefix, command.Name()))
	}

	flags.VisitAll(func(f *pflag.Flag) {
		configName := strings.ReplaceAll(f.Name, "-", "_")
		if !f.Changed && v.IsSet(configName) {
			val := v.Get(configName)
			if e := flags.Set(f.Name, fmt.Sprintf("%v", val)); e != nil {
				errs = append(errs, e.Error())
			}
		}
	})

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("error mapping environment variables to command flags: %s", strings.Join(errs, "; "))
}
