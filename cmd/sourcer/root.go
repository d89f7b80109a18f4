package main

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

type rootParams struct {
	logLevel string
	log      hclog.Logger
}

func newRootCommand() *cobra.Command {
	params := &rootParams{}
	root := &cobra.Command{
		Use:           "sourcer",
		Short:         "Tokenize files using YAML token syntax",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if e := checkEnvironmentVariables(cmd.Root()); e != nil {
				return e
			}
			if cmd != cmd.Root() {
				if e := checkEnvironmentVariables(cmd); e != nil {
					return e
				}
			}

			level := hclog.LevelFromString(params.logLevel)
			if level == hclog.NoLevel {
				return fmt.Errorf("unknown log level %q", params.logLevel)
			}

			params.log = hclog.New(&hclog.LoggerOptions{
				Name:   "sourcer",
				Level:  level,
				Output: cmd.ErrOrStderr(),
			})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&params.logLevel, "log-level", "warn", "logging level: error, warn, info, debug or trace")
	root.AddCommand(newTokenizeCommand(params), newVersionCommand())
	return root
}
