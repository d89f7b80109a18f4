package main

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of sourcer",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			generateVersionOutput(cmd.OutOrStdout())
		},
	}
}

func generateVersionOutput(out io.Writer) {
	fmt.Fprintln(out, "Version: "+Version)
	fmt.Fprintln(out, "Go Version: "+runtime.Version())
}
