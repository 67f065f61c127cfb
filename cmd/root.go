package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luma/respwire/cmd/gen"
)

var RootCmd = &cobra.Command{
	Use:   "respwire",
	Short: "A RESP v2 client and debugging REPL",
	Long: `respwire speaks the RESP v2 wire protocol to a Redis-compatible
server.

Usage
	respwire repl --addr 127.0.0.1:6379
`,
}

func init() {
	RootCmd.AddCommand(ReplCmd)
	RootCmd.AddCommand(gen.RootCmd)
}

// Execute runs the root command, exiting the process on error.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
