// Command postpilot-admin inspects and adjusts user plans in the configured
// store, and computes payment callback signatures for manual testing.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "postpilot-admin",
		Short:         "Administer PostPilot users and payments",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(signatureCmd())

	return rootCmd
}
