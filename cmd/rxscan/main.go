// Command rxscan submits prescription images to a running analysis server
// and writes the rendered report page.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rxscan",
		Short:         "Analyse prescription images for pregnancy risk",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		analyzeCmd(),
		catalogCmd(),
		versionCmd(),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rxscan %s (%s)\n", version, commit)
		},
	}
}
