// Package cli implements the prism command-line client.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var host string
	var output string

	rootCmd := &cobra.Command{
		Use:           "prism",
		Short:         "Prism metric query CLI",
		Long:          "Command-line interface for the prism metric query API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// Precedence: flag > env > default.
			if !cmd.Flags().Changed("host") {
				if v := os.Getenv("PRISM_HOST"); v != "" {
					host = v
				}
			}
			cmd.SetContext(withClient(cmd.Context(), newClient(host)))
		},
	}

	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "prism server base URL")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format: table or json")

	rootCmd.AddCommand(
		newExploresCmd(),
		newQueryCmd(),
		newHistoryCmd(),
		newCommandsCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func outputFormat(cmd *cobra.Command) string {
	out, _ := cmd.Flags().GetString("output")
	return out
}
