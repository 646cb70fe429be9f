// Package cmd implements the enki command line.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "enki",
	Short: "Multilingual media catalog",
	Long: `enki catalogs chapters, literary works, movies, videos and video games
with multilingual titles, and serves them over HTTP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
