// Package cli wires the bean commands: analyze, diff, and version.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bean",
	Short: "Bean - structural model extractor and differ",
	Long: `Bean parses a source tree into a structural model (modules, classes,
functions, call edges, complexity metrics) and compares models across
versions with rename detection.

Configuration is read from .bean/config.yml in the analyzed directory,
with BEAN_* environment variable overrides.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "disable progress bars and non-error output")
}
