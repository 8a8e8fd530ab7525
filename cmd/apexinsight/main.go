package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:                   "apexinsight [command]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Short:                 "ApexInsight scans Apex classes for performance antipatterns.",
	Long: `ApexInsight statically analyzes Apex class files for known performance
antipatterns and emits severity-ranked findings with fix instructions,
optionally enriched with runtime telemetry fetched from an org.`,
}

func init() {
	rootCmd.AddCommand(newScanCmd())
}

func main() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
