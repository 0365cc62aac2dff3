// Package main provides the isbaseurl command: score candidate API base URLs
// from the command line, rank the links of a saved HTML page, or run the
// scoring service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "isbaseurl",
	Short: "Heuristic classifier for web API base URLs",
	Long: "isbaseurl scores how likely a URL is to be the base endpoint of a web API, " +
		"using lexical features such as an 'api' token, version markers and file extensions.",
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
