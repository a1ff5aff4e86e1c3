// Package commands implements the csmasimctl CLI commands.
package commands

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	// httpClient is the HTTP client used to talk to a running daemon.
	httpClient = &http.Client{Timeout: 30 * time.Second}

	// outputFormat controls the output format for all commands (table or json).
	outputFormat string

	// serverAddr is the daemon address (host:port) used by commands that
	// talk to a running csmasimd instance.
	serverAddr string
)

// rootCmd is the top-level cobra command for csmasimctl.
var rootCmd = &cobra.Command{
	Use:   "csmasimctl",
	Short: "CLI for the slotted CSMA/CA simulator",
	Long:  "csmasimctl runs CSMA/CA simulations locally or against a running csmasimd daemon.",
	// Silence cobra's built-in usage/error printing so we control it.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "addr", "localhost:8080",
		"csmasimd daemon address (host:port)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table",
		"output format: table, json")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(versionCmd())
}

// Execute runs the root command and exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
