package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fieldsheet/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "fieldsheet",
	Short: "Fieldsheet CLI - digitize handwritten production sheets",
	Long: `Fieldsheet CLI turns photographed or scanned field sheets (well-test
reports, gas-compressor hourly logs) into structured, reviewable readings.

Documents go through OCR (local Tesseract or Google Cloud engines), spatial
table reconstruction, and confidence scoring, so operators review flagged
values instead of retyping whole sheets.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("Fieldsheet CLI executed")

		fmt.Println("Welcome to Fieldsheet CLI!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
