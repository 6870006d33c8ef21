package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"fieldsheet/internal/extract"
	"fieldsheet/internal/logger"
	"fieldsheet/pkg/models"
)

var extractCmd = &cobra.Command{
	Use:   "extract [sheet-file]",
	Short: "Digitize a field sheet into structured readings",
	Long: `Process a photographed or scanned field sheet through OCR and table
reconstruction, producing structured (row, parameter, value, unit, confidence)
readings.

The extraction profile controls how the table is reconstructed: built-in
profiles exist for generic header-labeled sheets and the calibrated
gas-compressor hourly log, and custom profiles can be loaded from JSON.

Engines:
  tesseract      - local, offline, images only (default)
  google-vision  - Google Cloud Vision, images and PDFs
  document-ai    - Google Document AI OCR processor, images and PDFs

Cloud engines need credentials:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string`,
	Example: `  # Digitize a compressor log photo with the calibrated profile
  fieldsheet extract log.jpg --profile gas-compressor

  # Use Google Vision and write JSON to a file
  fieldsheet extract sheet.jpg --engine google-vision -o readings.json

  # Export CSV with the sheet date attached to every reading
  fieldsheet extract sheet.jpg --format csv --date 2024-03-15 -o readings.csv

  # Custom profile from a calibration file
  fieldsheet extract log.pdf --engine document-ai --profile-file rig7.json`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("engine", "tesseract", "OCR engine (tesseract, google-vision, document-ai)")
	extractCmd.Flags().String("profile", "generic", "Built-in extraction profile name")
	extractCmd.Flags().String("profile-file", "", "Path to a custom profile JSON file (overrides --profile)")
	extractCmd.Flags().String("format", "json", "Output format (json, csv)")
	extractCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().String("date", "", "Sheet date carried onto every reading (e.g. 2024-03-15)")
	extractCmd.Flags().String("language", "eng", "Tesseract language code")
	extractCmd.Flags().Bool("enhance", false, "Preprocess the image before OCR (grayscale, contrast, sharpen)")
	extractCmd.Flags().Int("min-fields", 0, "Override the profile's minimum parsed fields per row")
	extractCmd.Flags().Int("page", 0, "Extract a single page of a PDF (1-based, default: all)")
	extractCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract-cmd")

	engineName, _ := cmd.Flags().GetString("engine")
	profileName, _ := cmd.Flags().GetString("profile")
	profilePath, _ := cmd.Flags().GetString("profile-file")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	date, _ := cmd.Flags().GetString("date")
	language, _ := cmd.Flags().GetString("language")
	enhance, _ := cmd.Flags().GetBool("enhance")
	minFields, _ := cmd.Flags().GetInt("min-fields")
	page, _ := cmd.Flags().GetInt("page")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	sheetPath := args[0]
	if _, err := os.Stat(sheetPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("sheet file not found: %s", sheetPath)
		}
		return fmt.Errorf("error accessing sheet file: %w", err)
	}

	profile, err := resolveProfile(profileName, profilePath)
	if err != nil {
		return err
	}
	if minFields > 0 {
		profile.MinFields = minFields
	}

	log.Info().
		Str("file", sheetPath).
		Str("engine", engineName).
		Str("profile", profile.Name).
		Str("format", format).
		Msg("Starting sheet extraction")

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	engine, err := newOCREngine(ctx, engineName, language, enhance, log)
	if err != nil {
		return err
	}
	defer engine.Close()

	results, err := recognizeFile(ctx, engine, sheetPath)
	if err != nil {
		return handleOCRError(err, log)
	}

	if page > 0 {
		if page > len(results) {
			return fmt.Errorf("page %d out of range: document has %d pages", page, len(results))
		}
		results = results[page-1 : page]
	}

	pipeline := extract.NewPipeline(profile, nil)

	// Merge all pages of a document into one extraction; page tables are
	// concatenated in order.
	merged := &extract.ExtractedTable{}
	for pageIdx, result := range results {
		table, err := pipeline.Run(pageInput(result, date))
		if err != nil {
			return fmt.Errorf("failed to extract page %d: %w", pageIdx+1, err)
		}
		if len(merged.Headers) == 0 {
			merged.Headers = table.Headers
		}
		merged.Readings = append(merged.Readings, table.Readings...)
		merged.RowsDiscarded += table.RowsDiscarded
		merged.Degraded = merged.Degraded || table.Degraded
	}

	log.Info().
		Int("readings", len(merged.Readings)).
		Int("rows_discarded", merged.RowsDiscarded).
		Bool("degraded", merged.Degraded).
		Msg("Extraction completed")

	return writeExtractOutput(merged, sheetPath, profile.Name, engine.Name(), format, outputPath)
}

func writeExtractOutput(table *extract.ExtractedTable, sheetPath, profileName, engineName, format, outputPath string) error {
	var out *os.File
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	} else {
		out = os.Stdout
	}

	switch strings.ToLower(format) {
	case "csv":
		return extract.WriteCSV(out, table)
	case "json":
		payload := extract.ToPayload(table, uuid.NewString(), filepath.Base(sheetPath), profileName, engineName)
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	default:
		return fmt.Errorf("unknown output format: %s (available: json, csv)", format)
	}
}

// loadPayload reads a previously written extraction JSON, shared by the
// review and store commands.
func loadPayload(path string) (*models.ExtractionPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction file: %w", err)
	}
	var payload models.ExtractionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse extraction file %s: %w", path, err)
	}
	return &payload, nil
}
