package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fieldsheet/internal/config"
	"fieldsheet/internal/extract"
	"fieldsheet/internal/logger"
	"fieldsheet/internal/ocr"
	"fieldsheet/internal/sheets"
	"fieldsheet/internal/store"
	"fieldsheet/pkg/models"
)

var batchCmd = &cobra.Command{
	Use:   "batch [folder-path]",
	Short: "Digitize every sheet image in a folder",
	Long: `Process all sheet images (and PDFs, for cloud engines) in a folder in
parallel, writing one extraction JSON per document to the output folder.

Results can additionally be persisted to the SQLite store and appended to a
Google Sheet. Documents are processed independently; a failed document is
reported and skipped, it never aborts the batch.

Optional environment variables:
  BATCH_WORKERS - Number of parallel workers (default: 4)
  GOOGLE_SHEET_URL - Google Sheets URL for --sheet`,
	Example: `  # Digitize a day's worth of compressor logs
  fieldsheet batch ./logs --profile gas-compressor -o ./extracted

  # Persist everything to the local database
  fieldsheet batch ./logs --profile gas-compressor --db readings.db

  # Append results to the shared Google Sheet
  fieldsheet batch ./logs --engine google-vision --sheet`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

// batchResult is the outcome of processing one document.
type batchResult struct {
	Filename string
	Payload  *models.ExtractionPayload
	Error    error
	Index    int
}

// batchJob is one document handed to a worker.
type batchJob struct {
	FilePath string
	Index    int
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().String("engine", "tesseract", "OCR engine (tesseract, google-vision, document-ai)")
	batchCmd.Flags().String("profile", "generic", "Built-in extraction profile name")
	batchCmd.Flags().String("profile-file", "", "Path to a custom profile JSON file (overrides --profile)")
	batchCmd.Flags().StringP("output", "o", "", "Output folder for extraction JSON files (default: alongside inputs)")
	batchCmd.Flags().String("date", "", "Sheet date carried onto every reading")
	batchCmd.Flags().String("language", "eng", "Tesseract language code")
	batchCmd.Flags().Bool("enhance", false, "Preprocess images before OCR")
	batchCmd.Flags().String("db", "", "SQLite database path to persist extractions")
	batchCmd.Flags().Bool("sheet", false, "Append extractions to the Google Sheet from GOOGLE_SHEET_URL")
	batchCmd.Flags().Int("workers", 0, "Number of parallel workers (default: BATCH_WORKERS or 4)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("batch")

	folderPath := args[0]
	engineName, _ := cmd.Flags().GetString("engine")
	profileName, _ := cmd.Flags().GetString("profile")
	profilePath, _ := cmd.Flags().GetString("profile-file")
	outputDir, _ := cmd.Flags().GetString("output")
	date, _ := cmd.Flags().GetString("date")
	language, _ := cmd.Flags().GetString("language")
	enhance, _ := cmd.Flags().GetBool("enhance")
	dbPath, _ := cmd.Flags().GetString("db")
	toSheet, _ := cmd.Flags().GetBool("sheet")
	workers, _ := cmd.Flags().GetInt("workers")

	folderInfo, err := os.Stat(folderPath)
	if err != nil {
		return fmt.Errorf("folder not found: %s", folderPath)
	}
	if !folderInfo.IsDir() {
		return fmt.Errorf("path is not a directory: %s", folderPath)
	}

	profile, err := resolveProfile(profileName, profilePath)
	if err != nil {
		return err
	}

	files, err := findSheetFiles(folderPath, engineName)
	if err != nil {
		return fmt.Errorf("failed to find sheet files: %w", err)
	}
	if len(files) == 0 {
		fmt.Println("No sheet files found in folder.")
		return nil
	}

	if outputDir == "" {
		outputDir = folderPath
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}

	if workers < 1 {
		cfg, err := config.Load()
		if err == nil {
			workers = cfg.BatchWorkers
		}
		if workers < 1 {
			workers = 4
		}
	}

	log.Info().
		Str("folder", folderPath).
		Str("engine", engineName).
		Str("profile", profile.Name).
		Int("files", len(files)).
		Int("workers", workers).
		Msg("Starting batch extraction")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	engine, err := newOCREngine(ctx, engineName, language, enhance, log)
	if err != nil {
		return err
	}
	defer engine.Close()

	fmt.Printf("Processing %d sheets with %d parallel workers...\n\n", len(files), workers)

	pipeline := extract.NewPipeline(profile, nil)
	results := processSheetsInParallel(ctx, files, engine, pipeline, profile.Name, date, outputDir, workers)

	successCount := 0
	errorCount := 0
	degradedCount := 0
	for _, result := range results {
		switch {
		case result.Error != nil:
			errorCount++
		case result.Payload.Degraded:
			degradedCount++
			successCount++
		default:
			successCount++
		}
	}

	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Processed:  %d\n", successCount)
	if degradedCount > 0 {
		fmt.Printf("Degraded:   %d\n", degradedCount)
	}
	if errorCount > 0 {
		fmt.Printf("Failed:     %d\n", errorCount)
	}
	fmt.Println(strings.Repeat("=", 50))

	if dbPath != "" {
		if err := persistBatch(results, dbPath, log); err != nil {
			return err
		}
		fmt.Printf("Database: %s\n", dbPath)
	}

	if toSheet {
		if err := appendBatchToSheet(ctx, results, log); err != nil {
			return err
		}
	}

	log.Info().
		Int("total", len(files)).
		Int("success", successCount).
		Int("degraded", degradedCount).
		Int("errors", errorCount).
		Msg("Batch extraction completed")

	return nil
}

// findSheetFiles finds processable documents in the folder. PDFs are included
// only for cloud engines; the local engine cannot read them.
func findSheetFiles(folderPath, engineName string) ([]string, error) {
	extensions := map[string]bool{".jpg": true, ".jpeg": true, ".png": true}
	if engineName != "tesseract" {
		extensions[".pdf"] = true
	}

	var files []string
	err := filepath.Walk(folderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && extensions[strings.ToLower(filepath.Ext(info.Name()))] {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// processSheetsInParallel fans documents out to a worker pool, collecting
// results at their original index so output order is stable.
func processSheetsInParallel(ctx context.Context, files []string, engine ocr.Engine, pipeline *extract.Pipeline, profileName, date, outputDir string, numWorkers int) []batchResult {
	jobs := make(chan batchJob, len(files))
	results := make([]batchResult, len(files))

	var processedCount int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for job := range jobs {
				fileLog := logger.WithFile(job.FilePath)
				fileLog.Debug().
					Int("worker", workerID).
					Msg("Worker processing sheet")

				result := processSingleSheet(ctx, job.FilePath, engine, pipeline, profileName, date, outputDir)
				result.Index = job.Index
				result.Filename = filepath.Base(job.FilePath)
				results[job.Index] = result

				mu.Lock()
				processedCount++
				fmt.Printf("[%d/%d] %s", processedCount, len(files), result.Filename)
				if result.Error != nil {
					fmt.Printf(" - FAILED (%s)", result.Error.Error())
				} else {
					fmt.Printf(" - %d readings", len(result.Payload.Readings))
					if result.Payload.Degraded {
						fmt.Printf(" (degraded)")
					}
				}
				fmt.Println()
				mu.Unlock()
			}
		}(w)
	}

	for i, file := range files {
		jobs <- batchJob{FilePath: file, Index: i}
	}
	close(jobs)

	wg.Wait()
	return results
}

// processSingleSheet digitizes one document and writes its extraction JSON.
func processSingleSheet(ctx context.Context, path string, engine ocr.Engine, pipeline *extract.Pipeline, profileName, date, outputDir string) batchResult {
	result := batchResult{}

	pages, err := recognizeFile(ctx, engine, path)
	if err != nil {
		result.Error = fmt.Errorf("OCR failed: %w", err)
		return result
	}

	merged := &extract.ExtractedTable{}
	for pageIdx, page := range pages {
		table, err := pipeline.Run(pageInput(page, date))
		if err != nil {
			result.Error = fmt.Errorf("extraction failed on page %d: %w", pageIdx+1, err)
			return result
		}
		if len(merged.Headers) == 0 {
			merged.Headers = table.Headers
		}
		merged.Readings = append(merged.Readings, table.Readings...)
		merged.RowsDiscarded += table.RowsDiscarded
		merged.Degraded = merged.Degraded || table.Degraded
	}

	payload := extract.ToPayload(merged, uuid.NewString(), filepath.Base(path), profileName, engine.Name())
	result.Payload = payload

	outPath := filepath.Join(outputDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+".json")
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		result.Error = fmt.Errorf("failed to marshal extraction: %w", err)
		return result
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		result.Error = fmt.Errorf("failed to write extraction file: %w", err)
		return result
	}

	return result
}

// persistBatch saves all successful extractions to the SQLite store.
func persistBatch(results []batchResult, dbPath string, log zerolog.Logger) error {
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	saved := 0
	for _, result := range results {
		if result.Error != nil || result.Payload == nil {
			continue
		}
		if _, err := db.SaveExtraction(result.Payload); err != nil {
			log.Warn().
				Err(err).
				Str("file", result.Filename).
				Msg("Failed to persist extraction")
			continue
		}
		saved++
	}

	log.Info().Int("saved", saved).Str("db", dbPath).Msg("Persisted extractions")
	return nil
}

// appendBatchToSheet appends all successful extractions to the configured
// Google Sheet.
func appendBatchToSheet(ctx context.Context, results []batchResult, log zerolog.Logger) error {
	sheetURL := os.Getenv("GOOGLE_SHEET_URL")
	if sheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL environment variable is required for --sheet")
	}
	worksheet := os.Getenv("GOOGLE_SHEET_WORKSHEET")
	if worksheet == "" {
		worksheet = "Readings"
	}

	service, err := sheets.NewService(ctx, sheetURL)
	if err != nil {
		return fmt.Errorf("failed to create Google Sheets service: %w", err)
	}

	fmt.Println("Appending results to Google Sheet...")
	appended := 0
	for _, result := range results {
		if result.Error != nil || result.Payload == nil {
			continue
		}
		if err := service.AppendExtraction(ctx, worksheet, result.Payload); err != nil {
			log.Warn().
				Err(err).
				Str("file", result.Filename).
				Msg("Failed to append extraction to sheet")
			continue
		}
		appended++
	}

	fmt.Printf("Sheet: %s (%d extractions appended)\n", worksheet, appended)
	return nil
}
