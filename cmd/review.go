package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fieldsheet/internal/assist"
	"fieldsheet/internal/extract"
	"fieldsheet/internal/logger"
	"fieldsheet/pkg/models"
)

var reviewCmd = &cobra.Command{
	Use:   "review [extraction-file]",
	Short: "Summarize extraction quality and flag values for review",
	Long: `Read an extraction JSON produced by the extract or batch commands and
print its quality summary: reading and cell counts, mean confidence, and the
cells below the review threshold, worst first.

With --suggest, ChatGPT is asked to sanity-check the flagged values against
the rest of their row and propose likely corrections (requires
OPENAI_API_KEY). Suggestions are advisory; nothing is modified.`,
	Example: `  # Show what needs operator attention
  fieldsheet review readings.json

  # Stricter threshold
  fieldsheet review readings.json --threshold 0.7

  # Ask ChatGPT for correction proposals
  fieldsheet review readings.json --suggest`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().Float64("threshold", 0.5, "Confidence below which a cell is flagged")
	reviewCmd.Flags().Bool("suggest", false, "Ask ChatGPT for correction suggestions on flagged cells")
}

func runReview(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("review")

	threshold, _ := cmd.Flags().GetFloat64("threshold")
	suggest, _ := cmd.Flags().GetBool("suggest")

	payload, err := loadPayload(args[0])
	if err != nil {
		return err
	}

	table := tableFromPayload(payload)
	summary := extract.Summarize(table, threshold)

	log.Info().
		Str("file", args[0]).
		Int("readings", summary.ReadingCount).
		Int("flagged", len(summary.LowConfidenceCells)).
		Msg("Reviewing extraction")

	fmt.Printf("Source:          %s\n", payload.SourceFile)
	fmt.Printf("Profile:         %s\n", payload.Profile)
	fmt.Printf("Engine:          %s\n", payload.Engine)
	fmt.Printf("Readings:        %d\n", summary.ReadingCount)
	fmt.Printf("Cells:           %d\n", summary.CellCount)
	fmt.Printf("Mean confidence: %.2f\n", summary.MeanConfidence)
	fmt.Printf("Min confidence:  %.2f\n", summary.MinConfidence)
	fmt.Printf("Rows discarded:  %d\n", summary.RowsDiscarded)
	if summary.Degraded {
		fmt.Println("Degraded:        yes (positional text fallback was used)")
	}
	fmt.Println()

	if len(summary.LowConfidenceCells) == 0 {
		fmt.Printf("No cells below %.2f confidence.\n", threshold)
		return nil
	}

	fmt.Printf("Cells below %.2f confidence (worst first):\n\n", threshold)
	for _, cell := range summary.LowConfidenceCells {
		fmt.Printf("  %-10s %-28s %-12q %.2f\n", cell.RowIdentifier, cell.Parameter, cell.Value, cell.Confidence)
	}

	if !suggest {
		return nil
	}

	fmt.Println()
	fmt.Println("Correction suggestions:")
	return suggestCorrections(payload, summary, threshold)
}

// tableFromPayload rebuilds the in-memory table shape from a stored payload.
func tableFromPayload(payload *models.ExtractionPayload) *extract.ExtractedTable {
	table := &extract.ExtractedTable{
		Headers:       payload.Headers,
		RowsDiscarded: payload.RowsDiscarded,
		Degraded:      payload.Degraded,
	}
	for _, reading := range payload.Readings {
		r := extract.ExtractedReading{
			RowIdentifier: reading.RowIdentifier,
			Date:          reading.Date,
			Parameters:    map[string]extract.ParameterReading{},
		}
		for _, param := range reading.Parameters {
			r.Parameters[param.ParameterName] = extract.ParameterReading{
				Value:        param.ValueText,
				NumericValue: param.ParameterValue,
				IsNumeric:    param.IsNumeric,
				Unit:         param.Unit,
				Confidence:   param.ConfidenceScore,
				CellPosition: extract.CellPosition{Row: param.CellPosition.Row, Col: param.CellPosition.Col},
				IsVerified:   param.IsVerified,
			}
		}
		table.Readings = append(table.Readings, r)
	}
	return table
}

// suggestCorrections asks ChatGPT about every reading that has flagged cells.
func suggestCorrections(payload *models.ExtractionPayload, summary extract.QualitySummary, threshold float64) error {
	service, err := assist.NewService(os.Getenv("OPENAI_API_KEY"))
	if err != nil {
		return err
	}

	flaggedRows := make(map[string]bool)
	for _, cell := range summary.LowConfidenceCells {
		flaggedRows[cell.RowIdentifier] = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	anySuggestion := false
	for _, reading := range payload.Readings {
		if !flaggedRows[reading.RowIdentifier] {
			continue
		}
		suggestions, err := service.SuggestCorrections(ctx, reading, threshold)
		if err != nil {
			return fmt.Errorf("suggestion request failed for row %s: %w", reading.RowIdentifier, err)
		}
		for _, s := range suggestions {
			anySuggestion = true
			fmt.Printf("  %-10s %-28s %q -> %q (%.2f) %s\n",
				reading.RowIdentifier, s.Parameter, s.CurrentValue, s.SuggestedValue, s.Confidence, s.Reason)
		}
	}

	if !anySuggestion {
		fmt.Println("  No correction suggestions.")
	}
	return nil
}
