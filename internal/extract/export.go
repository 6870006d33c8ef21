package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"fieldsheet/pkg/models"
)

var headerUnitSuffix = regexp.MustCompile(`\s*\([^)]*\)$`)

// WriteCSV renders the table as CSV: one header row of parameter names with
// units in parentheses, then one row per reading with "value unit" cells.
// Cells for parameters a reading is missing are left empty.
func WriteCSV(w io.Writer, table *ExtractedTable) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(table.Headers)+1)
	header = append(header, "Identifier")
	for _, name := range table.Headers {
		unit := tableUnit(table, name)
		if unit != "" {
			header = append(header, fmt.Sprintf("%s (%s)", name, unit))
		} else {
			header = append(header, name)
		}
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, reading := range table.Readings {
		record := make([]string, 0, len(header))
		record = append(record, reading.RowIdentifier)
		for _, name := range table.Headers {
			p, ok := reading.Parameters[name]
			if !ok {
				record = append(record, "")
				continue
			}
			record = append(record, cellText(p))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row %s: %w", reading.RowIdentifier, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ParseCSVHeader strips the "(unit)" suffixes from an exported header record,
// recovering the bare parameter names.
func ParseCSVHeader(record []string) []string {
	names := make([]string, len(record))
	for i, cell := range record {
		names[i] = headerUnitSuffix.ReplaceAllString(strings.TrimSpace(cell), "")
	}
	return names
}

// cellText renders one cell as "value unit". The unit rides along in every
// cell, not just the header, so a cell whose captured unit differs from the
// column's usual one keeps it.
func cellText(p ParameterReading) string {
	value := strings.TrimSpace(p.Value)
	if value == "" || p.Unit == "" {
		return value
	}
	return value + " " + p.Unit
}

// tableUnit finds the unit used for a parameter by scanning the readings;
// units are uniform within a column in practice.
func tableUnit(table *ExtractedTable, name string) string {
	for _, reading := range table.Readings {
		if p, ok := reading.Parameters[name]; ok && p.Unit != "" {
			return p.Unit
		}
	}
	return ""
}

// ToPayload converts a table into the wire shape shared by the CLI output,
// the store, and the review tooling. Parameters come out in header order.
func ToPayload(table *ExtractedTable, id, sourceFile, profile, engine string) *models.ExtractionPayload {
	payload := &models.ExtractionPayload{
		ID:            id,
		SourceFile:    sourceFile,
		Profile:       profile,
		Engine:        engine,
		Headers:       table.Headers,
		RowsDiscarded: table.RowsDiscarded,
		Degraded:      table.Degraded,
		ProcessedAt:   time.Now().UTC(),
	}

	for _, reading := range table.Readings {
		rp := models.ReadingPayload{
			RowIdentifier: reading.RowIdentifier,
			Date:          reading.Date,
		}
		for _, name := range table.Headers {
			p, ok := reading.Parameters[name]
			if !ok {
				continue
			}
			rp.Parameters = append(rp.Parameters, models.ParameterPayload{
				ParameterName:   name,
				ParameterValue:  p.NumericValue,
				ValueText:       p.Value,
				IsNumeric:       p.IsNumeric,
				Unit:            p.Unit,
				ConfidenceScore: p.Confidence,
				CellPosition:    models.CellPosition{Row: p.CellPosition.Row, Col: p.CellPosition.Col},
				IsVerified:      p.IsVerified,
			})
		}
		payload.Readings = append(payload.Readings, rp)
	}

	return payload
}
