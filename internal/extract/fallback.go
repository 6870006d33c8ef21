package extract

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	fallbackTimePattern   = regexp.MustCompile(`\b(\d{1,2}[.:]\d{2})\b`)
	fallbackNumberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// Minimum numbers for a text line to qualify as a reading: a line keyed by a
// clock time needs only a few values, an unkeyed line needs enough numbers
// that it cannot plausibly be prose or a header.
const (
	fallbackMinNumbersWithTime = 3
	fallbackMinNumbersBare     = 8
)

// ParseFallback recovers readings from the OCR engine's plain line text when
// spatial reconstruction produced nothing. It scans each line for a clock
// time and a run of numbers, and assigns the numbers positionally to the
// profile's column order (or the catalog's generic order). Positional
// assignment is guesswork compared to bounding-box mapping, so every value
// carries the profile's fixed fallback confidence.
func ParseFallback(text string, profile Profile, catalog *ParameterCatalog, date string) *ExtractedTable {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	params := profile.FallbackParameters(catalog)
	table := &ExtractedTable{Headers: params, Degraded: true}

	lineNo := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lineNo++

		identifier := ""
		rest := line
		if m := fallbackTimePattern.FindString(line); m != "" {
			identifier = normalizeTime(m)
			// Remove the time so its digits don't count as values.
			rest = strings.Replace(line, m, " ", 1)
		}

		numbers := fallbackNumberPattern.FindAllString(rest, -1)
		if identifier != "" {
			if len(numbers) < fallbackMinNumbersWithTime {
				continue
			}
		} else {
			if len(numbers) < fallbackMinNumbersBare {
				continue
			}
			identifier = fmt.Sprintf("Row-%d", lineNo)
		}

		reading := ExtractedReading{
			RowIdentifier: identifier,
			Date:          date,
			Parameters:    map[string]ParameterReading{},
		}

		rowIdx := len(table.Readings)
		col := 0
		for _, num := range numbers {
			if col >= len(params) {
				break
			}
			vu := ExtractValueUnit(num)
			if vu.IsNumeric && vu.Numeric < 0 {
				continue
			}
			name := params[col]
			reading.Parameters[name] = ParameterReading{
				Value:        vu.Value,
				NumericValue: vu.Numeric,
				IsNumeric:    vu.IsNumeric,
				Unit:         fallbackUnit(profile, catalog, name),
				Confidence:   profile.FallbackConfidence,
				CellPosition: CellPosition{Row: rowIdx, Col: col + 1},
				OriginalText: num,
			}
			col++
		}

		if len(reading.Parameters) == 0 {
			continue
		}
		table.Readings = append(table.Readings, reading)
	}

	return table
}

func fallbackUnit(profile Profile, catalog *ParameterCatalog, name string) string {
	for _, col := range profile.Columns {
		if col.ParameterName == name {
			return col.Unit
		}
	}
	return catalog.DefaultUnit(name)
}
