package extract

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"fieldsheet/internal/logger"
)

// Row-identifier patterns for calibrated layouts. The strict form matches the
// clock times hourly logs are keyed by ("14:30", also "14.30" when OCR reads
// the colon as a period). When a page yields no strict anchors at all, OCR has
// usually mangled every colon, so a degraded pass accepts bare one- or
// two-digit numbers as hour markers.
var (
	strictAnchorPattern   = regexp.MustCompile(`^\d{1,2}[.:]\d{2}$`)
	degradedAnchorPattern = regexp.MustCompile(`^\d{1,2}$`)
)

// Assembler reconstructs an ExtractedTable from OCR tokens according to one
// document profile.
type Assembler struct {
	profile Profile
	catalog *ParameterCatalog
	log     zerolog.Logger
}

// NewAssembler creates an assembler for the given profile. A nil catalog gets
// the built-in default.
func NewAssembler(profile Profile, catalog *ParameterCatalog) *Assembler {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Assembler{
		profile: profile,
		catalog: catalog,
		log:     logger.WithComponent("extract"),
	}
}

// Assemble reconstructs the table from the token stream. pageWidth is the
// pixel width of the recognized page, used to scale calibrated column
// positions; date is carried onto every reading verbatim. The result may hold
// zero readings; that is not an error, the caller decides whether to fall
// back to line-text parsing.
func (a *Assembler) Assemble(tokens []Token, pageWidth float64, date string) *ExtractedTable {
	if a.profile.Calibrated() {
		return a.assembleCalibrated(tokens, pageWidth, date)
	}
	return a.assembleFromHeader(tokens, date)
}

// assembleCalibrated anchors each reading on a row-identifier token and
// gathers the parameters on its horizontal band via the calibrated column
// layout.
func (a *Assembler) assembleCalibrated(tokens []Token, pageWidth float64, date string) *ExtractedTable {
	mapper := NewCalibratedMapper(a.profile.Columns, pageWidth, a.profile.ReferenceWidth)
	table := &ExtractedTable{Headers: ParameterNames(a.profile.Columns)}

	anchors := findAnchors(tokens, strictAnchorPattern)
	if len(anchors) == 0 {
		anchors = findAnchors(tokens, degradedAnchorPattern)
		if len(anchors) > 0 {
			table.Degraded = true
			a.log.Warn().
				Int("anchors", len(anchors)).
				Msg("No time-pattern row identifiers found, using bare numbers as hour markers")
		}
	}

	for rowIdx, anchor := range anchors {
		reading := ExtractedReading{
			RowIdentifier: normalizeTime(anchor.Text),
			Date:          date,
			Parameters:    map[string]ParameterReading{},
		}

		anchorY := anchor.BBox.CenterY()
		for i := range tokens {
			tok := &tokens[i]
			if tok == anchor || absDiff(tok.BBox.CenterY(), anchorY) >= a.profile.RowTolerance {
				continue
			}
			col := mapper.Match(*tok)
			if col == nil || col.Identifier {
				continue
			}
			if _, taken := reading.Parameters[col.ParameterName]; taken {
				// First token per column wins; later matches are usually
				// smudges or bleed-through from adjacent cells.
				continue
			}
			if p, ok := a.buildParameter(*tok, col, rowIdx, columnIndex(a.profile.Columns, col)); ok {
				reading.Parameters[col.ParameterName] = p
			}
		}

		if len(reading.Parameters) < a.profile.MinFields {
			table.RowsDiscarded++
			a.log.Debug().
				Str("row", reading.RowIdentifier).
				Int("fields", len(reading.Parameters)).
				Int("min_fields", a.profile.MinFields).
				Msg("Discarding sparse row")
			continue
		}
		table.Readings = append(table.Readings, reading)
	}

	return table
}

// assembleFromHeader clusters tokens into rows, reads column labels off the
// first row, and treats every later row as data keyed by its first cell.
func (a *Assembler) assembleFromHeader(tokens []Token, date string) *ExtractedTable {
	rows := ClusterRows(tokens, a.profile.RowTolerance)
	table := &ExtractedTable{}
	if len(rows) < 2 {
		return table
	}

	mapper := NewHeaderMapper(rows[0], a.catalog)
	table.Headers = ParameterNames(mapper.Columns())
	known := make(map[string]bool, len(table.Headers))
	for _, name := range table.Headers {
		known[name] = true
	}

	for rowIdx, row := range rows[1:] {
		if len(row.Tokens) == 0 {
			continue
		}
		identifier := strings.TrimSpace(row.Tokens[0].Text)
		if utf8.RuneCountInString(identifier) < 2 {
			// A one-character first cell is almost never a well name or a
			// time; the row is noise.
			table.RowsDiscarded++
			continue
		}

		reading := ExtractedReading{
			RowIdentifier: identifier,
			Date:          date,
			Parameters:    map[string]ParameterReading{},
		}

		columns := mapper.MapRow(row)
		var newNames []string
		for i := 1; i < len(row.Tokens); i++ {
			col := columns[i]
			if col == nil || col.Identifier {
				continue
			}
			if _, taken := reading.Parameters[col.ParameterName]; taken {
				continue
			}
			if p, ok := a.buildParameter(row.Tokens[i], col, rowIdx, i); ok {
				reading.Parameters[col.ParameterName] = p
				if !known[col.ParameterName] {
					newNames = append(newNames, col.ParameterName)
				}
			}
		}

		if len(reading.Parameters) < a.profile.MinFields {
			table.RowsDiscarded++
			continue
		}
		// Rows wider than the header carry synthetic column labels; surface
		// them in Headers so exports and summaries keep their values.
		for _, name := range newNames {
			known[name] = true
			table.Headers = append(table.Headers, name)
		}
		table.Readings = append(table.Readings, reading)
	}

	return table
}

// buildParameter parses one cell token into a ParameterReading. Negative
// numbers are dropped outright: none of the measured quantities can be
// negative, so a leading minus is always a misread stray mark.
func (a *Assembler) buildParameter(tok Token, col *ColumnDefinition, rowIdx, colIdx int) (ParameterReading, bool) {
	vu := ExtractValueUnit(tok.Text)
	if vu.Value == "" {
		return ParameterReading{}, false
	}
	if vu.IsNumeric && vu.Numeric < 0 {
		return ParameterReading{}, false
	}

	unit := vu.Unit
	if unit == "" {
		unit = col.Unit
	}
	if unit == "" {
		unit = a.catalog.DefaultUnit(col.ParameterName)
	}

	confidence := tok.Confidence
	if !vu.IsNumeric {
		confidence *= a.profile.QualityPenalty
	}

	return ParameterReading{
		Value:        vu.Value,
		NumericValue: vu.Numeric,
		IsNumeric:    vu.IsNumeric,
		Unit:         unit,
		Confidence:   confidence,
		CellPosition: CellPosition{Row: rowIdx, Col: colIdx},
		OriginalText: tok.Text,
	}, true
}

func absDiff(a, b float64) float64 { return math.Abs(a - b) }

// findAnchors returns pointers into tokens whose trimmed text matches the
// pattern, preserving stream order.
func findAnchors(tokens []Token, pattern *regexp.Regexp) []*Token {
	var anchors []*Token
	for i := range tokens {
		if pattern.MatchString(strings.TrimSpace(tokens[i].Text)) {
			anchors = append(anchors, &tokens[i])
		}
	}
	return anchors
}

// normalizeTime rewrites the OCR period-for-colon confusion in clock times.
func normalizeTime(text string) string {
	trimmed := strings.TrimSpace(text)
	if strictAnchorPattern.MatchString(trimmed) {
		return strings.Replace(trimmed, ".", ":", 1)
	}
	return trimmed
}

// columnIndex resolves the definition-order index of col, falling back to the
// column's position being unknown (-1) for synthetic header columns.
func columnIndex(columns []ColumnDefinition, col *ColumnDefinition) int {
	for i := range columns {
		if columns[i].ID == col.ID {
			return i
		}
	}
	return -1
}
