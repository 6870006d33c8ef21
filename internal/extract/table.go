package extract

// CellPosition is the (row, column) provenance of an extracted value in the
// reconstructed grid.
type CellPosition struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ParameterReading is one extracted (value, unit, confidence) triple for one
// parameter of one row. Created by the pipeline; mutated only by operator
// edits in the review tooling, never by the pipeline itself.
type ParameterReading struct {
	// Value preserves the textual form of the extracted value.
	Value string `json:"value"`
	// NumericValue is the parsed value; meaningful only when IsNumeric is true.
	NumericValue float64 `json:"numeric_value"`
	IsNumeric    bool    `json:"is_numeric"`

	Unit string `json:"unit"`

	// Confidence is in [0,1] and already includes the quality penalty for
	// non-numeric reads.
	Confidence float64 `json:"confidence"`

	CellPosition CellPosition `json:"cell_position"`
	OriginalText string       `json:"original_text"`

	// IsVerified is the operator sign-off flag, set by review tooling.
	IsVerified bool `json:"is_verified"`
}

// ExtractedReading is one row's worth of parameters keyed by a row
// identifier: a timestamp ("14:30"), a well name, or a synthetic "Row-N".
type ExtractedReading struct {
	RowIdentifier string                      `json:"row_identifier"`
	Date          string                      `json:"date,omitempty"`
	Parameters    map[string]ParameterReading `json:"parameters"`
}

// MeanConfidence averages the cell confidences of the reading; 0 for an
// empty reading.
func (r ExtractedReading) MeanConfidence() float64 {
	if len(r.Parameters) == 0 {
		return 0
	}
	var sum float64
	for _, p := range r.Parameters {
		sum += p.Confidence
	}
	return sum / float64(len(r.Parameters))
}

// ExtractedTable is the full result of reconstructing one document page. One
// instance is produced per OCR invocation and replaced wholesale on
// re-processing.
type ExtractedTable struct {
	// Headers holds the parameter names in column order, excluding the row
	// identifier column.
	Headers  []string           `json:"headers"`
	Readings []ExtractedReading `json:"readings"`

	// RowsDiscarded counts candidate rows rejected by the minimum-field
	// noise filter.
	RowsDiscarded int `json:"rows_discarded"`

	// Degraded is set when a lower-fidelity strategy produced the result:
	// the broadened row-identifier pattern or the text-line fallback parser.
	Degraded bool `json:"degraded,omitempty"`
}
