package models

import "time"

// CellPosition records where a value was found in the reconstructed grid,
// kept for audit and debugging of OCR extractions.
type CellPosition struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// ParameterPayload is one extracted cell in the shape the review and
// persistence layers expect.
type ParameterPayload struct {
	ParameterName string `json:"parameter_name"`

	// ParameterValue is the parsed numeric value, or 0 when the cell text
	// never parsed as a number. ValueText always preserves the original form.
	ParameterValue float64 `json:"parameter_value"`
	ValueText      string  `json:"value_text"`
	IsNumeric      bool    `json:"is_numeric"`

	Unit string `json:"unit"`

	// ConfidenceScore is in [0,1]; it already includes any quality penalty
	// applied for non-numeric reads.
	ConfidenceScore float64      `json:"confidence_score"`
	CellPosition    CellPosition `json:"cell_position"`

	// IsVerified is the operator sign-off flag. The extraction pipeline never
	// sets it; only review tooling does.
	IsVerified bool `json:"is_verified"`
}

// ReadingPayload groups the parameters of one table row, keyed by a row
// identifier (a time of day like "14:30", a well name, or a synthetic
// "Row-N" label from the fallback parser).
type ReadingPayload struct {
	RowIdentifier string             `json:"row_identifier"`
	Date          string             `json:"date,omitempty"` // ISO date of the sheet
	Parameters    []ParameterPayload `json:"parameters"`
}

// ExtractionPayload is the full result of digitizing one document page.
type ExtractionPayload struct {
	ID         string `json:"id"`
	SourceFile string `json:"source_file,omitempty"`
	Profile    string `json:"profile,omitempty"`
	Engine     string `json:"engine,omitempty"`

	Headers  []string         `json:"headers"`
	Readings []ReadingPayload `json:"readings"`

	// RowsDiscarded counts candidate rows rejected by the minimum-field
	// noise filter, surfaced so operators know how much was dropped.
	RowsDiscarded int `json:"rows_discarded"`

	// Degraded marks results produced by a lower-fidelity strategy (broadened
	// row identifiers or the text-line fallback parser).
	Degraded bool `json:"degraded,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`
}
