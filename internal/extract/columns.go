package extract

import (
	"fmt"
	"math"
	"strings"
)

// ColumnDefinition is a named semantic slot a token can be mapped into.
//
// For a calibrated layout, ExpectedX and Tolerance are measured against the
// profile's reference page width and scaled to the observed page width at
// mapping time, so one calibration works across scan resolutions. For a
// header-inferred layout, both are zero and mapping is by column index.
type ColumnDefinition struct {
	ID            string  `json:"id"`
	ParameterName string  `json:"parameter_name"` // may be hierarchical, e.g. "Frame Lube Oil - Press"
	Unit          string  `json:"unit,omitempty"`
	ExpectedX     float64 `json:"expected_x,omitempty"`
	Tolerance     float64 `json:"tolerance,omitempty"`

	// Identifier marks the column holding the row identifier (the time
	// column on hourly logs). Identifier cells never become parameters.
	Identifier bool `json:"identifier,omitempty"`
}

// ColumnMapper assigns each token of a row to a semantic column, or to nil
// when the token matches no column. Unmapped tokens are excluded from the
// reading; that is expected noise, not an error.
type ColumnMapper interface {
	MapRow(row Row) []*ColumnDefinition
}

// CalibratedMapper maps tokens by horizontal position against a fixed column
// layout.
type CalibratedMapper struct {
	columns []ColumnDefinition
	scale   float64
}

// NewCalibratedMapper builds a position-based mapper. pageWidth is the width
// of the page the tokens were recognized on; referenceWidth is the width the
// column positions were calibrated at. A zero value for either disables
// scaling.
func NewCalibratedMapper(columns []ColumnDefinition, pageWidth, referenceWidth float64) *CalibratedMapper {
	scale := 1.0
	if pageWidth > 0 && referenceWidth > 0 {
		scale = pageWidth / referenceWidth
	}
	return &CalibratedMapper{columns: columns, scale: scale}
}

// Match returns the column whose expected position is within tolerance of
// the token's horizontal center, or nil. When several columns qualify the
// first in definition order wins; calibrated layouts are expected to keep
// tolerances narrow enough that overlaps do not occur in practice.
func (m *CalibratedMapper) Match(tok Token) *ColumnDefinition {
	center := tok.BBox.CenterX()
	for i := range m.columns {
		col := &m.columns[i]
		if math.Abs(center-col.ExpectedX*m.scale) <= col.Tolerance*m.scale {
			return col
		}
	}
	return nil
}

// MapRow implements ColumnMapper.
func (m *CalibratedMapper) MapRow(row Row) []*ColumnDefinition {
	out := make([]*ColumnDefinition, len(row.Tokens))
	for i, tok := range row.Tokens {
		out[i] = m.Match(tok)
	}
	return out
}

// Columns exposes the calibrated column set in definition order.
func (m *CalibratedMapper) Columns() []ColumnDefinition { return m.columns }

// HeaderMapper maps tokens by column index against labels inferred from the
// table's first row.
type HeaderMapper struct {
	columns []ColumnDefinition
}

// NewHeaderMapper derives column definitions from a header row. Each header
// token's text becomes a provisional label, normalized against the parameter
// catalog (substring match on known aliases); unrecognized labels pass
// through verbatim.
func NewHeaderMapper(header Row, catalog *ParameterCatalog) *HeaderMapper {
	columns := make([]ColumnDefinition, 0, len(header.Tokens))
	for i, tok := range header.Tokens {
		name, unit, ok := catalog.Normalize(tok.Text)
		if !ok && name == "" {
			name = fmt.Sprintf("Column %d", i+1)
		}
		columns = append(columns, ColumnDefinition{
			ID:            fmt.Sprintf("col-%d", i),
			ParameterName: name,
			Unit:          unit,
			Identifier:    i == 0,
		})
	}
	return &HeaderMapper{columns: columns}
}

// MapRow implements ColumnMapper. Data rows wider than the header get
// synthetic "Column N" labels for the excess cells.
func (m *HeaderMapper) MapRow(row Row) []*ColumnDefinition {
	out := make([]*ColumnDefinition, len(row.Tokens))
	for i := range row.Tokens {
		if i < len(m.columns) {
			out[i] = &m.columns[i]
			continue
		}
		out[i] = &ColumnDefinition{
			ID:            fmt.Sprintf("col-%d", i),
			ParameterName: fmt.Sprintf("Column %d", i+1),
		}
	}
	return out
}

// Columns exposes the inferred column set in header order.
func (m *HeaderMapper) Columns() []ColumnDefinition { return m.columns }

// ParameterNames returns the non-identifier parameter names of a column set
// in definition order.
func ParameterNames(columns []ColumnDefinition) []string {
	names := make([]string, 0, len(columns))
	for _, col := range columns {
		if col.Identifier || strings.TrimSpace(col.ParameterName) == "" {
			continue
		}
		names = append(names, col.ParameterName)
	}
	return names
}
