package extract

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *ExtractedTable {
	return &ExtractedTable{
		Headers: []string{"Oil Production", "Pressure"},
		Readings: []ExtractedReading{
			{
				RowIdentifier: "W-12",
				Date:          "2024-03-15",
				Parameters: map[string]ParameterReading{
					"Oil Production": {
						Value: "1247", NumericValue: 1247, IsNumeric: true,
						Unit: "BBL", Confidence: 0.9,
						CellPosition: CellPosition{Row: 0, Col: 1},
					},
					"Pressure": {
						Value: "350", NumericValue: 350, IsNumeric: true,
						Unit: "PSI", Confidence: 0.85,
						CellPosition: CellPosition{Row: 0, Col: 2},
					},
				},
			},
			{
				RowIdentifier: "W-13",
				Date:          "2024-03-15",
				Parameters: map[string]ParameterReading{
					"Pressure": {
						Value: "ok", Unit: "PSI", Confidence: 0.4,
						CellPosition: CellPosition{Row: 1, Col: 2},
					},
				},
			},
		},
		RowsDiscarded: 2,
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Identifier", "Oil Production (BBL)", "Pressure (PSI)"}, records[0])
	assert.Equal(t, []string{"W-12", "1247 BBL", "350 PSI"}, records[1])
	// Missing parameters stay empty.
	assert.Equal(t, []string{"W-13", "", "ok PSI"}, records[2])
}

func TestWriteCSV_CellKeepsItsOwnUnit(t *testing.T) {
	// A cell whose captured unit differs from the column's usual one must not
	// lose it to the header unit.
	table := &ExtractedTable{
		Headers: []string{"Pressure"},
		Readings: []ExtractedReading{
			{
				RowIdentifier: "14:30",
				Parameters: map[string]ParameterReading{
					"Pressure": {Value: "2.1", Unit: "Kg/cm²"},
				},
			},
			{
				RowIdentifier: "15:30",
				Parameters: map[string]ParameterReading{
					"Pressure": {Value: "31", Unit: "PSI"},
				},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"14:30", "2.1 Kg/cm²"}, records[1][:2])
	assert.Equal(t, []string{"15:30", "31 PSI"}, records[2][:2])
}

func TestParseCSVHeader(t *testing.T) {
	names := ParseCSVHeader([]string{"Identifier", "Oil Production (BBL)", "Pressure (PSI)", "Remarks"})
	assert.Equal(t, []string{"Identifier", "Oil Production", "Pressure", "Remarks"}, names)
}

func TestToPayload(t *testing.T) {
	payload := ToPayload(sampleTable(), "ext-1", "sheet.jpg", "generic", "tesseract")

	assert.Equal(t, "ext-1", payload.ID)
	assert.Equal(t, "sheet.jpg", payload.SourceFile)
	assert.Equal(t, "generic", payload.Profile)
	assert.Equal(t, "tesseract", payload.Engine)
	assert.Equal(t, []string{"Oil Production", "Pressure"}, payload.Headers)
	assert.Equal(t, 2, payload.RowsDiscarded)
	assert.False(t, payload.ProcessedAt.IsZero())

	require.Len(t, payload.Readings, 2)

	first := payload.Readings[0]
	assert.Equal(t, "W-12", first.RowIdentifier)
	require.Len(t, first.Parameters, 2)
	// Parameters come out in header order regardless of map iteration.
	assert.Equal(t, "Oil Production", first.Parameters[0].ParameterName)
	assert.Equal(t, 1247.0, first.Parameters[0].ParameterValue)
	assert.True(t, first.Parameters[0].IsNumeric)
	assert.Equal(t, "Pressure", first.Parameters[1].ParameterName)

	second := payload.Readings[1]
	require.Len(t, second.Parameters, 1)
	assert.Equal(t, "ok", second.Parameters[0].ValueText)
	assert.False(t, second.Parameters[0].IsNumeric)
	assert.Equal(t, 0.0, second.Parameters[0].ParameterValue)
}
