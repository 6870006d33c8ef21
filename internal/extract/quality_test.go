package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	table := sampleTable()

	summary := Summarize(table, 0.5)

	assert.Equal(t, 2, summary.ReadingCount)
	assert.Equal(t, 3, summary.CellCount)
	assert.InDelta(t, (0.9+0.85+0.4)/3, summary.MeanConfidence, 1e-9)
	assert.Equal(t, 0.4, summary.MinConfidence)
	assert.Equal(t, 2, summary.RowsDiscarded)

	require.Len(t, summary.LowConfidenceCells, 1)
	flagged := summary.LowConfidenceCells[0]
	assert.Equal(t, "W-13", flagged.RowIdentifier)
	assert.Equal(t, "Pressure", flagged.Parameter)
	assert.Equal(t, "ok", flagged.Value)
}

func TestSummarize_FlagsWorstFirst(t *testing.T) {
	table := &ExtractedTable{
		Headers: []string{"Pressure", "Temperature"},
		Readings: []ExtractedReading{
			{
				RowIdentifier: "14:30",
				Parameters: map[string]ParameterReading{
					"Pressure":    {Value: "2.1", Confidence: 0.3},
					"Temperature": {Value: "95", Confidence: 0.1},
				},
			},
		},
	}

	summary := Summarize(table, 0.5)

	require.Len(t, summary.LowConfidenceCells, 2)
	assert.Equal(t, "Temperature", summary.LowConfidenceCells[0].Parameter)
	assert.Equal(t, "Pressure", summary.LowConfidenceCells[1].Parameter)
}

func TestSummarize_EmptyTable(t *testing.T) {
	summary := Summarize(&ExtractedTable{}, 0.5)

	assert.Zero(t, summary.ReadingCount)
	assert.Zero(t, summary.CellCount)
	assert.Zero(t, summary.MeanConfidence)
	assert.Empty(t, summary.LowConfidenceCells)
}
