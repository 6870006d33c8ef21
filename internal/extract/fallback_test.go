package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFallback_TimeKeyedLine(t *testing.T) {
	text := "14:30 1200 3800 2100 187 12.5"

	table := ParseFallback(text, GenericProfile(), nil, "2024-03-15")

	assert.True(t, table.Degraded)
	require.Len(t, table.Readings, 1)

	reading := table.Readings[0]
	assert.Equal(t, "14:30", reading.RowIdentifier)
	assert.Equal(t, "2024-03-15", reading.Date)

	// Numbers are assigned positionally to the catalog's generic order.
	oil := reading.Parameters["Oil Production"]
	assert.Equal(t, 1200.0, oil.NumericValue)
	assert.Equal(t, "BBL", oil.Unit)
	assert.Equal(t, 0.6, oil.Confidence)

	gas := reading.Parameters["Gas Production"]
	assert.Equal(t, 3800.0, gas.NumericValue)

	temp := reading.Parameters["Temperature"]
	assert.Equal(t, 12.5, temp.NumericValue)
}

func TestParseFallback_TimeDigitsNotCountedAsValues(t *testing.T) {
	// Two values after the time is below the qualification threshold even
	// though the time itself contains two more numbers.
	table := ParseFallback("14:30 1200 3800", GenericProfile(), nil, "")
	assert.Empty(t, table.Readings)
}

func TestParseFallback_BareNumberLine(t *testing.T) {
	text := "banana split\n410 95 78 2.1 3.5 880 12 56"

	table := ParseFallback(text, GenericProfile(), nil, "")

	require.Len(t, table.Readings, 1)
	assert.Equal(t, "Row-2", table.Readings[0].RowIdentifier)
	assert.Len(t, table.Readings[0].Parameters, 8)
}

func TestParseFallback_SkipsProseAndSparseLines(t *testing.T) {
	text := "Gas Compressor Hourly Log\nShift A, Operator: R. Gomez\n95 78"

	table := ParseFallback(text, GenericProfile(), nil, "")
	assert.Empty(t, table.Readings)
}

func TestParseFallback_PeriodTimeNormalized(t *testing.T) {
	table := ParseFallback("14.30 1200 3800 2100", GenericProfile(), nil, "")

	require.Len(t, table.Readings, 1)
	assert.Equal(t, "14:30", table.Readings[0].RowIdentifier)
}

func TestParseFallback_CalibratedColumnOrder(t *testing.T) {
	profile := calibratedTestProfile()

	table := ParseFallback("14:30 2.1 95 880", profile, nil, "")

	require.Len(t, table.Readings, 1)
	reading := table.Readings[0]

	press := reading.Parameters["Pressure"]
	assert.Equal(t, 2.1, press.NumericValue)
	assert.Equal(t, "Kg/cm²", press.Unit)

	temp := reading.Parameters["Temperature"]
	assert.Equal(t, 95.0, temp.NumericValue)
	assert.Equal(t, "°C", temp.Unit)
}
