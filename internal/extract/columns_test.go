package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testColumns() []ColumnDefinition {
	return []ColumnDefinition{
		{ID: "time", ParameterName: "Time", ExpectedX: 50, Tolerance: 25, Identifier: true},
		{ID: "press", ParameterName: "Pressure", Unit: "Kg/cm²", ExpectedX: 110, Tolerance: 20},
		{ID: "temp", ParameterName: "Temperature", Unit: "°C", ExpectedX: 160, Tolerance: 20},
	}
}

func TestCalibratedMapper_Match(t *testing.T) {
	mapper := NewCalibratedMapper(testColumns(), 0, 0)

	col := mapper.Match(tok("2.1", 100, 100, 120, 116))
	require.NotNil(t, col)
	assert.Equal(t, "press", col.ID)

	col = mapper.Match(tok("78", 150, 100, 175, 116))
	require.NotNil(t, col)
	assert.Equal(t, "temp", col.ID)

	// Far outside any column band.
	assert.Nil(t, mapper.Match(tok("x", 500, 100, 520, 116)))
}

func TestCalibratedMapper_ScalesToPageWidth(t *testing.T) {
	// Calibrated at 1200px, recognized at 2400px: expected positions and
	// tolerances double.
	mapper := NewCalibratedMapper(testColumns(), 2400, 1200)

	col := mapper.Match(tok("2.1", 200, 100, 240, 116)) // center 220 vs scaled 220
	require.NotNil(t, col)
	assert.Equal(t, "press", col.ID)

	// Center 165 matched the unscaled temperature column but falls between
	// bands once the layout is scaled up.
	assert.Nil(t, mapper.Match(tok("78", 150, 100, 180, 116)))
}

func TestCalibratedMapper_FirstDefinitionWins(t *testing.T) {
	columns := []ColumnDefinition{
		{ID: "a", ParameterName: "A", ExpectedX: 100, Tolerance: 30},
		{ID: "b", ParameterName: "B", ExpectedX: 120, Tolerance: 30},
	}
	mapper := NewCalibratedMapper(columns, 0, 0)

	col := mapper.Match(tok("5", 105, 100, 115, 116)) // center 110, within both
	require.NotNil(t, col)
	assert.Equal(t, "a", col.ID)
}

func TestHeaderMapper(t *testing.T) {
	header := Row{Tokens: []Token{
		tok("Well", 10, 10, 50, 26),
		tok("Oil", 100, 10, 130, 26),
		tok("Press", 200, 10, 250, 26),
	}}
	mapper := NewHeaderMapper(header, DefaultCatalog())

	columns := mapper.Columns()
	require.Len(t, columns, 3)
	assert.True(t, columns[0].Identifier)
	assert.Equal(t, "Well", columns[0].ParameterName)
	assert.Equal(t, "Oil Production", columns[1].ParameterName)
	assert.Equal(t, "BBL", columns[1].Unit)
	assert.Equal(t, "Pressure", columns[2].ParameterName)

	// A data row wider than the header gets synthetic labels for the excess.
	data := Row{Tokens: []Token{
		tok("W-12", 10, 60, 50, 76),
		tok("1247", 100, 60, 140, 76),
		tok("350", 200, 60, 230, 76),
		tok("??", 300, 60, 320, 76),
	}}
	mapped := mapper.MapRow(data)
	require.Len(t, mapped, 4)
	assert.Equal(t, "Pressure", mapped[2].ParameterName)
	assert.Equal(t, "Column 4", mapped[3].ParameterName)
}

func TestParameterNames_ExcludesIdentifier(t *testing.T) {
	names := ParameterNames(testColumns())
	assert.Equal(t, []string{"Pressure", "Temperature"}, names)
}
