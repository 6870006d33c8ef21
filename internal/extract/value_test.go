package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractValueUnit(t *testing.T) {
	tests := []struct {
		name string
		text string
		want ValueUnit
	}{
		{
			name: "number with attached unit",
			text: "1247BBL",
			want: ValueUnit{Value: "1247", Unit: "BBL", Numeric: 1247, IsNumeric: true},
		},
		{
			name: "number with spaced unit",
			text: "85.5 PSI",
			want: ValueUnit{Value: "85.5", Unit: "PSI", Numeric: 85.5, IsNumeric: true},
		},
		{
			name: "grouped thousands with unit",
			text: "1,234.5 PSI",
			want: ValueUnit{Value: "1234.5", Unit: "PSI", Numeric: 1234.5, IsNumeric: true},
		},
		{
			name: "grouped thousands bare",
			text: "3,800",
			want: ValueUnit{Value: "3800", Numeric: 3800, IsNumeric: true},
		},
		{
			name: "bare integer",
			text: "95",
			want: ValueUnit{Value: "95", Numeric: 95, IsNumeric: true},
		},
		{
			name: "bare decimal",
			text: "12.5",
			want: ValueUnit{Value: "12.5", Numeric: 12.5, IsNumeric: true},
		},
		{
			name: "negative number",
			text: "-5",
			want: ValueUnit{Value: "-5", Numeric: -5, IsNumeric: true},
		},
		{
			name: "degree unit",
			text: "78°C",
			want: ValueUnit{Value: "78", Unit: "°C", Numeric: 78, IsNumeric: true},
		},
		{
			name: "percent unit",
			text: "12.5%",
			want: ValueUnit{Value: "12.5", Unit: "%", Numeric: 12.5, IsNumeric: true},
		},
		{
			name: "non-numeric passthrough",
			text: "n/a",
			want: ValueUnit{Value: "n/a"},
		},
		{
			name: "surrounding whitespace trimmed",
			text: "  350  ",
			want: ValueUnit{Value: "350", Numeric: 350, IsNumeric: true},
		},
		{
			name: "empty",
			text: "",
			want: ValueUnit{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractValueUnit(tt.text))
		})
	}
}
