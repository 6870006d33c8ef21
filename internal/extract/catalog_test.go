package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogNormalize(t *testing.T) {
	catalog := DefaultCatalog()

	tests := []struct {
		label     string
		canonical string
		unit      string
		ok        bool
	}{
		{"Oil", "Oil Production", "BBL", true},
		{"OIL (BBL)", "Oil Production", "BBL", true},
		{"Gas", "Gas Production", "MCF", true},
		{"Press", "Pressure", "PSI", true},
		{"Tubing Pressure", "Pressure", "PSI", true},
		{"Temp", "Temperature", "°F", true},
		{"Choke", "Choke Size", "1/64 in", true},
		{"GOR", "Gas Oil Ratio", "SCF/BBL", true},
		{"Remarks", "Remarks", "", false},
		{"  Well Name  ", "Well Name", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			canonical, unit, ok := catalog.Normalize(tt.label)
			assert.Equal(t, tt.canonical, canonical)
			assert.Equal(t, tt.unit, unit)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestCatalogNormalize_SpecificAliasWins(t *testing.T) {
	catalog := DefaultCatalog()

	// "Water Cut" contains both the "water cut" and "water" aliases; the more
	// specific entry is ordered first and must win.
	canonical, unit, ok := catalog.Normalize("Water Cut %")
	assert.True(t, ok)
	assert.Equal(t, "Water Cut", canonical)
	assert.Equal(t, "%", unit)

	canonical, _, ok = catalog.Normalize("Water")
	assert.True(t, ok)
	assert.Equal(t, "Water Production", canonical)
}

func TestCatalogDefaultUnit(t *testing.T) {
	catalog := DefaultCatalog()

	assert.Equal(t, "PSI", catalog.DefaultUnit("Pressure"))
	assert.Equal(t, "", catalog.DefaultUnit("Remarks"))
}
