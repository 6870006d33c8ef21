package extract

import "strings"

// CatalogEntry maps OCR-read header aliases onto one canonical parameter.
type CatalogEntry struct {
	// Aliases are lowercase substrings matched against a header label.
	Aliases []string
	// Canonical is the full parameter name used in readings and exports.
	Canonical string
	// DefaultUnit is assumed when the cell text carries no unit of its own.
	DefaultUnit string
}

// ParameterCatalog is the fixed dictionary of known production parameters.
// It is read-only reference data: one catalog can be shared by any number of
// concurrent pipelines.
type ParameterCatalog struct {
	entries []CatalogEntry
}

// NewParameterCatalog builds a catalog from an ordered entry list. Order
// matters: the first alias match wins, so more specific aliases ("water
// cut") must precede more general ones ("water").
func NewParameterCatalog(entries []CatalogEntry) *ParameterCatalog {
	return &ParameterCatalog{entries: entries}
}

// DefaultCatalog returns the built-in oilfield/gas-compressor parameter
// dictionary used to normalize header-inferred column labels.
func DefaultCatalog() *ParameterCatalog {
	return NewParameterCatalog([]CatalogEntry{
		{Aliases: []string{"water cut", "cut"}, Canonical: "Water Cut", DefaultUnit: "%"},
		{Aliases: []string{"gor"}, Canonical: "Gas Oil Ratio", DefaultUnit: "SCF/BBL"},
		{Aliases: []string{"gas"}, Canonical: "Gas Production", DefaultUnit: "MCF"},
		{Aliases: []string{"oil"}, Canonical: "Oil Production", DefaultUnit: "BBL"},
		{Aliases: []string{"water"}, Canonical: "Water Production", DefaultUnit: "BBL"},
		{Aliases: []string{"pressure", "press"}, Canonical: "Pressure", DefaultUnit: "PSI"},
		{Aliases: []string{"temperature", "temp"}, Canonical: "Temperature", DefaultUnit: "°F"},
		{Aliases: []string{"choke"}, Canonical: "Choke Size", DefaultUnit: "1/64 in"},
		{Aliases: []string{"rate", "flow"}, Canonical: "Flow Rate", DefaultUnit: "BBL/D"},
	})
}

// Normalize resolves an OCR-read header label to a canonical parameter name
// and its default unit. When no alias matches, the trimmed label is returned
// unchanged with an empty unit and ok=false.
func (c *ParameterCatalog) Normalize(label string) (canonical, unit string, ok bool) {
	trimmed := strings.TrimSpace(label)
	lowered := strings.ToLower(trimmed)
	for _, entry := range c.entries {
		for _, alias := range entry.Aliases {
			if strings.Contains(lowered, alias) {
				return entry.Canonical, entry.DefaultUnit, true
			}
		}
	}
	return trimmed, "", false
}

// DefaultUnit returns the default unit for a canonical parameter name, or ""
// when the parameter is not in the catalog.
func (c *ParameterCatalog) DefaultUnit(canonical string) string {
	for _, entry := range c.entries {
		if entry.Canonical == canonical {
			return entry.DefaultUnit
		}
	}
	return ""
}

// PositionalParameters returns the canonical parameter names in the fixed
// order the fallback parser assigns numbers to when no calibrated column set
// exists. The order reflects the usual column order of generic well-test
// sheets.
func (c *ParameterCatalog) PositionalParameters() []string {
	return []string{
		"Oil Production",
		"Gas Production",
		"Water Production",
		"Pressure",
		"Temperature",
		"Water Cut",
		"Choke Size",
		"Gas Oil Ratio",
		"Flow Rate",
	}
}
