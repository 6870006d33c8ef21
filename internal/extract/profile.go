package extract

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Profile is the per-document-type tuning configuration for the extraction
// pipeline. The row tolerance and minimum-field threshold were found
// empirically per sheet layout; they live here as named configuration rather
// than inline constants so new sheet types can be calibrated without code
// changes.
type Profile struct {
	Name string `json:"name"`

	// RowTolerance is the vertical clustering tolerance in reference-page
	// pixels. 20 suits photographed generic sheets; the rigid gas-compressor
	// layout uses 25.
	RowTolerance float64 `json:"row_tolerance"`

	// MinFields is the minimum number of successfully parsed parameters a
	// candidate row needs to survive noise rejection. This is the single
	// most important knob separating real data rows from stray OCR garbage.
	MinFields int `json:"min_fields"`

	// ReferenceWidth is the page width the calibrated column positions were
	// measured at. 0 disables position scaling.
	ReferenceWidth float64 `json:"reference_width,omitempty"`

	// Columns is the calibrated column layout. Empty means the layout is
	// unknown and columns are inferred from the header row.
	Columns []ColumnDefinition `json:"columns,omitempty"`

	// QualityPenalty discounts the OCR confidence of non-numeric cells
	// (checkmarks, status letters), which OCR misreads more often than
	// digits.
	QualityPenalty float64 `json:"quality_penalty"`

	// FallbackConfidence is the fixed confidence assigned to values
	// recovered by the text-line fallback parser, reflecting the loss of
	// spatial grounding.
	FallbackConfidence float64 `json:"fallback_confidence"`

	// LowConfidenceThreshold flags cells for operator review.
	LowConfidenceThreshold float64 `json:"low_confidence_threshold"`
}

// Calibrated reports whether the profile carries a fixed column layout.
func (p Profile) Calibrated() bool { return len(p.Columns) > 0 }

// Validate checks the profile for values the pipeline cannot work with.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	if p.RowTolerance <= 0 {
		return fmt.Errorf("profile %s: row tolerance must be positive, got %v", p.Name, p.RowTolerance)
	}
	if p.MinFields < 1 {
		return fmt.Errorf("profile %s: min fields must be at least 1, got %d", p.Name, p.MinFields)
	}
	for _, col := range p.Columns {
		if col.Tolerance <= 0 {
			return fmt.Errorf("profile %s: column %s: tolerance must be positive", p.Name, col.ID)
		}
	}
	return nil
}

// FallbackParameters returns the ordered parameter names the fallback parser
// assigns numbers to positionally: the calibrated column names when the
// layout is known, the catalog's generic order otherwise.
func (p Profile) FallbackParameters(catalog *ParameterCatalog) []string {
	if p.Calibrated() {
		return ParameterNames(p.Columns)
	}
	return catalog.PositionalParameters()
}

// GenericProfile is the header-inferred profile for unknown table layouts
// such as daily well-production sheets.
func GenericProfile() Profile {
	return Profile{
		Name:                   "generic",
		RowTolerance:           20,
		MinFields:              3,
		QualityPenalty:         0.85,
		FallbackConfidence:     0.6,
		LowConfidenceThreshold: 0.5,
	}
}

// GasCompressorProfile is the calibrated profile for the hourly
// gas-compressor log sheet. Column positions were measured on a 1200px-wide
// aligned scan and scale with the observed page width.
func GasCompressorProfile() Profile {
	return Profile{
		Name:           "gas-compressor",
		RowTolerance:   25,
		MinFields:      5,
		ReferenceWidth: 1200,
		Columns: []ColumnDefinition{
			{ID: "time", ParameterName: "Time", ExpectedX: 50, Tolerance: 25, Identifier: true},
			{ID: "frame-lube-press", ParameterName: "Frame Lube Oil - Press", Unit: "Kg/cm²", ExpectedX: 110, Tolerance: 20},
			{ID: "frame-lube-temp", ParameterName: "Frame Lube Oil - Temp", Unit: "°C", ExpectedX: 160, Tolerance: 20},
			{ID: "frame-bearing-temp", ParameterName: "Frame Bearing - Temp", Unit: "°C", ExpectedX: 215, Tolerance: 20},
			{ID: "crankcase-press", ParameterName: "Crankcase Lube Oil - Press", Unit: "Kg/cm²", ExpectedX: 275, Tolerance: 20},
			{ID: "crankcase-temp", ParameterName: "Crankcase Lube Oil - Temp", Unit: "°C", ExpectedX: 330, Tolerance: 20},
			{ID: "stage2-discharge-press", ParameterName: "2nd Stage Cylinder - Discharge Press", Unit: "Kg/cm²", ExpectedX: 400, Tolerance: 22},
			{ID: "stage2-discharge-temp", ParameterName: "2nd Stage Cylinder - Discharge Temp", Unit: "°C", ExpectedX: 465, Tolerance: 22},
			{ID: "cooling-water-press", ParameterName: "Cooling Water - Press", Unit: "Kg/cm²", ExpectedX: 530, Tolerance: 22},
			{ID: "cooling-water-temp", ParameterName: "Cooling Water - Temp", Unit: "°C", ExpectedX: 595, Tolerance: 22},
			{ID: "cylinder-oil-level", ParameterName: "Cylinder Oil - Level", Unit: "%", ExpectedX: 660, Tolerance: 22},
			{ID: "engine-rpm", ParameterName: "Control Engine - RPM", Unit: "RPM", ExpectedX: 730, Tolerance: 25},
			{ID: "instrument-air-press", ParameterName: "Instrument Air - Press", Unit: "Kg/cm²", ExpectedX: 805, Tolerance: 25},
			{ID: "header-press", ParameterName: "Header - Press", Unit: "Kg/cm²", ExpectedX: 880, Tolerance: 25},
			{ID: "flow", ParameterName: "Flow", Unit: "MMSCFD", ExpectedX: 955, Tolerance: 25},
		},
		QualityPenalty:         0.85,
		FallbackConfidence:     0.6,
		LowConfidenceThreshold: 0.5,
	}
}

// BuiltinProfiles returns the compiled-in document profiles keyed by name.
func BuiltinProfiles() map[string]Profile {
	profiles := map[string]Profile{}
	for _, p := range []Profile{GenericProfile(), GasCompressorProfile()} {
		profiles[p.Name] = p
	}
	return profiles
}

// BuiltinProfileNames returns the built-in profile names sorted.
func BuiltinProfileNames() []string {
	profiles := BuiltinProfiles()
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProfileByName looks up a built-in profile.
func ProfileByName(name string) (Profile, error) {
	profile, ok := BuiltinProfiles()[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile: %s (available: %v)", name, BuiltinProfileNames())
	}
	return profile, nil
}

// LoadProfile reads a profile from a JSON file, filling unset tuning values
// with the generic defaults.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile file: %w", err)
	}

	profile := GenericProfile()
	profile.Name = ""
	if err := json.Unmarshal(data, &profile); err != nil {
		return Profile{}, fmt.Errorf("failed to parse profile file %s: %w", path, err)
	}
	if err := profile.Validate(); err != nil {
		return Profile{}, err
	}
	return profile, nil
}
