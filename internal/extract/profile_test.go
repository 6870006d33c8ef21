package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileByName(t *testing.T) {
	profile, err := ProfileByName("gas-compressor")
	require.NoError(t, err)
	assert.True(t, profile.Calibrated())
	assert.Equal(t, 5, profile.MinFields)
	assert.Len(t, profile.Columns, 15)

	_, err = ProfileByName("typewriter")
	assert.Error(t, err)
}

func TestBuiltinProfileNames(t *testing.T) {
	assert.Equal(t, []string{"gas-compressor", "generic"}, BuiltinProfileNames())
}

func TestProfileValidate(t *testing.T) {
	profile := GenericProfile()
	assert.NoError(t, profile.Validate())

	profile.RowTolerance = 0
	assert.Error(t, profile.Validate())

	profile = GenericProfile()
	profile.MinFields = 0
	assert.Error(t, profile.Validate())

	profile = GasCompressorProfile()
	profile.Columns[3].Tolerance = 0
	assert.Error(t, profile.Validate())
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig7.json")
	data := `{
		"name": "rig7",
		"row_tolerance": 30,
		"min_fields": 4,
		"reference_width": 1600,
		"columns": [
			{"id": "time", "parameter_name": "Time", "expected_x": 60, "tolerance": 30, "identifier": true},
			{"id": "press", "parameter_name": "Pressure", "unit": "PSI", "expected_x": 200, "tolerance": 25}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	profile, err := LoadProfile(path)
	require.NoError(t, err)

	assert.Equal(t, "rig7", profile.Name)
	assert.Equal(t, 30.0, profile.RowTolerance)
	assert.Equal(t, 4, profile.MinFields)
	assert.True(t, profile.Calibrated())

	// Tuning values the file omits fall back to the generic defaults.
	assert.Equal(t, 0.85, profile.QualityPenalty)
	assert.Equal(t, 0.6, profile.FallbackConfidence)
	assert.Equal(t, 0.5, profile.LowConfidenceThreshold)
}

func TestLoadProfile_RequiresName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anon.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"row_tolerance": 20, "min_fields": 3}`), 0644))

	_, err := LoadProfile(path)
	assert.Error(t, err)
}

func TestLoadProfile_MissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestFallbackParameters(t *testing.T) {
	catalog := DefaultCatalog()

	assert.Equal(t, []string{"Pressure", "Temperature"},
		calibratedTestProfile().FallbackParameters(catalog))
	assert.Equal(t, catalog.PositionalParameters(),
		GenericProfile().FallbackParameters(catalog))
}
