package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fieldsheet/pkg/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func samplePayload() *models.ExtractionPayload {
	return &models.ExtractionPayload{
		SourceFile: "sheet_2024_03_15.jpg",
		Profile:    "gas-compressor",
		Engine:     "google-vision",
		Headers:    []string{"Frame Lube Oil - Press", "Frame Lube Oil - Temp"},
		Readings: []models.ReadingPayload{
			{
				RowIdentifier: "14:30",
				Date:          "2024-03-15",
				Parameters: []models.ParameterPayload{
					{
						ParameterName:   "Frame Lube Oil - Press",
						ParameterValue:  2.1,
						ValueText:       "2.1",
						IsNumeric:       true,
						Unit:            "Kg/cm²",
						ConfidenceScore: 0.94,
						CellPosition:    models.CellPosition{Row: 0, Col: 1},
					},
					{
						ParameterName:   "Frame Lube Oil - Temp",
						ValueText:       "ok",
						ConfidenceScore: 0.41,
						CellPosition:    models.CellPosition{Row: 0, Col: 2},
					},
				},
			},
		},
		RowsDiscarded: 2,
		ProcessedAt:   time.Now().UTC(),
	}
}

func TestStore_SaveAndGetExtraction(t *testing.T) {
	db := setupTestDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)

	id, err := store.SaveExtraction(samplePayload())
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	loaded, err := store.GetExtraction(id)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, "sheet_2024_03_15.jpg", loaded.SourceFile)
	assert.Equal(t, "gas-compressor", loaded.Profile)
	assert.Equal(t, 2, loaded.RowsDiscarded)
	require.Len(t, loaded.Readings, 1)

	reading := loaded.Readings[0]
	assert.Equal(t, "14:30", reading.RowIdentifier)
	assert.Equal(t, "2024-03-15", reading.Date)
	require.Len(t, reading.Parameters, 2)

	press := reading.Parameters[0]
	assert.Equal(t, "Frame Lube Oil - Press", press.ParameterName)
	assert.Equal(t, 2.1, press.ParameterValue)
	assert.True(t, press.IsNumeric)
	assert.Equal(t, "Kg/cm²", press.Unit)
	assert.False(t, press.IsVerified)

	temp := reading.Parameters[1]
	assert.Equal(t, "ok", temp.ValueText)
	assert.False(t, temp.IsNumeric)
}

func TestStore_GetExtractionUnknownID(t *testing.T) {
	db := setupTestDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)

	loaded, err := store.GetExtraction("missing")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestStore_SaveReplacesExisting(t *testing.T) {
	db := setupTestDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)

	payload := samplePayload()
	id, err := store.SaveExtraction(payload)
	require.NoError(t, err)

	// Re-process the same document: one reading instead of the original set.
	payload.ID = id
	payload.Readings = payload.Readings[:1]
	payload.Readings[0].Parameters = payload.Readings[0].Parameters[:1]

	savedID, err := store.SaveExtraction(payload)
	require.NoError(t, err)
	assert.Equal(t, id, savedID)

	loaded, err := store.GetExtraction(id)
	require.NoError(t, err)
	require.Len(t, loaded.Readings, 1)
	assert.Len(t, loaded.Readings[0].Parameters, 1)
}

func TestStore_MarkVerified(t *testing.T) {
	db := setupTestDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)

	id, err := store.SaveExtraction(samplePayload())
	require.NoError(t, err)

	require.NoError(t, store.MarkVerified(id))

	loaded, err := store.GetExtraction(id)
	require.NoError(t, err)
	for _, reading := range loaded.Readings {
		for _, param := range reading.Parameters {
			assert.True(t, param.IsVerified)
		}
	}
}

func TestStore_MarkVerifiedUnknownID(t *testing.T) {
	db := setupTestDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)

	err = store.MarkVerified("missing")
	assert.Error(t, err)
}

func TestStore_ListExtractions(t *testing.T) {
	db := setupTestDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)

	first := samplePayload()
	first.ProcessedAt = time.Now().UTC().Add(-time.Hour)
	_, err = store.SaveExtraction(first)
	require.NoError(t, err)

	second := samplePayload()
	second.SourceFile = "sheet_2024_03_16.jpg"
	_, err = store.SaveExtraction(second)
	require.NoError(t, err)

	extractions, err := store.ListExtractions(0)
	require.NoError(t, err)
	require.Len(t, extractions, 2)
	assert.Equal(t, "sheet_2024_03_16.jpg", extractions[0].SourceFile)

	limited, err := store.ListExtractions(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestStore_DeleteExtraction(t *testing.T) {
	db := setupTestDB(t)
	store, err := NewStore(db)
	require.NoError(t, err)

	id, err := store.SaveExtraction(samplePayload())
	require.NoError(t, err)

	require.NoError(t, store.DeleteExtraction(id))

	loaded, err := store.GetExtraction(id)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	var count int64
	require.NoError(t, db.Model(&ParameterValue{}).Count(&count).Error)
	assert.Zero(t, count)
}
