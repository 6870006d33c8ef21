package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "tesseract", cfg.OCREngine)
	assert.Equal(t, "eng", cfg.TesseractLanguage)
	assert.Equal(t, "generic", cfg.DefaultProfile)
	assert.Equal(t, "Readings", cfg.GoogleSheetWorksheet)
	assert.Equal(t, "fieldsheet.db", cfg.DatabasePath)
	assert.Equal(t, 4, cfg.BatchWorkers)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OCR_ENGINE", "google-vision")
	t.Setenv("EXTRACTION_PROFILE", "gas-compressor")
	t.Setenv("BATCH_WORKERS", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "google-vision", cfg.OCREngine)
	assert.Equal(t, "gas-compressor", cfg.DefaultProfile)
	assert.Equal(t, 8, cfg.BatchWorkers)
}

func TestLoad_RejectsUnknownEngine(t *testing.T) {
	t.Setenv("OCR_ENGINE", "typewriter")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_DocumentAIRequiresProcessor(t *testing.T) {
	t.Setenv("OCR_ENGINE", "document-ai")
	t.Setenv("DOCUMENT_AI_PROCESSOR_ID", "")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("DOCUMENT_AI_PROCESSOR_ID", "abc123")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "abc123", cfg.DocumentAIProcessorID)
}

func TestLoad_InvalidWorkerCount(t *testing.T) {
	t.Setenv("BATCH_WORKERS", "0")

	_, err := Load()
	assert.Error(t, err)
}
