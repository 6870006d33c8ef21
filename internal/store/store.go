// Package store persists extractions to SQLite so digitized readings survive
// the review workflow across CLI invocations.
package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"fieldsheet/pkg/models"
)

// Extraction is one digitized document page.
type Extraction struct {
	ID            string `gorm:"primaryKey"`
	SourceFile    string
	Profile       string
	Engine        string
	RowsDiscarded int
	Degraded      bool
	ProcessedAt   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Readings []Reading `gorm:"constraint:OnDelete:CASCADE"`
}

// Reading is one table row of an extraction.
type Reading struct {
	ID            uint   `gorm:"primaryKey"`
	ExtractionID  string `gorm:"index"`
	RowIdentifier string
	Date          string

	Parameters []ParameterValue `gorm:"constraint:OnDelete:CASCADE"`
}

// ParameterValue is one extracted cell of a reading.
type ParameterValue struct {
	ID            uint `gorm:"primaryKey"`
	ReadingID     uint `gorm:"index"`
	ParameterName string
	ValueText     string
	NumericValue  float64
	IsNumeric     bool
	Unit          string
	Confidence    float64
	RowPos        int
	ColPos        int
	IsVerified    bool
}

// Store handles extraction persistence
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the SQLite database at path and returns a
// migrated store.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return NewStore(db)
}

// NewStore creates a store on an existing connection, migrating the schema.
func NewStore(db *gorm.DB) (*Store, error) {
	store := &Store{db: db}

	// Auto-migrate schemas
	if err := db.AutoMigrate(&Extraction{}, &Reading{}, &ParameterValue{}); err != nil {
		return nil, fmt.Errorf("failed to migrate extraction schemas: %w", err)
	}

	return store, nil
}

// SaveExtraction persists an extraction payload transactionally, assigning an
// ID when the payload carries none. Saving an existing ID replaces the stored
// extraction wholesale; re-processing a document never merges with stale rows.
func (s *Store) SaveExtraction(payload *models.ExtractionPayload) (string, error) {
	id := payload.ID
	if id == "" {
		id = uuid.NewString()
	}

	processedAt := payload.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now().UTC()
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteExtraction(tx, id); err != nil {
			return err
		}

		extraction := Extraction{
			ID:            id,
			SourceFile:    payload.SourceFile,
			Profile:       payload.Profile,
			Engine:        payload.Engine,
			RowsDiscarded: payload.RowsDiscarded,
			Degraded:      payload.Degraded,
			ProcessedAt:   processedAt,
		}

		for _, reading := range payload.Readings {
			r := Reading{
				RowIdentifier: reading.RowIdentifier,
				Date:          reading.Date,
			}
			for _, param := range reading.Parameters {
				r.Parameters = append(r.Parameters, ParameterValue{
					ParameterName: param.ParameterName,
					ValueText:     param.ValueText,
					NumericValue:  param.ParameterValue,
					IsNumeric:     param.IsNumeric,
					Unit:          param.Unit,
					Confidence:    param.ConfidenceScore,
					RowPos:        param.CellPosition.Row,
					ColPos:        param.CellPosition.Col,
					IsVerified:    param.IsVerified,
				})
			}
			extraction.Readings = append(extraction.Readings, r)
		}

		return tx.Create(&extraction).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to save extraction: %w", err)
	}

	return id, nil
}

// GetExtraction loads a stored extraction back into payload form, or nil when
// the ID is unknown.
func (s *Store) GetExtraction(id string) (*models.ExtractionPayload, error) {
	var extraction Extraction
	err := s.db.Preload("Readings.Parameters").Where("id = ?", id).First(&extraction).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	payload := &models.ExtractionPayload{
		ID:            extraction.ID,
		SourceFile:    extraction.SourceFile,
		Profile:       extraction.Profile,
		Engine:        extraction.Engine,
		RowsDiscarded: extraction.RowsDiscarded,
		Degraded:      extraction.Degraded,
		ProcessedAt:   extraction.ProcessedAt,
	}

	seen := map[string]bool{}
	for _, reading := range extraction.Readings {
		rp := models.ReadingPayload{
			RowIdentifier: reading.RowIdentifier,
			Date:          reading.Date,
		}
		for _, param := range reading.Parameters {
			rp.Parameters = append(rp.Parameters, models.ParameterPayload{
				ParameterName:   param.ParameterName,
				ParameterValue:  param.NumericValue,
				ValueText:       param.ValueText,
				IsNumeric:       param.IsNumeric,
				Unit:            param.Unit,
				ConfidenceScore: param.Confidence,
				CellPosition:    models.CellPosition{Row: param.RowPos, Col: param.ColPos},
				IsVerified:      param.IsVerified,
			})
			if !seen[param.ParameterName] {
				seen[param.ParameterName] = true
				payload.Headers = append(payload.Headers, param.ParameterName)
			}
		}
		payload.Readings = append(payload.Readings, rp)
	}

	return payload, nil
}

// ListExtractions returns stored extractions newest first, without readings.
func (s *Store) ListExtractions(limit int) ([]Extraction, error) {
	query := s.db.Order("processed_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var extractions []Extraction
	err := query.Find(&extractions).Error
	return extractions, err
}

// MarkVerified flags every parameter value of an extraction as
// operator-verified.
func (s *Store) MarkVerified(extractionID string) error {
	var readingIDs []uint
	err := s.db.Model(&Reading{}).
		Where("extraction_id = ?", extractionID).
		Pluck("id", &readingIDs).Error
	if err != nil {
		return err
	}
	if len(readingIDs) == 0 {
		return fmt.Errorf("no extraction found with id %s", extractionID)
	}

	return s.db.Model(&ParameterValue{}).
		Where("reading_id IN ?", readingIDs).
		Update("is_verified", true).Error
}

// DeleteExtraction removes a stored extraction and its readings.
func (s *Store) DeleteExtraction(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return deleteExtraction(tx, id)
	})
}

func deleteExtraction(tx *gorm.DB, id string) error {
	var readingIDs []uint
	if err := tx.Model(&Reading{}).Where("extraction_id = ?", id).Pluck("id", &readingIDs).Error; err != nil {
		return err
	}
	if len(readingIDs) > 0 {
		if err := tx.Where("reading_id IN ?", readingIDs).Delete(&ParameterValue{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("extraction_id = ?", id).Delete(&Reading{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&Extraction{}).Error
}
