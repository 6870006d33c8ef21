// Package ocr extracts text and word-level bounding boxes from scanned field
// sheets.
//
// Three engines are supported behind one interface: local Tesseract for
// offline use, Google Cloud Vision for photographed sheets, and Google
// Document AI for the highest-fidelity structured extraction. All engines
// normalize word confidences to [0,1] and report boxes in pixel coordinates
// with the origin at the top-left of the page, so the downstream table
// reconstruction never needs to know which engine ran.
//
// Required Environment Variables (cloud engines):
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
//   - GOOGLE_PROJECT_ID and GOOGLE_LOCATION for Document AI
//
// Cloud Vision API Limitations:
//   - Maximum file size: 20MB for synchronous processing
//   - Maximum pages: 5 pages for synchronous PDF processing
package ocr

import (
	"context"
	"io"
	"time"
)

// BBox is a word bounding box in page pixel coordinates, top-left origin.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Word is one recognized word with its position and normalized confidence.
type Word struct {
	Text string `json:"text"`

	// Confidence is normalized to [0,1] regardless of engine.
	Confidence float64 `json:"confidence"`

	BBox BBox `json:"bbox"`
}

// Result contains the recognition output for one page.
type Result struct {
	// Text is the engine's plain line text in reading order.
	Text string `json:"text"`

	// Words are the recognized words with boxes; may be empty when the
	// engine found text but no word geometry.
	Words []Word `json:"words,omitempty"`

	// PageWidth and PageHeight are the pixel dimensions of the recognized
	// page, needed to scale calibrated column layouts.
	PageWidth  float64 `json:"page_width"`
	PageHeight float64 `json:"page_height"`

	// Confidence is the average word confidence (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// ProcessedAt is the timestamp when recognition completed.
	ProcessedAt time.Time `json:"processed_at"`

	// ProcessingDuration is how long recognition took.
	ProcessingDuration time.Duration `json:"processing_duration"`
}

// Engine is the interface all OCR backends implement.
type Engine interface {
	// Name identifies the engine in logs and stored extractions.
	Name() string

	// RecognizeImage extracts text and word boxes from a single image
	// (JPEG or PNG).
	RecognizeImage(ctx context.Context, image io.Reader) (*Result, error)

	// RecognizePDF extracts text and word boxes from a PDF, one Result per
	// page. Engines without PDF support return ErrUnsupportedFormat.
	RecognizePDF(ctx context.Context, pdf io.Reader) ([]*Result, error)

	// Close releases any underlying clients.
	Close() error
}
