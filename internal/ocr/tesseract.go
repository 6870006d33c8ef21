package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"

	"fieldsheet/internal/logger"
	"fieldsheet/internal/preprocess"
)

// TesseractConfig holds local Tesseract tuning.
type TesseractConfig struct {
	// Language is the Tesseract language code, e.g. "eng".
	Language string

	// Preprocess enables the grayscale/contrast/sharpen cleanup before
	// recognition. Helps with photographed pencil-filled sheets.
	Preprocess bool
}

// TesseractEngine implements Engine using a local Tesseract installation via
// gosseract. It is the offline fallback: free, no credentials, noticeably
// weaker on handwriting than the cloud engines.
type TesseractEngine struct {
	config TesseractConfig
	log    zerolog.Logger
}

// NewTesseractEngine creates a local Tesseract engine. An empty language
// defaults to "eng".
func NewTesseractEngine(config TesseractConfig) Engine {
	if config.Language == "" {
		config.Language = "eng"
	}
	return &TesseractEngine{
		config: config,
		log:    logger.WithComponent("tesseract"),
	}
}

// Name implements Engine.
func (t *TesseractEngine) Name() string { return "tesseract" }

// RecognizeImage extracts text and word boxes from a single image.
func (t *TesseractEngine) RecognizeImage(ctx context.Context, img io.Reader) (*Result, error) {
	const op = "RecognizeImage"
	startTime := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, WrapOCRError(op, ErrContextCanceled, err.Error())
	}

	imageBytes, err := io.ReadAll(img)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to read image data")
	}

	// Page dimensions come from the image header; the downstream column
	// scaling needs them even when Tesseract yields no boxes.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, WrapOCRError(op, ErrInvalidImage, err.Error())
	}

	if t.config.Preprocess {
		enhanced, err := preprocess.EnhanceBytes(imageBytes)
		if err != nil {
			t.log.Warn().Err(err).Msg("Preprocessing failed, using original image")
		} else {
			imageBytes = enhanced
		}
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.config.Language); err != nil {
		return nil, WrapOCRError(op, err, fmt.Sprintf("failed to set language %q", t.config.Language))
	}
	// Log sheets are sparse grids, not prose; sparse-text segmentation stops
	// Tesseract from forcing cells into paragraphs.
	if err := client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		t.log.Warn().Err(err).Msg("Failed to set sparse-text segmentation, using default")
	}
	if err := client.SetImageFromBytes(imageBytes); err != nil {
		return nil, WrapOCRError(op, err, "failed to set image")
	}

	text, err := client.Text()
	if err != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("tesseract failed: %v", err))
	}
	if strings.TrimSpace(text) == "" {
		return nil, WrapOCRError(op, ErrEmptyDocument, "tesseract found no text")
	}

	result := &Result{
		Text:       text,
		PageWidth:  float64(cfg.Width),
		PageHeight: float64(cfg.Height),
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Line text alone still feeds the fallback parser downstream.
		t.log.Warn().Err(err).Msg("Word bounding boxes unavailable, returning line text only")
	} else {
		var confidenceSum float64
		for _, box := range boxes {
			if strings.TrimSpace(box.Word) == "" {
				continue
			}
			w := Word{
				Text:       box.Word,
				Confidence: box.Confidence / 100.0,
				BBox: BBox{
					X0: float64(box.Box.Min.X),
					Y0: float64(box.Box.Min.Y),
					X1: float64(box.Box.Max.X),
					Y1: float64(box.Box.Max.Y),
				},
			}
			confidenceSum += w.Confidence
			result.Words = append(result.Words, w)
		}
		if len(result.Words) > 0 {
			result.Confidence = confidenceSum / float64(len(result.Words))
		}
	}

	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)

	t.log.Debug().
		Int("words", len(result.Words)).
		Float64("confidence", result.Confidence).
		Dur("duration", result.ProcessingDuration).
		Msg("Tesseract recognition completed")

	return result, nil
}

// RecognizePDF is not supported by the local engine; rasterize pages to
// images first or use a cloud engine.
func (t *TesseractEngine) RecognizePDF(ctx context.Context, pdf io.Reader) ([]*Result, error) {
	return nil, WrapOCRError("RecognizePDF", ErrUnsupportedFormat, "tesseract engine accepts images only")
}

// Close implements Engine. The engine creates per-call clients, so there is
// nothing to release.
func (t *TesseractEngine) Close() error { return nil }
