package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"fieldsheet/internal/extract"
	"fieldsheet/internal/ocr"
)

// newOCREngine creates the OCR engine selected by name.
func newOCREngine(ctx context.Context, name, language string, enhance bool, log zerolog.Logger) (ocr.Engine, error) {
	switch name {
	case "tesseract":
		return ocr.NewTesseractEngine(ocr.TesseractConfig{
			Language:   language,
			Preprocess: enhance,
		}), nil

	case "google-vision", "document-ai":
		hasCredentials := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" || os.Getenv("GOOGLE_CREDENTIALS") != ""
		if !hasCredentials {
			log.Error().Msg("Google Cloud credentials not configured")
			return nil, fmt.Errorf("Google Cloud credentials not configured. Please set one of:\n\n" +
				"1. Export GOOGLE_APPLICATION_CREDENTIALS with path to service account JSON:\n" +
				"   export GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account-key.json\n\n" +
				"2. Export GOOGLE_CREDENTIALS with inline JSON:\n" +
				"   export GOOGLE_CREDENTIALS='{\"type\":\"service_account\",\"project_id\":\"your-project\",...}'\n\n" +
				"3. Check that your .env file contains the credentials variables")
		}

		var engine ocr.Engine
		var err error
		if name == "google-vision" {
			engine, err = ocr.NewGoogleVisionEngine(ctx)
		} else {
			engine, err = ocr.NewDocumentAIEngine(ctx)
		}
		if err != nil {
			if errors.Is(err, ocr.ErrMissingCredentials) {
				log.Error().
					Err(err).
					Msg("Google Cloud credentials validation failed")
				return nil, fmt.Errorf("Google Cloud credentials validation failed. Please verify:\n\n"+
					"1. Credentials file exists and is readable\n"+
					"2. JSON format is valid\n"+
					"3. Service account has proper permissions\n\n"+
					"Original error: %w", err)
			}
			log.Error().
				Err(err).
				Msg("Failed to create OCR engine")
			return nil, fmt.Errorf("failed to create OCR engine: %w", err)
		}
		return engine, nil

	default:
		return nil, fmt.Errorf("unknown OCR engine: %s (available: tesseract, google-vision, document-ai)", name)
	}
}

// resolveProfile picks the extraction profile from flags: an explicit JSON
// file wins over a built-in name.
func resolveProfile(name, path string) (extract.Profile, error) {
	if path != "" {
		return extract.LoadProfile(path)
	}
	return extract.ProfileByName(name)
}

// pageInput converts an OCR result into pipeline input.
func pageInput(result *ocr.Result, date string) extract.PageInput {
	tokens := make([]extract.Token, 0, len(result.Words))
	for _, word := range result.Words {
		tokens = append(tokens, extract.Token{
			Text:       word.Text,
			Confidence: word.Confidence,
			BBox: extract.BBox{
				X0: word.BBox.X0,
				Y0: word.BBox.Y0,
				X1: word.BBox.X1,
				Y1: word.BBox.Y1,
			},
		})
	}
	return extract.PageInput{
		Text:      result.Text,
		Tokens:    tokens,
		PageWidth: result.PageWidth,
		Date:      date,
	}
}

// recognizeFile runs the engine appropriate to the file type, one Result per
// page.
func recognizeFile(ctx context.Context, engine ocr.Engine, path string) ([]*ocr.Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return engine.RecognizePDF(ctx, file)
	}

	result, err := engine.RecognizeImage(ctx, file)
	if err != nil {
		return nil, err
	}
	return []*ocr.Result{result}, nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	// Handle interrupt signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling processing")
			cancel()
		case <-ctx.Done():
			// Context completed normally
		}
	}()

	return ctx, cancel
}

// handleOCRError provides user-friendly error messages for OCR failures
func handleOCRError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("OCR processing failed")

	errStr := err.Error()

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("OCR processing timed out. Try increasing --timeout or processing a smaller file")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("OCR processing was canceled")
	case errors.Is(err, ocr.ErrDocumentTooLarge):
		return fmt.Errorf("document is too large (maximum 20MB). Try compressing or splitting the file")
	case errors.Is(err, ocr.ErrTooManyPages):
		return fmt.Errorf("PDF has too many pages (maximum 5 pages). Try splitting into smaller files")
	case errors.Is(err, ocr.ErrInvalidPDF):
		return fmt.Errorf("invalid or corrupted PDF file. Please check the file integrity")
	case errors.Is(err, ocr.ErrInvalidImage):
		return fmt.Errorf("invalid or unsupported image file. Supported formats: JPEG, PNG")
	case errors.Is(err, ocr.ErrUnsupportedFormat):
		return fmt.Errorf("the selected OCR engine cannot process this file type. PDFs need --engine google-vision or --engine document-ai")
	case errors.Is(err, ocr.ErrEmptyDocument):
		return fmt.Errorf("no readable text found in the document. The scan may be too degraded or blank")
	case strings.Contains(errStr, "Unauthenticated") ||
		strings.Contains(errStr, "invalid_grant") ||
		strings.Contains(errStr, "auth:") ||
		strings.Contains(errStr, "transport: per-RPC creds failed"):
		return fmt.Errorf("Google Cloud authentication failed. Please check your credentials:\n\n"+
			"1. Set GOOGLE_APPLICATION_CREDENTIALS to your service account JSON file path\n"+
			"2. Or set GOOGLE_CREDENTIALS with inline JSON\n"+
			"3. Ensure the service account has the required API role\n\n"+
			"Original error: %v", err)
	case strings.Contains(errStr, "PERMISSION_DENIED") ||
		strings.Contains(errStr, "permission") ||
		strings.Contains(errStr, "forbidden"):
		return fmt.Errorf("permission denied. Please ensure your Google Cloud service account has the required API role")
	case strings.Contains(errStr, "QUOTA_EXCEEDED") ||
		strings.Contains(errStr, "quota"):
		return fmt.Errorf("Google Cloud API quota exceeded. Check your project quotas in the Google Cloud Console")
	case errors.Is(err, ocr.ErrOCRFailed):
		return fmt.Errorf("OCR processing failed. This may be due to network issues, API quota limits, or service unavailability: %w", err)
	default:
		return fmt.Errorf("OCR processing failed: %w", err)
	}
}
