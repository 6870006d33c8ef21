package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"fieldsheet/internal/logger"
)

// DocumentAIConfig holds the Document AI processor coordinates.
type DocumentAIConfig struct {
	ProjectID        string
	Location         string
	ProcessorID      string
	ProcessorVersion string
	Timeout          time.Duration
}

// DocumentAIEngine implements Engine using Google Document AI's OCR
// processor. It yields the richest word geometry of the three engines and is
// the preferred backend for badly degraded handwritten sheets.
type DocumentAIEngine struct {
	client *documentai.DocumentProcessorClient
	config DocumentAIConfig
	log    zerolog.Logger
}

// NewDocumentAIEngine creates an engine with credentials from environment.
// Expects: GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS
// Requires: GOOGLE_PROJECT_ID, GOOGLE_LOCATION (e.g., "us" or "eu"),
// GOOGLE_PROCESSOR_ID pointing at an OCR processor.
func NewDocumentAIEngine(ctx context.Context) (Engine, error) {
	const op = "NewDocumentAIEngine"

	config := DocumentAIConfig{
		ProjectID:        getEnvVar("GOOGLE_PROJECT_ID", "GOOGLE_CLOUD_PROJECT"),
		Location:         getEnvVar("GOOGLE_LOCATION", "GOOGLE_CLOUD_LOCATION"),
		ProcessorID:      getEnvVar("GOOGLE_PROCESSOR_ID", "DOCUMENT_AI_PROCESSOR_ID"),
		ProcessorVersion: os.Getenv("GOOGLE_PROCESSOR_VERSION"),
		Timeout:          60 * time.Second,
	}

	if config.ProjectID == "" {
		return nil, WrapOCRError(op, ErrMissingCredentials, "GOOGLE_PROJECT_ID or GOOGLE_CLOUD_PROJECT is required")
	}
	if config.Location == "" {
		config.Location = "us" // Default location
	}
	if config.ProcessorID == "" {
		return nil, WrapOCRError(op, ErrMissingCredentials, "GOOGLE_PROCESSOR_ID or DOCUMENT_AI_PROCESSOR_ID is required")
	}

	var clientOptions []option.ClientOption

	// Set regional endpoint if not us-central1
	if config.Location != "" && config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		if len(clientOptions) == 0 {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
		return nil, WrapOCRError(op, err, fmt.Sprintf("failed to create Document AI client for location: %s", config.Location))
	}

	return &DocumentAIEngine{
		client: client,
		config: config,
		log:    logger.WithComponent("document-ai"),
	}, nil
}

// NewDocumentAIEngineWithConfig creates an engine with explicit config and client (for testing).
func NewDocumentAIEngineWithConfig(config DocumentAIConfig, client *documentai.DocumentProcessorClient) Engine {
	return &DocumentAIEngine{
		client: client,
		config: config,
		log:    logger.WithComponent("document-ai"),
	}
}

// Name implements Engine.
func (e *DocumentAIEngine) Name() string { return "document-ai" }

// Close implements Engine.
func (e *DocumentAIEngine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// RecognizeImage extracts text and word boxes from a single image.
func (e *DocumentAIEngine) RecognizeImage(ctx context.Context, image io.Reader) (*Result, error) {
	const op = "RecognizeImage"
	results, err := e.process(ctx, op, image, "image/png")
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// RecognizePDF extracts text and word boxes from a PDF, one Result per page.
func (e *DocumentAIEngine) RecognizePDF(ctx context.Context, pdf io.Reader) ([]*Result, error) {
	const op = "RecognizePDF"
	return e.process(ctx, op, pdf, "application/pdf")
}

func (e *DocumentAIEngine) process(ctx context.Context, op string, data io.Reader, mimeType string) ([]*Result, error) {
	startTime := time.Now()

	raw, err := io.ReadAll(data)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to read document data")
	}
	if len(raw) > MaxFileSizeBytes {
		return nil, WrapOCRError(op, ErrDocumentTooLarge, fmt.Sprintf("file size: %d bytes", len(raw)))
	}
	if mimeType == "application/pdf" && (len(raw) < 4 || string(raw[:4]) != "%PDF") {
		return nil, WrapOCRError(op, ErrInvalidPDF, "missing PDF header")
	}

	processCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: e.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  raw,
				MimeType: mimeType,
			},
		},
	}

	resp, err := e.client.ProcessDocument(processCtx, req)
	if err != nil {
		return nil, e.handleProcessingError(op, err)
	}
	if resp.Document == nil {
		return nil, WrapOCRError(op, ErrOCRFailed, "no document in response")
	}

	results, err := e.extractPages(resp.Document)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to extract page tokens")
	}

	now := time.Now()
	for _, r := range results {
		r.ProcessedAt = now
		r.ProcessingDuration = now.Sub(startTime)
	}

	e.log.Info().
		Int("pages", len(results)).
		Dur("duration", now.Sub(startTime)).
		Msg("Document AI recognition completed")

	return results, nil
}

// processorName constructs the full processor name for Document AI API.
func (e *DocumentAIEngine) processorName() string {
	if e.config.ProcessorVersion != "" {
		return fmt.Sprintf("projects/%s/locations/%s/processors/%s/processorVersions/%s",
			e.config.ProjectID, e.config.Location, e.config.ProcessorID, e.config.ProcessorVersion)
	}
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		e.config.ProjectID, e.config.Location, e.config.ProcessorID)
}

// handleProcessingError converts Document AI errors to appropriate OCR errors.
func (e *DocumentAIEngine) handleProcessingError(op string, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "PERMISSION_DENIED"):
		return WrapOCRError(op, ErrMissingCredentials, "insufficient permissions for Document AI")
	case strings.Contains(errStr, "NOT_FOUND"):
		return WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("processor not found: %s", e.config.ProcessorID))
	case strings.Contains(errStr, "INVALID_ARGUMENT"):
		return WrapOCRError(op, ErrInvalidPDF, "document format not supported or corrupted")
	case strings.Contains(errStr, "DeadlineExceeded") || strings.Contains(errStr, "context deadline exceeded"):
		return WrapOCRError(op, context.DeadlineExceeded, "processing timeout")
	case strings.Contains(errStr, "Canceled") || strings.Contains(errStr, "context canceled"):
		return WrapOCRError(op, ErrContextCanceled, "processing was canceled")
	default:
		return WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Document AI error: %v", err))
	}
}

// extractPages converts Document AI pages into Results. Word text is resolved
// through the token's text anchor into the document text; boxes come from the
// layout's normalized vertices scaled by the page dimensions.
func (e *DocumentAIEngine) extractPages(doc *documentaipb.Document) ([]*Result, error) {
	if len(doc.Pages) == 0 || strings.TrimSpace(doc.Text) == "" {
		return nil, ErrEmptyDocument
	}

	results := make([]*Result, 0, len(doc.Pages))
	for _, page := range doc.Pages {
		result := &Result{Text: pageText(doc, page)}
		if page.Dimension != nil {
			result.PageWidth = float64(page.Dimension.Width)
			result.PageHeight = float64(page.Dimension.Height)
		}

		var confidenceSum float64
		for _, token := range page.Tokens {
			if token.Layout == nil {
				continue
			}
			text := strings.TrimSpace(anchorText(doc.Text, token.Layout.TextAnchor))
			if text == "" {
				continue
			}
			box, ok := normalizedBox(token.Layout.BoundingPoly, result.PageWidth, result.PageHeight)
			if !ok {
				continue
			}

			w := Word{
				Text:       text,
				Confidence: float64(token.Layout.Confidence),
				BBox:       box,
			}
			confidenceSum += w.Confidence
			result.Words = append(result.Words, w)
		}

		if len(result.Words) > 0 {
			result.Confidence = confidenceSum / float64(len(result.Words))
		}
		results = append(results, result)
	}

	return results, nil
}

// pageText slices the page's own text out of the document text via the page
// layout anchor, falling back to the whole document text for single-page
// inputs.
func pageText(doc *documentaipb.Document, page *documentaipb.Document_Page) string {
	if page.Layout != nil {
		if text := anchorText(doc.Text, page.Layout.TextAnchor); text != "" {
			return text
		}
	}
	if len(doc.Pages) == 1 {
		return doc.Text
	}
	return ""
}

// anchorText resolves a text anchor's segments against the document text.
func anchorText(docText string, anchor *documentaipb.Document_TextAnchor) string {
	if anchor == nil {
		return ""
	}
	var sb strings.Builder
	for _, segment := range anchor.TextSegments {
		start := int(segment.StartIndex)
		end := int(segment.EndIndex)
		if start < 0 || end > len(docText) || start >= end {
			continue
		}
		sb.WriteString(docText[start:end])
	}
	return sb.String()
}

// normalizedBox resolves a Document AI bounding poly (normalized vertices) to
// page pixels.
func normalizedBox(poly *documentaipb.BoundingPoly, pageWidth, pageHeight float64) (BBox, bool) {
	if poly == nil || len(poly.NormalizedVertices) == 0 || pageWidth <= 0 || pageHeight <= 0 {
		return BBox{}, false
	}

	first := poly.NormalizedVertices[0]
	box := BBox{X0: float64(first.X) * pageWidth, Y0: float64(first.Y) * pageHeight}
	box.X1, box.Y1 = box.X0, box.Y0
	for _, v := range poly.NormalizedVertices[1:] {
		box.X0 = minFloat(box.X0, float64(v.X)*pageWidth)
		box.Y0 = minFloat(box.Y0, float64(v.Y)*pageHeight)
		box.X1 = maxFloat(box.X1, float64(v.X)*pageWidth)
		box.Y1 = maxFloat(box.Y1, float64(v.Y)*pageHeight)
	}
	return box, box.X1 > box.X0 && box.Y1 > box.Y0
}

// getEnvVar tries multiple environment variable names and returns the first non-empty value
func getEnvVar(names ...string) string {
	for _, name := range names {
		if value := os.Getenv(name); value != "" {
			return value
		}
	}
	return ""
}
