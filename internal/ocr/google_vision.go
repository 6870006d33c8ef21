package ocr

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

const (
	// MaxFileSizeBytes is the maximum file size for synchronous processing (20MB)
	MaxFileSizeBytes = 20 * 1024 * 1024

	// MaxPagesSync is the maximum number of pages for synchronous processing
	MaxPagesSync = 5
)

// GoogleVisionEngine implements Engine using Google Cloud Vision API.
type GoogleVisionEngine struct {
	client *vision.ImageAnnotatorClient
}

// NewGoogleVisionEngine creates a Vision engine with credentials from environment.
// It expects either GOOGLE_APPLICATION_CREDENTIALS path or GOOGLE_CREDENTIALS JSON in env.
func NewGoogleVisionEngine(ctx context.Context) (Engine, error) {
	const op = "NewGoogleVisionEngine"

	var client *vision.ImageAnnotatorClient
	var err error

	// Check for inline credentials first
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		// Use credentials file
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		// Try default credentials as fallback
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &GoogleVisionEngine{client: client}, nil
}

// NewGoogleVisionEngineWithClient creates a Vision engine with an explicit client (for testing).
func NewGoogleVisionEngineWithClient(client *vision.ImageAnnotatorClient) Engine {
	return &GoogleVisionEngine{client: client}
}

// Name implements Engine.
func (g *GoogleVisionEngine) Name() string { return "google-vision" }

// RecognizeImage extracts text and word boxes from a single image.
func (g *GoogleVisionEngine) RecognizeImage(ctx context.Context, image io.Reader) (*Result, error) {
	const op = "RecognizeImage"
	startTime := time.Now()

	imageBytes, err := io.ReadAll(image)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to read image data")
	}
	if len(imageBytes) > MaxFileSizeBytes {
		return nil, WrapOCRError(op, ErrDocumentTooLarge, fmt.Sprintf("file size: %d bytes", len(imageBytes)))
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageBytes},
				Features: []*visionpb.Feature{
					{
						Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION,
					},
				},
			},
		},
	}

	resp, err := g.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return nil, WrapOCRError(op, ErrOCRFailed, "no response from Vision API")
	}

	annotation := resp.Responses[0]
	if annotation.Error != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API error: %s", annotation.Error.Message))
	}

	result, err := annotationResult(annotation)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to process Vision API response")
	}

	result.ProcessedAt = time.Now()
	result.ProcessingDuration = result.ProcessedAt.Sub(startTime)
	return result, nil
}

// RecognizePDF extracts text and word boxes from a PDF, one Result per page.
func (g *GoogleVisionEngine) RecognizePDF(ctx context.Context, pdf io.Reader) ([]*Result, error) {
	const op = "RecognizePDF"
	startTime := time.Now()

	pdfBytes, err := io.ReadAll(pdf)
	if err != nil {
		return nil, WrapOCRError(op, err, "failed to read PDF data")
	}
	if len(pdfBytes) > MaxFileSizeBytes {
		return nil, WrapOCRError(op, ErrDocumentTooLarge, fmt.Sprintf("file size: %d bytes", len(pdfBytes)))
	}
	if len(pdfBytes) < 4 || string(pdfBytes[:4]) != "%PDF" {
		return nil, WrapOCRError(op, ErrInvalidPDF, "missing PDF header")
	}

	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  pdfBytes,
					MimeType: "application/pdf",
				},
				Features: []*visionpb.Feature{
					{
						Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION,
					},
				},
				Pages: nil, // Process all pages
			},
		},
	}

	resp, err := g.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return nil, WrapOCRError(op, ErrOCRFailed, "no response from Vision API")
	}

	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("Vision API error: %s", fileResp.Error.Message))
	}
	if len(fileResp.Responses) == 0 {
		return nil, WrapOCRError(op, ErrEmptyDocument, "no pages in Vision API response")
	}
	if len(fileResp.Responses) > MaxPagesSync {
		return nil, WrapOCRError(op, ErrTooManyPages, fmt.Sprintf("document has %d pages", len(fileResp.Responses)))
	}

	results := make([]*Result, 0, len(fileResp.Responses))
	for pageIdx, page := range fileResp.Responses {
		if page.Error != nil {
			return nil, WrapOCRError(op, ErrOCRFailed, fmt.Sprintf("error processing page %d: %s", pageIdx+1, page.Error.Message))
		}
		result, err := annotationResult(page)
		if err != nil {
			return nil, WrapOCRError(op, err, fmt.Sprintf("failed to process page %d", pageIdx+1))
		}
		result.ProcessedAt = time.Now()
		result.ProcessingDuration = result.ProcessedAt.Sub(startTime)
		results = append(results, result)
	}

	return results, nil
}

// annotationResult converts one page's annotation into a Result with
// word-level boxes. Vision reports word geometry as either absolute vertices
// or normalized [0,1] vertices; both are resolved to page pixels.
func annotationResult(annotation *visionpb.AnnotateImageResponse) (*Result, error) {
	if annotation.FullTextAnnotation == nil {
		return nil, ErrEmptyDocument
	}

	result := &Result{Text: annotation.FullTextAnnotation.Text}
	if strings.TrimSpace(result.Text) == "" {
		return nil, ErrEmptyDocument
	}

	var confidenceSum float64
	for _, page := range annotation.FullTextAnnotation.Pages {
		result.PageWidth = float64(page.Width)
		result.PageHeight = float64(page.Height)

		for _, block := range page.Blocks {
			for _, paragraph := range block.Paragraphs {
				for _, word := range paragraph.Words {
					var text strings.Builder
					for _, symbol := range word.Symbols {
						text.WriteString(symbol.Text)
					}
					if text.Len() == 0 {
						continue
					}

					box, ok := boundingBox(word.BoundingBox, result.PageWidth, result.PageHeight)
					if !ok {
						continue
					}

					w := Word{
						Text:       text.String(),
						Confidence: float64(word.Confidence),
						BBox:       box,
					}
					confidenceSum += w.Confidence
					result.Words = append(result.Words, w)
				}
			}
		}
	}

	if len(result.Words) > 0 {
		result.Confidence = confidenceSum / float64(len(result.Words))
	}

	return result, nil
}

// boundingBox resolves a Vision bounding poly to a pixel-space box.
func boundingBox(poly *visionpb.BoundingPoly, pageWidth, pageHeight float64) (BBox, bool) {
	if poly == nil {
		return BBox{}, false
	}

	if len(poly.Vertices) > 0 {
		box := BBox{X0: float64(poly.Vertices[0].X), Y0: float64(poly.Vertices[0].Y)}
		box.X1, box.Y1 = box.X0, box.Y0
		for _, v := range poly.Vertices[1:] {
			box.X0 = minFloat(box.X0, float64(v.X))
			box.Y0 = minFloat(box.Y0, float64(v.Y))
			box.X1 = maxFloat(box.X1, float64(v.X))
			box.Y1 = maxFloat(box.Y1, float64(v.Y))
		}
		return box, box.X1 > box.X0 && box.Y1 > box.Y0
	}

	if len(poly.NormalizedVertices) > 0 && pageWidth > 0 && pageHeight > 0 {
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

	return BBox{}, false
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Close closes the underlying Vision client.
func (g *GoogleVisionEngine) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
