package ocr_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"fieldsheet/internal/ocr"
)

// Example demonstrates basic usage of the Vision engine.
func Example() {
	// Load .env file (using godotenv in main)
	// This should be done in your main() function:
	//
	// if err := godotenv.Load(); err != nil {
	//     log.Printf("Warning: Could not load .env file: %v", err)
	// }

	// Create context with timeout for OCR processing
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Create engine - credentials handled internally from environment
	engine, err := ocr.NewGoogleVisionEngine(ctx)
	if err != nil {
		log.Fatalf("Failed to create OCR engine: %v", err)
	}
	defer engine.Close()

	// Open a photographed sheet
	imageFile, err := os.Open("sheet_2024_03_15.jpg")
	if err != nil {
		log.Fatalf("Failed to open image: %v", err)
	}
	defer imageFile.Close()

	result, err := engine.RecognizeImage(ctx, imageFile)
	if err != nil {
		log.Fatalf("Failed to recognize image: %v", err)
	}

	fmt.Printf("Recognized %d words at %.1f%% confidence\n", len(result.Words), result.Confidence*100)
}

// ExampleEngine_RecognizePDF demonstrates multi-page PDF recognition.
func ExampleEngine_RecognizePDF() {
	ctx := context.Background()

	engine, err := ocr.NewGoogleVisionEngine(ctx)
	if err != nil {
		log.Fatalf("Failed to create OCR engine: %v", err)
	}
	defer engine.Close()

	pdfFile, err := os.Open("compressor_log.pdf")
	if err != nil {
		log.Fatalf("Failed to open PDF: %v", err)
	}
	defer pdfFile.Close()

	pages, err := engine.RecognizePDF(ctx, pdfFile)
	if err != nil {
		log.Fatalf("Failed to recognize PDF: %v", err)
	}

	for i, page := range pages {
		fmt.Printf("Page %d: %d words, %.0fx%.0fpx, %.1f%% confidence\n",
			i+1, len(page.Words), page.PageWidth, page.PageHeight, page.Confidence*100)
	}
}

// ExampleEngine_errorHandling demonstrates proper error handling patterns.
func ExampleEngine_errorHandling() {
	ctx := context.Background()

	engine, err := ocr.NewGoogleVisionEngine(ctx)
	if err != nil {
		// Handle credential errors
		if err == ocr.ErrMissingCredentials {
			log.Fatalf("Please set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")
		}
		log.Fatalf("Failed to create OCR engine: %v", err)
	}
	defer engine.Close()

	pdfFile, err := os.Open("large_document.pdf")
	if err != nil {
		log.Fatalf("Failed to open PDF: %v", err)
	}
	defer pdfFile.Close()

	pages, err := engine.RecognizePDF(ctx, pdfFile)
	if err != nil {
		// Handle specific OCR errors
		switch {
		case err == ocr.ErrDocumentTooLarge:
			log.Printf("Document is too large for processing. Maximum size is 20MB.")
			return
		case err == ocr.ErrTooManyPages:
			log.Printf("PDF has too many pages. Maximum is 5 pages for synchronous processing.")
			return
		case err == ocr.ErrInvalidPDF:
			log.Printf("The file is not a valid PDF document.")
			return
		case err == ocr.ErrEmptyDocument:
			log.Printf("No readable text found in the document.")
			return
		default:
			log.Fatalf("OCR processing failed: %v", err)
		}
	}

	fmt.Printf("Successfully processed %d pages\n", len(pages))
}

// ExampleNewTesseractEngine demonstrates the offline fallback engine.
func ExampleNewTesseractEngine() {
	ctx := context.Background()

	// No credentials needed; Tesseract runs locally.
	engine := ocr.NewTesseractEngine(ocr.TesseractConfig{
		Language:   "eng",
		Preprocess: true,
	})
	defer engine.Close()

	imageFile, err := os.Open("sheet_2024_03_15.jpg")
	if err != nil {
		log.Fatalf("Failed to open image: %v", err)
	}
	defer imageFile.Close()

	result, err := engine.RecognizeImage(ctx, imageFile)
	if err != nil {
		log.Fatalf("Failed to recognize image: %v", err)
	}

	fmt.Printf("Recognized %d words\n", len(result.Words))
}
