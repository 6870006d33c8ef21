// Package preprocess cleans up photographed field sheets before OCR.
// Grayscale conversion, a contrast push and a light sharpen noticeably
// improve Tesseract's hit rate on pencil-filled forms; the cloud engines do
// their own preprocessing and don't need it.
package preprocess

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Enhance applies the standard cleanup chain to a decoded image.
func Enhance(img image.Image) image.Image {
	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 30)
	out = imaging.Sharpen(out, 1.0)
	return out
}

// EnhanceBytes decodes an image, applies the cleanup chain and re-encodes it
// as PNG. PNG keeps the sharpened edges free of JPEG artifacts.
func EnhanceBytes(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image for preprocessing: %w", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, Enhance(img), imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode preprocessed image: %w", err)
	}
	return buf.Bytes(), nil
}
