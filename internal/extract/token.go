// Package extract reconstructs structured production readings from the raw
// token stream of an OCR engine.
//
// The pipeline turns an unordered bag of recognized words (each with a
// bounding box and a confidence score) into semantically labeled
// (row, parameter, value, unit, confidence) tuples:
//
//	tokens -> row clustering -> column mapping -> value/unit parsing -> table
//
// Two column-mapping strategies are supported: a calibrated layout of
// expected column positions (rigid sheets such as gas-compressor hourly
// logs) and header inference from the first detected row (unknown table
// layouts). When spatial reconstruction yields nothing, a line-text fallback
// parser produces a lower-fidelity result so the operator always gets
// something to review.
package extract

// BBox is a pixel-space bounding box with the origin at the top-left of the
// page. Any box produced by the OCR layer satisfies X1 > X0 and Y1 > Y0.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent of the box.
func (b BBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent of the box.
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }

// CenterX returns the horizontal center of the box.
func (b BBox) CenterX() float64 { return (b.X0 + b.X1) / 2 }

// CenterY returns the vertical center of the box.
func (b BBox) CenterY() float64 { return (b.Y0 + b.Y1) / 2 }

// Valid reports whether the box has positive area and non-negative origin.
func (b BBox) Valid() bool {
	return b.X0 >= 0 && b.Y0 >= 0 && b.X1 > b.X0 && b.Y1 > b.Y0
}

// Token is one OCR-recognized word. Tokens are produced by the OCR layer
// with confidence already normalized to [0,1] and are immutable afterward.
type Token struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	BBox       BBox    `json:"bbox"`
}
