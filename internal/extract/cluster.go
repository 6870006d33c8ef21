package extract

import (
	"math"
	"sort"
)

// Row is a horizontally ordered cluster of tokens believed to belong to one
// reading line. Tokens are sorted by BBox.X0 ascending.
type Row struct {
	Tokens []Token
}

// ClusterRows groups tokens into rows by vertical proximity and orders each
// row left to right.
//
// Tokens are sorted by their top edge, then walked with a running lastY
// cursor: a token joins the current row when |y0 - lastY| < rowTolerance,
// otherwise the buffered row is flushed and a new one starts. The running
// cursor (rather than a fixed per-row anchor) tolerates gradual baseline
// drift across a wide row, at the cost of merging two visually close rows
// when the tolerance is set too large. Typical tolerances: 20px for generic
// photographed sheets, 25px for the calibrated gas-compressor layout.
//
// Zero tokens yield zero rows; a single stray token yields a row of length
// one.
func ClusterRows(tokens []Token, rowTolerance float64) []Row {
	if len(tokens) == 0 {
		return nil
	}

	sorted := make([]Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BBox.Y0 < sorted[j].BBox.Y0
	})

	var rows []Row
	var current []Token
	lastY := math.NaN()

	for _, tok := range sorted {
		if math.IsNaN(lastY) || math.Abs(tok.BBox.Y0-lastY) < rowTolerance {
			current = append(current, tok)
		} else {
			rows = append(rows, finishRow(current))
			current = []Token{tok}
		}
		lastY = tok.BBox.Y0
	}
	rows = append(rows, finishRow(current))

	return rows
}

func finishRow(tokens []Token) Row {
	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].BBox.X0 < tokens[j].BBox.X0
	})
	return Row{Tokens: tokens}
}
