package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tok(text string, x0, y0, x1, y1 float64) Token {
	return Token{
		Text:       text,
		Confidence: 0.9,
		BBox:       BBox{X0: x0, Y0: y0, X1: x1, Y1: y1},
	}
}

func TestClusterRows_GroupsByVerticalProximity(t *testing.T) {
	tokens := []Token{
		tok("350", 200, 102, 230, 118),
		tok("14:30", 40, 100, 70, 116),
		tok("1247", 100, 104, 140, 120),
		tok("15:30", 40, 160, 70, 176),
		tok("1190", 100, 161, 140, 177),
	}

	rows := ClusterRows(tokens, 20)
	require.Len(t, rows, 2)

	require.Len(t, rows[0].Tokens, 3)
	assert.Equal(t, "14:30", rows[0].Tokens[0].Text)
	assert.Equal(t, "1247", rows[0].Tokens[1].Text)
	assert.Equal(t, "350", rows[0].Tokens[2].Text)

	require.Len(t, rows[1].Tokens, 2)
	assert.Equal(t, "15:30", rows[1].Tokens[0].Text)
}

func TestClusterRows_ToleratesBaselineDrift(t *testing.T) {
	// A photographed row drifts downward across the page; successive deltas
	// stay under the tolerance even though the total drift exceeds it.
	tokens := []Token{
		tok("a", 10, 100, 20, 110),
		tok("b", 50, 112, 60, 122),
		tok("c", 90, 124, 100, 134),
	}

	rows := ClusterRows(tokens, 15)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0].Tokens, 3)
}

func TestClusterRows_Idempotent(t *testing.T) {
	tokens := []Token{
		tok("350", 200, 102, 230, 118),
		tok("14:30", 40, 100, 70, 116),
		tok("1247", 100, 104, 140, 120),
		tok("15:30", 40, 160, 70, 176),
		tok("1190", 100, 161, 140, 177),
	}

	first := ClusterRows(tokens, 20)
	second := ClusterRows(tokens, 20)
	assert.Equal(t, first, second)

	// Re-clustering the already-grouped tokens reproduces the same grouping.
	var flattened []Token
	for _, row := range first {
		flattened = append(flattened, row.Tokens...)
	}
	assert.Equal(t, first, ClusterRows(flattened, 20))
}

func TestClusterRows_SingleToken(t *testing.T) {
	rows := ClusterRows([]Token{tok("14:30", 40, 100, 70, 116)}, 20)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0].Tokens, 1)
}

func TestClusterRows_Empty(t *testing.T) {
	assert.Nil(t, ClusterRows(nil, 20))
}
