package extract

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"fieldsheet/internal/logger"
)

// ErrNoText is returned when the OCR engine produced neither tokens nor line
// text for a page. It is the only condition the pipeline refuses to work
// with; everything short of it degrades to a partial result.
var ErrNoText = errors.New("no text extracted from document")

// PageInput is one OCR-recognized page handed to the pipeline.
type PageInput struct {
	// Text is the engine's plain line text, used by the fallback parser.
	Text string
	// Tokens are the recognized words with boxes and confidences in [0,1].
	Tokens []Token
	// PageWidth is the pixel width of the page, for calibrated scaling.
	PageWidth float64
	// Date is carried onto every reading verbatim, as written on the sheet.
	Date string
}

// Pipeline runs spatial table reconstruction with line-text fallback for one
// document profile. A Pipeline is stateless across calls and safe for
// concurrent use.
type Pipeline struct {
	profile Profile
	catalog *ParameterCatalog
	log     zerolog.Logger
}

// NewPipeline creates a pipeline for the given profile. A nil catalog gets
// the built-in default.
func NewPipeline(profile Profile, catalog *ParameterCatalog) *Pipeline {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Pipeline{
		profile: profile,
		catalog: catalog,
		log:     logger.WithComponent("extract"),
	}
}

// Run reconstructs the page into a table. Spatial reconstruction is tried
// first; when it yields zero readings and line text exists, the fallback
// parser takes over and the result is marked degraded.
func (p *Pipeline) Run(in PageInput) (*ExtractedTable, error) {
	if len(in.Tokens) == 0 && strings.TrimSpace(in.Text) == "" {
		return nil, ErrNoText
	}

	table := NewAssembler(p.profile, p.catalog).Assemble(in.Tokens, in.PageWidth, in.Date)
	if len(table.Readings) > 0 {
		p.log.Info().
			Str("profile", p.profile.Name).
			Int("readings", len(table.Readings)).
			Int("rows_discarded", table.RowsDiscarded).
			Bool("degraded", table.Degraded).
			Msg("Table reconstructed from token positions")
		return table, nil
	}

	if strings.TrimSpace(in.Text) == "" {
		// Tokens existed but none formed a reading, and there is no line
		// text to fall back on.
		return table, nil
	}

	p.log.Warn().
		Str("profile", p.profile.Name).
		Int("tokens", len(in.Tokens)).
		Msg("Spatial reconstruction yielded no readings, falling back to line text")

	fallback := ParseFallback(in.Text, p.profile, p.catalog, in.Date)
	fallback.RowsDiscarded += table.RowsDiscarded
	return fallback, nil
}
