package extract

import "sort"

// LowConfidenceCell identifies one extracted value below the review
// threshold.
type LowConfidenceCell struct {
	RowIdentifier string  `json:"row_identifier"`
	Parameter     string  `json:"parameter"`
	Value         string  `json:"value"`
	Confidence    float64 `json:"confidence"`
}

// QualitySummary rolls per-cell confidence up to per-extraction statistics
// used to prioritize operator review.
type QualitySummary struct {
	ReadingCount   int     `json:"reading_count"`
	CellCount      int     `json:"cell_count"`
	MeanConfidence float64 `json:"mean_confidence"`
	MinConfidence  float64 `json:"min_confidence"`

	// LowConfidenceCells lists cells below the threshold, worst first.
	LowConfidenceCells []LowConfidenceCell `json:"low_confidence_cells,omitempty"`

	RowsDiscarded int  `json:"rows_discarded"`
	Degraded      bool `json:"degraded,omitempty"`
}

// Summarize computes review statistics for a table. threshold is the
// confidence below which a cell is flagged for operator attention.
func Summarize(table *ExtractedTable, threshold float64) QualitySummary {
	summary := QualitySummary{
		ReadingCount:  len(table.Readings),
		RowsDiscarded: table.RowsDiscarded,
		Degraded:      table.Degraded,
	}

	var sum float64
	min := 1.0
	for _, reading := range table.Readings {
		// Iterate parameters in header order so flagged cells come out
		// deterministically.
		for _, name := range table.Headers {
			p, ok := reading.Parameters[name]
			if !ok {
				continue
			}
			summary.CellCount++
			sum += p.Confidence
			if p.Confidence < min {
				min = p.Confidence
			}
			if p.Confidence < threshold {
				summary.LowConfidenceCells = append(summary.LowConfidenceCells, LowConfidenceCell{
					RowIdentifier: reading.RowIdentifier,
					Parameter:     name,
					Value:         p.Value,
					Confidence:    p.Confidence,
				})
			}
		}
	}

	if summary.CellCount > 0 {
		summary.MeanConfidence = sum / float64(summary.CellCount)
		summary.MinConfidence = min
	}

	sort.SliceStable(summary.LowConfidenceCells, func(i, j int) bool {
		return summary.LowConfidenceCells[i].Confidence < summary.LowConfidenceCells[j].Confidence
	})

	return summary
}
