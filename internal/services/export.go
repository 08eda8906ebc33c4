package services

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"
)

// ExportResultsCSV renders one row per diagnostic result with the aggregate
// numbers, newest first as provided.
func ExportResultsCSV(results []*DiagnosticResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"result_id", "date", "company", "total_score", "max_possible_score", "percentage_score"})
	for _, r := range results {
		rec := []string{
			r.ID,
			r.Date.Format(time.RFC3339),
			r.CompanyData.Company,
			ftoa(r.TotalScore),
			ftoa(r.MaxPossibleScore),
			ftoa(r.PercentageScore),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportPillarsCSV renders a long-format CSV: one row per pillar per result,
// reading only the snapshot captured at computation time.
func ExportPillarsCSV(results []*DiagnosticResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"result_id", "date", "pillar_id", "pillar_name", "score", "max_possible_score", "percentage_score"})
	for _, r := range results {
		for _, ps := range r.PillarScores {
			rec := []string{
				r.ID,
				r.Date.Format(time.RFC3339),
				ps.PillarID,
				ps.PillarName,
				ftoa(ps.Score),
				ftoa(ps.MaxPossibleScore),
				ftoa(ps.PercentageScore),
			}
			if err := w.Write(rec); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ftoa formats scores without trailing zeros; exact representation is a
// presentation concern and CSV consumers re-parse anyway.
func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
