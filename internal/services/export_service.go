package services

import "fmt"

type ExportStore interface {
	ListResultsByOwner(ownerID string) ([]*DiagnosticResult, error)
}

type ExportParams struct {
	OwnerID string
	Format  string
}

type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ExportService struct {
	store ExportStore
}

func NewExportService(store ExportStore) *ExportService {
	return &ExportService{store: store}
}

// Export renders the owner's results in the requested format: "results"
// (default, one CSV row per result), "pillars" (long CSV, one row per pillar
// per result) or "xlsx" (styled report workbook for the latest result).
func (s *ExportService) Export(params ExportParams) (*ExportResult, error) {
	if params.OwnerID == "" {
		return nil, NewUnauthorizedError("owner required")
	}
	format := params.Format
	if format == "" {
		format = "results"
	}
	results, err := s.store.ListResultsByOwner(params.OwnerID)
	if err != nil {
		return nil, err
	}

	switch format {
	case "results":
		b, err := ExportResultsCSV(results)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: "results.csv", ContentType: "text/csv; charset=utf-8", Data: b}, nil
	case "pillars":
		b, err := ExportPillarsCSV(results)
		if err != nil {
			return nil, err
		}
		return &ExportResult{Filename: "pillars.csv", ContentType: "text/csv; charset=utf-8", Data: b}, nil
	case "xlsx":
		if len(results) == 0 {
			return nil, NewNotFoundError("no results to export")
		}
		latest := results[0]
		b, err := BuildResultWorkbook(latest)
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("diagnostico_%s.xlsx", latest.Date.Format("2006-01-02"))
		return &ExportResult{
			Filename:    name,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        b,
		}, nil
	default:
		return nil, NewInvalidError("unsupported format")
	}
}
