package api

import "github.com/andremonteiro/diagnostico/internal/services"

type resultStoreAdapter struct {
	store   Store
	catalog *catalogStoreAdapter
}

func newResultStoreAdapter(store Store) *resultStoreAdapter {
	return &resultStoreAdapter{store: store, catalog: newCatalogStoreAdapter(store)}
}

var _ services.ResultStore = (*resultStoreAdapter)(nil)

func toServiceResult(r *DiagnosticResult) *services.DiagnosticResult {
	out := &services.DiagnosticResult{
		ID:     r.ID,
		UserID: r.UserID,
		Date:   r.Date,
		CompanyData: services.CompanyData{
			Name:          r.CompanyData.Name,
			Company:       r.CompanyData.Company,
			TaxID:         r.CompanyData.TaxID,
			HasPartners:   r.CompanyData.HasPartners,
			EmployeeCount: r.CompanyData.EmployeeCount,
			Revenue:       r.CompanyData.Revenue,
			Segment:       r.CompanyData.Segment,
			YearsActive:   r.CompanyData.YearsActive,
			Region:        r.CompanyData.Region,
			LegalForm:     r.CompanyData.LegalForm,
		},
		Answers:          r.Answers,
		TotalScore:       r.TotalScore,
		MaxPossibleScore: r.MaxPossibleScore,
		PercentageScore:  r.PercentageScore,
	}
	for _, ps := range r.PillarScores {
		out.PillarScores = append(out.PillarScores, services.PillarScore(ps))
	}
	return out
}

func fromServiceResult(r *services.DiagnosticResult) *DiagnosticResult {
	out := &DiagnosticResult{
		ID:     r.ID,
		UserID: r.UserID,
		Date:   r.Date,
		CompanyData: CompanyData{
			Name:          r.CompanyData.Name,
			Company:       r.CompanyData.Company,
			TaxID:         r.CompanyData.TaxID,
			HasPartners:   r.CompanyData.HasPartners,
			EmployeeCount: r.CompanyData.EmployeeCount,
			Revenue:       r.CompanyData.Revenue,
			Segment:       r.CompanyData.Segment,
			YearsActive:   r.CompanyData.YearsActive,
			Region:        r.CompanyData.Region,
			LegalForm:     r.CompanyData.LegalForm,
		},
		Answers:          r.Answers,
		TotalScore:       r.TotalScore,
		MaxPossibleScore: r.MaxPossibleScore,
		PercentageScore:  r.PercentageScore,
	}
	for _, ps := range r.PillarScores {
		out.PillarScores = append(out.PillarScores, PillarScore(ps))
	}
	return out
}

func (a *resultStoreAdapter) ListPillars() ([]*services.Pillar, error) {
	return a.catalog.ListPillars()
}

func (a *resultStoreAdapter) InsertResult(r *services.DiagnosticResult) (*services.DiagnosticResult, error) {
	if err := a.store.AddResult(fromServiceResult(r)); err != nil {
		return nil, services.NewBadGatewayError("result not persisted")
	}
	return r, nil
}

func (a *resultStoreAdapter) ListResultsByOwner(ownerID string) ([]*services.DiagnosticResult, error) {
	rows, err := a.store.ListResultsByOwner(ownerID)
	if err != nil {
		return nil, services.NewBadGatewayError("results unavailable")
	}
	out := make([]*services.DiagnosticResult, 0, len(rows))
	for _, r := range rows {
		out = append(out, toServiceResult(r))
	}
	return out, nil
}
