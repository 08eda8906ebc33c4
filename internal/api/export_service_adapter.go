package api

import "github.com/andremonteiro/diagnostico/internal/services"

type exportStoreAdapter struct {
	results *resultStoreAdapter
}

func newExportStoreAdapter(store Store) *exportStoreAdapter {
	return &exportStoreAdapter{results: newResultStoreAdapter(store)}
}

var _ services.ExportStore = (*exportStoreAdapter)(nil)

func (a *exportStoreAdapter) ListResultsByOwner(ownerID string) ([]*services.DiagnosticResult, error) {
	return a.results.ListResultsByOwner(ownerID)
}
