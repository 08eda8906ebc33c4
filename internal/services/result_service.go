package services

import "time"

// ResultStore abstracts persistence for diagnostic results. ListResultsByOwner
// returns results ordered by date descending. InsertResult writes one record
// atomically: the row either lands in full or not at all.
type ResultStore interface {
	ListPillars() ([]*Pillar, error)
	InsertResult(r *DiagnosticResult) (*DiagnosticResult, error)
	ListResultsByOwner(ownerID string) ([]*DiagnosticResult, error)
}

// ResultService runs the finalize step of a diagnostic: take the catalog
// snapshot, score the answers and persist one immutable result. Timestamps
// come from the service clock, not the client, so per-owner ordering follows
// submission order.
type ResultService struct {
	store       ResultStore
	now         func() time.Time
	idGenerator func() string
}

func NewResultService(store ResultStore) *ResultService {
	return &ResultService{
		store:       store,
		now:         func() time.Time { return time.Now().UTC() },
		idGenerator: func() string { return shortID(12) },
	}
}

func (s *ResultService) Save(ownerID string, company CompanyData, answers map[string]string) (*DiagnosticResult, error) {
	if ownerID == "" {
		return nil, NewUnauthorizedError("owner required")
	}
	if company.EmployeeCount < 0 {
		return nil, NewInvalidError("employee_count must be >= 0")
	}
	if company.Revenue < 0 {
		return nil, NewInvalidError("revenue must be >= 0")
	}

	pillars, err := s.store.ListPillars()
	if err != nil {
		return nil, err
	}

	summary := CalculateScore(answers, pillars)

	// Own a copy of the answer map; the caller may reuse theirs for a retry.
	saved := make(map[string]string, len(answers))
	for k, v := range answers {
		saved[k] = v
	}

	result := &DiagnosticResult{
		ID:               s.idGenerator(),
		UserID:           ownerID,
		Date:             s.now(),
		CompanyData:      company,
		Answers:          saved,
		PillarScores:     summary.PillarScores,
		TotalScore:       summary.TotalScore,
		MaxPossibleScore: summary.MaxPossibleScore,
		PercentageScore:  summary.PercentageScore,
	}

	stored, err := s.store.InsertResult(result)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		stored = result
	}
	return stored, nil
}

func (s *ResultService) ListByOwner(ownerID string) ([]*DiagnosticResult, error) {
	if ownerID == "" {
		return nil, NewUnauthorizedError("owner required")
	}
	return s.store.ListResultsByOwner(ownerID)
}

// Latest returns the most recent result for the owner, or nil when none exist.
func (s *ResultService) Latest(ownerID string) (*DiagnosticResult, error) {
	results, err := s.ListByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}
