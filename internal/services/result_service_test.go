package services

import (
	"sort"
	"testing"
	"time"
)

type stubResultStore struct {
	pillars []*Pillar
	results []*DiagnosticResult
	failing bool
}

func (s *stubResultStore) ListPillars() ([]*Pillar, error) {
	if s.failing {
		return nil, NewBadGatewayError("store unavailable")
	}
	return s.pillars, nil
}

func (s *stubResultStore) InsertResult(r *DiagnosticResult) (*DiagnosticResult, error) {
	if s.failing {
		return nil, NewBadGatewayError("store unavailable")
	}
	cp := *r
	s.results = append(s.results, &cp)
	return &cp, nil
}

func (s *stubResultStore) ListResultsByOwner(ownerID string) ([]*DiagnosticResult, error) {
	if s.failing {
		return nil, NewBadGatewayError("store unavailable")
	}
	out := []*DiagnosticResult{}
	for _, r := range s.results {
		if r.UserID == ownerID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func testPillars() []*Pillar {
	return []*Pillar{
		{ID: "p1", Name: "Financeiro", Order: 1, Questions: []*Question{
			{ID: "q1", PillarID: "p1", Points: 10, PositiveAnswer: AnswerYes, AnswerType: AnswerTypeBinary},
			{ID: "q2", PillarID: "p1", Points: 20, PositiveAnswer: AnswerYes, AnswerType: AnswerTypeBinary},
		}},
		{ID: "p2", Name: "Processos", Order: 2, Questions: []*Question{
			{ID: "q3", PillarID: "p2", Points: 40, PositiveAnswer: AnswerYes, AnswerType: AnswerTypeTernary},
		}},
	}
}

func TestSaveComputesAndPersists(t *testing.T) {
	store := &stubResultStore{pillars: testPillars()}
	svc := NewResultService(store)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	svc.idGenerator = func() string { return "RES123456789" }

	answers := map[string]string{"q1": AnswerYes, "q2": AnswerNo, "q3": AnswerPartial}
	company := CompanyData{Name: "Ana", Company: "Padaria Pão Quente", TaxID: "12.345.678/0001-00", EmployeeCount: 4, Revenue: 250000}

	res, err := svc.Save("owner1", company, answers)
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if res.ID != "RES123456789" || res.UserID != "owner1" {
		t.Fatalf("identity = (%s,%s), want (RES123456789,owner1)", res.ID, res.UserID)
	}
	if !res.Date.Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("date = %v, want fixed clock value", res.Date)
	}
	if res.TotalScore != 30 || res.MaxPossibleScore != 70 {
		t.Fatalf("aggregate = (%v,%v), want (30,70)", res.TotalScore, res.MaxPossibleScore)
	}
	if len(res.PillarScores) != 2 || res.PillarScores[0].PillarName != "Financeiro" {
		t.Fatalf("pillar snapshot wrong: %+v", res.PillarScores)
	}
	if res.CompanyData != company {
		t.Fatalf("company data not embedded verbatim: %+v", res.CompanyData)
	}
	if len(store.results) != 1 {
		t.Fatalf("results stored = %d, want 1", len(store.results))
	}

	// Mutating the caller's map must not touch the stored record.
	answers["q1"] = AnswerNo
	if store.results[0].Answers["q1"] != AnswerYes {
		t.Fatalf("stored answers alias caller map")
	}
}

func TestSaveValidation(t *testing.T) {
	store := &stubResultStore{pillars: testPillars()}
	svc := NewResultService(store)

	if _, err := svc.Save("", CompanyData{}, nil); err == nil {
		t.Fatalf("expected error for missing owner")
	}
	if _, err := svc.Save("owner1", CompanyData{EmployeeCount: -1}, nil); err == nil {
		t.Fatalf("expected error for negative employee count")
	}
	if _, err := svc.Save("owner1", CompanyData{Revenue: -1}, nil); err == nil {
		t.Fatalf("expected error for negative revenue")
	}
}

func TestSaveStoreFailure(t *testing.T) {
	svc := NewResultService(&stubResultStore{failing: true})
	_, err := svc.Save("owner1", CompanyData{}, nil)
	if err == nil {
		t.Fatalf("expected persistence error")
	}
	if se, ok := AsServiceError(err); !ok || se.Code != ErrorBadGateway {
		t.Fatalf("expected bad_gateway, got %v", err)
	}
}

func TestListByOwnerAndLatest(t *testing.T) {
	store := &stubResultStore{pillars: testPillars()}
	svc := NewResultService(store)
	n := 0
	svc.idGenerator = func() string { n++; return "R" + string(rune('0'+n)) }
	clock := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { clock = clock.Add(time.Minute); return clock }

	for i := 0; i < 3; i++ {
		if _, err := svc.Save("owner1", CompanyData{}, map[string]string{"q1": AnswerYes}); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
	}
	if _, err := svc.Save("owner2", CompanyData{}, nil); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	results, err := svc.ListByOwner("owner1")
	if err != nil {
		t.Fatalf("ListByOwner returned error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Date.After(results[i-1].Date) {
			t.Fatalf("results not newest-first: %v before %v", results[i-1].Date, results[i].Date)
		}
	}

	latest, err := svc.Latest("owner1")
	if err != nil {
		t.Fatalf("Latest returned error: %v", err)
	}
	if latest.ID != "R3" {
		t.Fatalf("latest = %s, want R3", latest.ID)
	}

	none, err := svc.Latest("owner3")
	if err != nil {
		t.Fatalf("Latest returned error: %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil latest for unknown owner, got %+v", none)
	}
}
