package api

import (
	"testing"
	"time"
)

func TestListResultsByOwnerNewestFirst(t *testing.T) {
	st := newMemoryStore()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	// Inserted out of chronological order on purpose.
	for _, r := range []*DiagnosticResult{
		{ID: "mid", UserID: "u1", Date: base.Add(time.Hour)},
		{ID: "old", UserID: "u1", Date: base},
		{ID: "new", UserID: "u1", Date: base.Add(2 * time.Hour)},
		{ID: "other", UserID: "u2", Date: base.Add(3 * time.Hour)},
	} {
		if err := st.AddResult(r); err != nil {
			t.Fatalf("AddResult returned error: %v", err)
		}
	}

	got, err := st.ListResultsByOwner("u1")
	if err != nil {
		t.Fatalf("ListResultsByOwner returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("results = %d, want 3", len(got))
	}
	for i, want := range []string{"new", "mid", "old"} {
		if got[i].ID != want {
			t.Fatalf("results[%d] = %s, want %s", i, got[i].ID, want)
		}
	}
	if none, err := st.ListResultsByOwner("nobody"); err != nil || len(none) != 0 {
		t.Fatalf("unknown owner should have no results (err=%v)", err)
	}
}

func TestDeletePillarCascades(t *testing.T) {
	st := newMemoryStore()
	st.AddPillar(&Pillar{ID: "p1", Name: "Financeiro", Order: 1})
	st.AddQuestion(&Question{ID: "q1", PillarID: "p1", Order: 1})
	st.AddQuestion(&Question{ID: "q2", PillarID: "p1", Order: 2})

	if !st.DeletePillar("p1") {
		t.Fatalf("DeletePillar returned false")
	}
	if st.GetQuestion("q1") != nil || st.GetQuestion("q2") != nil {
		t.Fatalf("questions should be removed with their pillar")
	}
	if st.DeletePillar("p1") {
		t.Fatalf("second delete should report missing pillar")
	}
}

func TestListPillarsOrdered(t *testing.T) {
	st := newMemoryStore()
	st.AddPillar(&Pillar{ID: "b", Name: "Processos", Order: 2})
	st.AddPillar(&Pillar{ID: "a", Name: "Financeiro", Order: 1})
	st.AddPillar(&Pillar{ID: "c", Name: "Pessoas", Order: 2})

	got, err := st.ListPillars()
	if err != nil {
		t.Fatalf("ListPillars returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("pillars = %d, want 3", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Fatalf("unexpected order: %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	st := newMemoryStore()
	st.AddPillar(&Pillar{ID: "p1", Name: "Financeiro", Order: 1})
	st.AddQuestion(&Question{ID: "q1", PillarID: "p1", Text: "Tem reserva de caixa?", Points: 10, PositiveAnswer: "YES", AnswerType: "BINARY", Order: 1})
	st.AddUser(&User{ID: "u1", Email: "dono@padaria.com", Role: "admin"})
	st.UpsertSettings(&Settings{Logo: "logo.png"})

	snap := MemoryStoreSnapshot(st)
	if snap == nil {
		t.Fatalf("snapshot of memory store should not be nil")
	}
	if len(snap.Pillars) != 1 || len(snap.Questions) != 1 || len(snap.Users) != 1 {
		t.Fatalf("snapshot incomplete: %+v", snap)
	}
	if snap.Settings == nil || snap.Settings.Logo != "logo.png" {
		t.Fatalf("snapshot settings wrong: %+v", snap.Settings)
	}
}
