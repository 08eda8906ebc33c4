package api

import "github.com/andremonteiro/diagnostico/internal/services"

// catalogStoreAdapter exposes the api Store to the catalog service. The api
// store keeps pillars and questions in separate collections; the adapter
// composes them into the embedded form the service expects.
type catalogStoreAdapter struct {
	store Store
}

func newCatalogStoreAdapter(store Store) *catalogStoreAdapter {
	return &catalogStoreAdapter{store: store}
}

var _ services.CatalogStore = (*catalogStoreAdapter)(nil)

func toServicePillar(p *Pillar, questions []*Question) *services.Pillar {
	out := &services.Pillar{ID: p.ID, Name: p.Name, Order: p.Order}
	for _, q := range questions {
		out.Questions = append(out.Questions, toServiceQuestion(q))
	}
	return out
}

func toServiceQuestion(q *Question) *services.Question {
	return &services.Question{
		ID:             q.ID,
		PillarID:       q.PillarID,
		Text:           q.Text,
		Points:         q.Points,
		PositiveAnswer: q.PositiveAnswer,
		AnswerType:     q.AnswerType,
		Order:          q.Order,
	}
}

func fromServiceQuestion(q *services.Question) *Question {
	return &Question{
		ID:             q.ID,
		PillarID:       q.PillarID,
		Text:           q.Text,
		Points:         q.Points,
		PositiveAnswer: q.PositiveAnswer,
		AnswerType:     q.AnswerType,
		Order:          q.Order,
	}
}

func (a *catalogStoreAdapter) ListPillars() ([]*services.Pillar, error) {
	pillars, err := a.store.ListPillars()
	if err != nil {
		return nil, services.NewBadGatewayError("catalog unavailable")
	}
	out := make([]*services.Pillar, 0, len(pillars))
	for _, p := range pillars {
		questions, err := a.store.ListQuestions(p.ID)
		if err != nil {
			return nil, services.NewBadGatewayError("catalog unavailable")
		}
		out = append(out, toServicePillar(p, questions))
	}
	return out, nil
}

func (a *catalogStoreAdapter) GetPillar(id string) (*services.Pillar, error) {
	p := a.store.GetPillar(id)
	if p == nil {
		return nil, nil
	}
	questions, err := a.store.ListQuestions(p.ID)
	if err != nil {
		return nil, services.NewBadGatewayError("catalog unavailable")
	}
	return toServicePillar(p, questions), nil
}

func (a *catalogStoreAdapter) InsertPillar(p *services.Pillar) (*services.Pillar, error) {
	a.store.AddPillar(&Pillar{ID: p.ID, Name: p.Name, Order: p.Order})
	return p, nil
}

func (a *catalogStoreAdapter) UpdatePillar(p *services.Pillar) error {
	if !a.store.UpdatePillar(&Pillar{ID: p.ID, Name: p.Name, Order: p.Order}) {
		return services.NewNotFoundError("pillar not found")
	}
	return nil
}

func (a *catalogStoreAdapter) DeletePillar(id string) error {
	if !a.store.DeletePillar(id) {
		return services.NewNotFoundError("pillar not found")
	}
	return nil
}

func (a *catalogStoreAdapter) GetQuestion(id string) (*services.Question, error) {
	q := a.store.GetQuestion(id)
	if q == nil {
		return nil, nil
	}
	return toServiceQuestion(q), nil
}

func (a *catalogStoreAdapter) InsertQuestion(q *services.Question) (*services.Question, error) {
	a.store.AddQuestion(fromServiceQuestion(q))
	return q, nil
}

func (a *catalogStoreAdapter) UpdateQuestion(q *services.Question) error {
	if !a.store.UpdateQuestion(fromServiceQuestion(q)) {
		return services.NewNotFoundError("question not found")
	}
	return nil
}

func (a *catalogStoreAdapter) DeleteQuestion(id string) error {
	if !a.store.DeleteQuestion(id) {
		return services.NewNotFoundError("question not found")
	}
	return nil
}

func (a *catalogStoreAdapter) AddAudit(entry services.AuditEntry) {
	a.store.AddAudit(AuditEntry{
		Time:   entry.Time,
		Actor:  entry.Actor,
		Action: entry.Action,
		Target: entry.Target,
		Note:   entry.Note,
	})
}
