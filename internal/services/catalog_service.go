package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorForbidden    ErrorCode = "forbidden"
	ErrorNotFound     ErrorCode = "not_found"
	ErrorConflict     ErrorCode = "conflict"
	ErrorUnauthorized ErrorCode = "unauthorized"
	ErrorBadGateway   ErrorCode = "bad_gateway"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error   { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewForbiddenError(msg string) error { return &ServiceError{Code: ErrorForbidden, Message: msg} }
func NewNotFoundError(msg string) error  { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error  { return &ServiceError{Code: ErrorConflict, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func NewBadGatewayError(msg string) error { return &ServiceError{Code: ErrorBadGateway, Message: msg} }

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// CatalogStore abstracts persistence for the pillar/question catalog.
// ListPillars returns pillars ordered ascending with their questions embedded
// in question order.
type CatalogStore interface {
	ListPillars() ([]*Pillar, error)
	GetPillar(id string) (*Pillar, error)
	InsertPillar(p *Pillar) (*Pillar, error)
	UpdatePillar(p *Pillar) error
	DeletePillar(id string) error
	GetQuestion(id string) (*Question, error)
	InsertQuestion(q *Question) (*Question, error)
	UpdateQuestion(q *Question) error
	DeleteQuestion(id string) error
	AddAudit(entry AuditEntry)
}

// CatalogService owns the authoritative question catalog: what pillars exist,
// which questions they carry and in what order. Scoring consumers take the
// snapshot returned by ListPillars; they never hold a mutable reference.
type CatalogService struct {
	store CatalogStore
	now   func() time.Time
	idGen func() string
}

func NewCatalogService(store CatalogStore) *CatalogService {
	return &CatalogService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: func() string { return shortID(8) },
	}
}

func (s *CatalogService) ListPillars() ([]*Pillar, error) {
	return s.store.ListPillars()
}

func (s *CatalogService) CreatePillar(name, actor string) (*Pillar, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewInvalidError("name required")
	}
	order, err := s.nextPillarOrder()
	if err != nil {
		return nil, err
	}
	p := &Pillar{ID: s.idGen(), Name: name, Order: order}
	created, err := s.store.InsertPillar(p)
	if err != nil {
		return nil, err
	}
	if created == nil {
		created = p
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "create_pillar", Target: created.ID, Note: name})
	return created, nil
}

func (s *CatalogService) RenamePillar(id, name, actor string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return NewInvalidError("name required")
	}
	p, err := s.store.GetPillar(id)
	if err != nil {
		return err
	}
	if p == nil {
		return NewNotFoundError("pillar not found")
	}
	updated := *p
	updated.Name = name
	if err := s.store.UpdatePillar(&updated); err != nil {
		return err
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "rename_pillar", Target: id, Note: name})
	return nil
}

// DeletePillar removes the pillar and cascades to its questions; the cascade
// itself is a store guarantee.
func (s *CatalogService) DeletePillar(id, actor string) error {
	if err := s.store.DeletePillar(id); err != nil {
		return err
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "delete_pillar", Target: id})
	return nil
}

func (s *CatalogService) AddQuestion(pillarID, text string, points float64, positiveAnswer, answerType, actor string) (*Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewInvalidError("text required")
	}
	if points < 0 {
		return nil, NewInvalidError("points must be >= 0")
	}
	if positiveAnswer == "" {
		positiveAnswer = AnswerYes
	}
	if positiveAnswer != AnswerYes && positiveAnswer != AnswerNo {
		return nil, NewInvalidError("positive_answer must be YES or NO")
	}
	if answerType == "" {
		answerType = AnswerTypeBinary
	}
	if answerType != AnswerTypeBinary && answerType != AnswerTypeTernary {
		return nil, NewInvalidError("answer_type must be BINARY or TERNARY")
	}
	p, err := s.store.GetPillar(pillarID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, NewNotFoundError("pillar not found")
	}
	order := 0
	for _, q := range p.Questions {
		if q.Order > order {
			order = q.Order
		}
	}
	q := &Question{
		ID:             s.idGen(),
		PillarID:       pillarID,
		Text:           text,
		Points:         points,
		PositiveAnswer: positiveAnswer,
		AnswerType:     answerType,
		Order:          order + 1,
	}
	created, err := s.store.InsertQuestion(q)
	if err != nil {
		return nil, err
	}
	if created == nil {
		created = q
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "add_question", Target: created.ID, Note: pillarID})
	return created, nil
}

// UpdateQuestion applies a partial update; only keys present in raw change.
func (s *CatalogService) UpdateQuestion(id string, raw map[string]any, actor string) error {
	q, err := s.store.GetQuestion(id)
	if err != nil {
		return err
	}
	if q == nil {
		return NewNotFoundError("question not found")
	}
	updated := *q
	if v, ok := raw["text"].(string); ok {
		if strings.TrimSpace(v) == "" {
			return NewInvalidError("text required")
		}
		updated.Text = strings.TrimSpace(v)
	}
	if v, ok := raw["points"].(float64); ok {
		if v < 0 {
			return NewInvalidError("points must be >= 0")
		}
		updated.Points = v
	}
	if v, ok := raw["positive_answer"].(string); ok {
		if v != AnswerYes && v != AnswerNo {
			return NewInvalidError("positive_answer must be YES or NO")
		}
		updated.PositiveAnswer = v
	}
	if v, ok := raw["answer_type"].(string); ok {
		if v != AnswerTypeBinary && v != AnswerTypeTernary {
			return NewInvalidError("answer_type must be BINARY or TERNARY")
		}
		updated.AnswerType = v
	}
	if err := s.store.UpdateQuestion(&updated); err != nil {
		return err
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "update_question", Target: id})
	return nil
}

func (s *CatalogService) DeleteQuestion(id, actor string) error {
	if err := s.store.DeleteQuestion(id); err != nil {
		return err
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "delete_question", Target: id})
	return nil
}

func (s *CatalogService) nextPillarOrder() (int, error) {
	pillars, err := s.store.ListPillars()
	if err != nil {
		return 0, err
	}
	max := 0
	for _, p := range pillars {
		if p.Order > max {
			max = p.Order
		}
	}
	return max + 1, nil
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
