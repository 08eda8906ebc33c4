package api

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type Pillar struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order,omitempty"`
}

type Question struct {
	ID             string  `json:"id"`
	PillarID       string  `json:"pillar_id"`
	Text           string  `json:"text"`
	Points         float64 `json:"points"`
	PositiveAnswer string  `json:"positive_answer"`
	AnswerType     string  `json:"answer_type"`
	Order          int     `json:"order,omitempty"`
}

type CompanyData struct {
	Name          string  `json:"name"`
	Company       string  `json:"company"`
	TaxID         string  `json:"tax_id"`
	HasPartners   bool    `json:"has_partners"`
	EmployeeCount int     `json:"employee_count"`
	Revenue       float64 `json:"revenue"`
	Segment       string  `json:"segment"`
	YearsActive   string  `json:"years_active"`
	Region        string  `json:"region"`
	LegalForm     string  `json:"legal_form"`
}

type PillarScore struct {
	PillarID         string  `json:"pillar_id"`
	PillarName       string  `json:"pillar_name"`
	Score            float64 `json:"score"`
	MaxPossibleScore float64 `json:"max_possible_score"`
	PercentageScore  float64 `json:"percentage_score"`
}

type DiagnosticResult struct {
	ID               string            `json:"id"`
	UserID           string            `json:"user_id"`
	Date             time.Time         `json:"date"`
	CompanyData      CompanyData       `json:"company_data"`
	Answers          map[string]string `json:"answers"`
	PillarScores     []PillarScore     `json:"pillar_scores"`
	TotalScore       float64           `json:"total_score"`
	MaxPossibleScore float64           `json:"max_possible_score"`
	PercentageScore  float64           `json:"percentage_score"`
}

type Settings struct {
	Logo       string    `json:"logo,omitempty"`
	NavbarLogo string    `json:"navbar_logo,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	PassHash  []byte    `json:"pass_hash"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditEntry struct {
	Time   time.Time `json:"time"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target"`
	Note   string    `json:"note,omitempty"`
}

type memoryStore struct {
	mu                sync.RWMutex
	pillars           map[string]*Pillar
	questions         map[string]*Question
	questionsByPillar map[string][]*Question
	results           []*DiagnosticResult
	usersByEmail      map[string]*User
	settings          *Settings
	audit             []AuditEntry
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		pillars:           map[string]*Pillar{},
		questions:         map[string]*Question{},
		questionsByPillar: map[string][]*Question{},
		results:           []*DiagnosticResult{},
		usersByEmail:      map[string]*User{},
		audit:             []AuditEntry{},
	}
}

// NewMemoryStore returns an empty in-memory store, mainly for development and
// tests.
func NewMemoryStore() Store {
	return newMemoryStore()
}

func (s *memoryStore) AddPillar(p *Pillar) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pillars[p.ID] = p
}

func (s *memoryStore) UpdatePillar(p *Pillar) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pillars[p.ID]; !ok {
		return false
	}
	s.pillars[p.ID] = p
	return true
}

func (s *memoryStore) DeletePillar(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pillars[id]; !ok {
		return false
	}
	delete(s.pillars, id)
	for _, q := range s.questionsByPillar[id] {
		delete(s.questions, q.ID)
	}
	delete(s.questionsByPillar, id)
	return true
}

func (s *memoryStore) GetPillar(id string) *Pillar {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pillars[id]
}

func (s *memoryStore) ListPillars() ([]*Pillar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Pillar, 0, len(s.pillars))
	for _, p := range s.pillars {
		out = append(out, p)
	}
	// order ascending, ties by id for stability
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order == out[j].Order {
			return out[i].ID < out[j].ID
		}
		return out[i].Order < out[j].Order
	})
	return out, nil
}

func (s *memoryStore) AddQuestion(q *Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[q.ID] = q
	s.questionsByPillar[q.PillarID] = append(s.questionsByPillar[q.PillarID], q)
	sortQuestions(s.questionsByPillar[q.PillarID])
}

func (s *memoryStore) UpdateQuestion(q *Question) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.questions[q.ID]
	if !ok {
		return false
	}
	s.questions[q.ID] = q
	list := s.questionsByPillar[old.PillarID]
	for i, cur := range list {
		if cur.ID == q.ID {
			list[i] = q
			break
		}
	}
	sortQuestions(list)
	return true
}

func (s *memoryStore) DeleteQuestion(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return false
	}
	delete(s.questions, id)
	list := s.questionsByPillar[q.PillarID]
	nl := make([]*Question, 0, len(list))
	for _, cur := range list {
		if cur.ID != id {
			nl = append(nl, cur)
		}
	}
	s.questionsByPillar[q.PillarID] = nl
	return true
}

func (s *memoryStore) GetQuestion(id string) *Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.questions[id]
}

func (s *memoryStore) ListQuestions(pillarID string) ([]*Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Question(nil), s.questionsByPillar[pillarID]...), nil
}

func (s *memoryStore) AddResult(r *DiagnosticResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
	return nil
}

func (s *memoryStore) ListResultsByOwner(ownerID string) ([]*DiagnosticResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*DiagnosticResult{}
	for _, r := range s.results {
		if r.UserID == ownerID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *memoryStore) AddUser(u *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usersByEmail[strings.ToLower(u.Email)] = u
}

func (s *memoryStore) FindUserByEmail(email string) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usersByEmail[strings.ToLower(email)]
}

func (s *memoryStore) CountUsers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.usersByEmail)
}

func (s *memoryStore) GetSettings() *Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *memoryStore) UpsertSettings(v *Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = v
}

func (s *memoryStore) AddAudit(e AuditEntry) {
	s.mu.Lock()
	s.audit = append(s.audit, e)
	s.mu.Unlock()
}

func (s *memoryStore) ListAudit() []AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AuditEntry, len(s.audit))
	copy(out, s.audit)
	return out
}

func sortQuestions(list []*Question) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Order == list[j].Order {
			return list[i].ID < list[j].ID
		}
		return list[i].Order < list[j].Order
	})
}

// LegacySnapshot is the serialized form of the memory store, kept around for
// the one-time migration of file-backed deployments into SQLite.
type LegacySnapshot struct {
	Pillars   []*Pillar           `json:"pillars"`
	Questions []*Question         `json:"questions"`
	Results   []*DiagnosticResult `json:"results"`
	Users     []*User             `json:"users"`
	Settings  *Settings           `json:"settings,omitempty"`
	Audit     []AuditEntry        `json:"audit,omitempty"`
}

// NewMemoryStoreFromPath loads a snapshot file written by a file-backed
// deployment. Returns os.ErrNotExist (wrapped by os.ReadFile) when the file
// is absent.
func NewMemoryStoreFromPath(path string) (Store, error) {
	if path == "" {
		return nil, os.ErrNotExist
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap LegacySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	st := newMemoryStore()
	for _, p := range snap.Pillars {
		if p != nil {
			st.AddPillar(p)
		}
	}
	for _, q := range snap.Questions {
		if q != nil {
			st.AddQuestion(q)
		}
	}
	for _, r := range snap.Results {
		if r != nil {
			_ = st.AddResult(r)
		}
	}
	for _, u := range snap.Users {
		if u != nil {
			st.AddUser(u)
		}
	}
	if snap.Settings != nil {
		st.UpsertSettings(snap.Settings)
	}
	for _, e := range snap.Audit {
		st.AddAudit(e)
	}
	return st, nil
}

// MemoryStoreSnapshot captures the full contents of a memory store; nil for
// any other store implementation.
func MemoryStoreSnapshot(s Store) *LegacySnapshot {
	ms, ok := s.(*memoryStore)
	if !ok {
		return nil
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	snap := &LegacySnapshot{Settings: ms.settings}
	for _, p := range ms.pillars {
		snap.Pillars = append(snap.Pillars, p)
	}
	for _, q := range ms.questions {
		snap.Questions = append(snap.Questions, q)
	}
	snap.Results = append(snap.Results, ms.results...)
	for _, u := range ms.usersByEmail {
		snap.Users = append(snap.Users, u)
	}
	snap.Audit = append(snap.Audit, ms.audit...)
	return snap
}
