package api

// Store is the persistence contract shared by the memory and SQLite stores.
// Catalog-read and result-path methods return errors because a dropped write
// or an unreadable catalog must surface to the caller; catalog mutations
// report existence via bool like the rest of the CRUD surface.
type Store interface {
	AddPillar(p *Pillar)
	UpdatePillar(p *Pillar) bool
	DeletePillar(id string) bool
	GetPillar(id string) *Pillar
	ListPillars() ([]*Pillar, error)

	AddQuestion(q *Question)
	UpdateQuestion(q *Question) bool
	DeleteQuestion(id string) bool
	GetQuestion(id string) *Question
	ListQuestions(pillarID string) ([]*Question, error)

	AddResult(r *DiagnosticResult) error
	ListResultsByOwner(ownerID string) ([]*DiagnosticResult, error)

	AddUser(u *User)
	FindUserByEmail(email string) *User
	CountUsers() int

	GetSettings() *Settings
	UpsertSettings(s *Settings)

	AddAudit(e AuditEntry)
	ListAudit() []AuditEntry
}

var _ Store = (*memoryStore)(nil)
