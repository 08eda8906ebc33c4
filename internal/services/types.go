package services

import "time"

// Answer values accepted by the scoring engine.
const (
	AnswerYes     = "YES"
	AnswerNo      = "NO"
	AnswerPartial = "PARTIAL"
)

// Question answer arities. BINARY accepts YES/NO; TERNARY additionally
// accepts PARTIAL.
const (
	AnswerTypeBinary  = "BINARY"
	AnswerTypeTernary = "TERNARY"
)

// User roles. Admins own the catalog and branding; regular users submit
// diagnostics.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Question struct {
	ID             string  `json:"id"`
	PillarID       string  `json:"pillar_id"`
	Text           string  `json:"text"`
	Points         float64 `json:"points"`
	PositiveAnswer string  `json:"positive_answer"`
	AnswerType     string  `json:"answer_type"`
	Order          int     `json:"order,omitempty"`
}

type Pillar struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Order     int         `json:"order,omitempty"`
	Questions []*Question `json:"questions"`
}

// CompanyData is the respondent profile captured on the first step of the
// diagnostic and embedded verbatim into each result.
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

// PillarScore snapshots one pillar's outcome at computation time. The pillar
// id and name are copied so later catalog edits never change stored results.
type PillarScore struct {
	PillarID         string  `json:"pillar_id"`
	PillarName       string  `json:"pillar_name"`
	Score            float64 `json:"score"`
	MaxPossibleScore float64 `json:"max_possible_score"`
	PercentageScore  float64 `json:"percentage_score"`
}

// DiagnosticResult is immutable once saved.
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

// Settings holds the branding assets shown across the app.
type Settings struct {
	Logo       string    `json:"logo,omitempty"`
	NavbarLogo string    `json:"navbar_logo,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

type User struct {
	ID        string
	Email     string
	PassHash  []byte
	Role      string
	CreatedAt time.Time
}

type AuditEntry struct {
	Time   time.Time
	Actor  string
	Action string
	Target string
	Note   string
}
