package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/andremonteiro/diagnostico/internal/api"
)

// SQLiteStore implements api.Store on top of SQLite. Write methods log
// failures instead of returning them; the interface is the same one the
// memory store implements.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	return NewSQLiteStore(db)
}

var _ api.Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) logErr(prefix string, err error) {
	if err != nil {
		log.Printf("sqlite store: %s: %v", prefix, err)
	}
}

func toNullString(v string) sql.NullString {
	if strings.TrimSpace(v) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func encodeJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeInto(ns sql.NullString, out any) {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return
	}
	if err := json.Unmarshal([]byte(ns.String), out); err != nil {
		log.Printf("sqlite store: decode json column: %v", err)
	}
}

func parseTime(v string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t
	}
	return time.Time{}
}

func (s *SQLiteStore) AddPillar(p *api.Pillar) {
	_, err := s.db.Exec(`INSERT INTO pillars (id, name, ord) VALUES (?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET name = excluded.name, ord = excluded.ord`,
		p.ID, p.Name, p.Order)
	s.logErr("AddPillar", err)
}

func (s *SQLiteStore) UpdatePillar(p *api.Pillar) bool {
	res, err := s.db.Exec(`UPDATE pillars SET name = ?, ord = ? WHERE id = ?`, p.Name, p.Order, p.ID)
	if err != nil {
		s.logErr("UpdatePillar", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) DeletePillar(id string) bool {
	res, err := s.db.Exec(`DELETE FROM pillars WHERE id = ?`, id)
	if err != nil {
		s.logErr("DeletePillar", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) GetPillar(id string) *api.Pillar {
	row := s.db.QueryRow(`SELECT id, name, ord FROM pillars WHERE id = ?`, id)
	var p api.Pillar
	if err := row.Scan(&p.ID, &p.Name, &p.Order); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logErr("GetPillar", err)
		}
		return nil
	}
	return &p
}

func (s *SQLiteStore) ListPillars() ([]*api.Pillar, error) {
	rows, err := s.db.Query(`SELECT id, name, ord FROM pillars ORDER BY ord, id`)
	if err != nil {
		s.logErr("ListPillars: query", err)
		return nil, fmt.Errorf("list pillars: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logErr("ListPillars: rows.Close", cerr)
		}
	}()
	var out []*api.Pillar
	for rows.Next() {
		var p api.Pillar
		if err := rows.Scan(&p.ID, &p.Name, &p.Order); err != nil {
			s.logErr("ListPillars: scan", err)
			return nil, fmt.Errorf("scan pillar: %w", err)
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		s.logErr("ListPillars: rows.Err", err)
		return nil, fmt.Errorf("list pillars: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) AddQuestion(q *api.Question) {
	_, err := s.db.Exec(`INSERT INTO questions (id, pillar_id, text, points, positive_answer, answer_type, ord)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET pillar_id = excluded.pillar_id, text = excluded.text,
            points = excluded.points, positive_answer = excluded.positive_answer,
            answer_type = excluded.answer_type, ord = excluded.ord`,
		q.ID, q.PillarID, q.Text, q.Points, q.PositiveAnswer, q.AnswerType, q.Order)
	s.logErr("AddQuestion", err)
}

func (s *SQLiteStore) UpdateQuestion(q *api.Question) bool {
	res, err := s.db.Exec(`UPDATE questions SET text = ?, points = ?, positive_answer = ?, answer_type = ?, ord = ? WHERE id = ?`,
		q.Text, q.Points, q.PositiveAnswer, q.AnswerType, q.Order, q.ID)
	if err != nil {
		s.logErr("UpdateQuestion", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) DeleteQuestion(id string) bool {
	res, err := s.db.Exec(`DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		s.logErr("DeleteQuestion", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) GetQuestion(id string) *api.Question {
	row := s.db.QueryRow(`SELECT id, pillar_id, text, points, positive_answer, answer_type, ord FROM questions WHERE id = ?`, id)
	var q api.Question
	if err := row.Scan(&q.ID, &q.PillarID, &q.Text, &q.Points, &q.PositiveAnswer, &q.AnswerType, &q.Order); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logErr("GetQuestion", err)
		}
		return nil
	}
	return &q
}

func (s *SQLiteStore) ListQuestions(pillarID string) ([]*api.Question, error) {
	rows, err := s.db.Query(`SELECT id, pillar_id, text, points, positive_answer, answer_type, ord
        FROM questions WHERE pillar_id = ? ORDER BY ord, id`, pillarID)
	if err != nil {
		s.logErr("ListQuestions: query", err)
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logErr("ListQuestions: rows.Close", cerr)
		}
	}()
	var out []*api.Question
	for rows.Next() {
		var q api.Question
		if err := rows.Scan(&q.ID, &q.PillarID, &q.Text, &q.Points, &q.PositiveAnswer, &q.AnswerType, &q.Order); err != nil {
			s.logErr("ListQuestions: scan", err)
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, &q)
	}
	if err := rows.Err(); err != nil {
		s.logErr("ListQuestions: rows.Err", err)
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) AddResult(r *api.DiagnosticResult) error {
	company, err := encodeJSON(r.CompanyData)
	if err != nil {
		s.logErr("AddResult encode company", err)
		return fmt.Errorf("encode company data: %w", err)
	}
	answers, err := encodeJSON(r.Answers)
	if err != nil {
		s.logErr("AddResult encode answers", err)
		return fmt.Errorf("encode answers: %w", err)
	}
	scores, err := encodeJSON(r.PillarScores)
	if err != nil {
		s.logErr("AddResult encode scores", err)
		return fmt.Errorf("encode pillar scores: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO diagnostic_results
        (id, user_id, date, company_data, answers, pillar_scores, total_score, max_possible_score, percentage_score)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Date.UTC().Format(time.RFC3339Nano), company, answers, scores,
		r.TotalScore, r.MaxPossibleScore, r.PercentageScore)
	if err != nil {
		s.logErr("AddResult insert", err)
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListResultsByOwner(ownerID string) ([]*api.DiagnosticResult, error) {
	rows, err := s.db.Query(`SELECT id, user_id, date, company_data, answers, pillar_scores,
        total_score, max_possible_score, percentage_score
        FROM diagnostic_results WHERE user_id = ? ORDER BY date DESC, id`, ownerID)
	if err != nil {
		s.logErr("ListResultsByOwner: query", err)
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logErr("ListResultsByOwner: rows.Close", cerr)
		}
	}()
	var out []*api.DiagnosticResult
	for rows.Next() {
		var r api.DiagnosticResult
		var date string
		var company, answers, scores sql.NullString
		if err := rows.Scan(&r.ID, &r.UserID, &date, &company, &answers, &scores,
			&r.TotalScore, &r.MaxPossibleScore, &r.PercentageScore); err != nil {
			s.logErr("ListResultsByOwner: scan", err)
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Date = parseTime(date)
		decodeInto(company, &r.CompanyData)
		decodeInto(answers, &r.Answers)
		decodeInto(scores, &r.PillarScores)
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		s.logErr("ListResultsByOwner: rows.Err", err)
		return nil, fmt.Errorf("list results: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) AddUser(u *api.User) {
	_, err := s.db.Exec(`INSERT INTO users (id, email, pass_hash, role, created_at) VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(email) DO NOTHING`,
		u.ID, strings.ToLower(u.Email), u.PassHash, u.Role, u.CreatedAt.UTC().Format(time.RFC3339Nano))
	s.logErr("AddUser", err)
}

func (s *SQLiteStore) FindUserByEmail(email string) *api.User {
	row := s.db.QueryRow(`SELECT id, email, pass_hash, role, created_at FROM users WHERE email = ?`, strings.ToLower(email))
	var u api.User
	var created string
	if err := row.Scan(&u.ID, &u.Email, &u.PassHash, &u.Role, &created); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logErr("FindUserByEmail", err)
		}
		return nil
	}
	u.CreatedAt = parseTime(created)
	return &u
}

func (s *SQLiteStore) CountUsers() int {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		s.logErr("CountUsers", err)
		return 0
	}
	return n
}

func (s *SQLiteStore) GetSettings() *api.Settings {
	row := s.db.QueryRow(`SELECT logo, navbar_logo, updated_at FROM settings WHERE id = 1`)
	var logo, navbar, updated sql.NullString
	if err := row.Scan(&logo, &navbar, &updated); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logErr("GetSettings", err)
		}
		return nil
	}
	v := &api.Settings{Logo: logo.String, NavbarLogo: navbar.String}
	if updated.Valid {
		v.UpdatedAt = parseTime(updated.String)
	}
	return v
}

func (s *SQLiteStore) UpsertSettings(v *api.Settings) {
	_, err := s.db.Exec(`INSERT INTO settings (id, logo, navbar_logo, updated_at) VALUES (1, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET logo = excluded.logo, navbar_logo = excluded.navbar_logo, updated_at = excluded.updated_at`,
		toNullString(v.Logo), toNullString(v.NavbarLogo), v.UpdatedAt.UTC().Format(time.RFC3339Nano))
	s.logErr("UpsertSettings", err)
}

func (s *SQLiteStore) AddAudit(e api.AuditEntry) {
	_, err := s.db.Exec(`INSERT INTO audit_log (at, actor, action, target, note) VALUES (?, ?, ?, ?, ?)`,
		e.Time.UTC().Format(time.RFC3339Nano), toNullString(e.Actor), e.Action, toNullString(e.Target), toNullString(e.Note))
	s.logErr("AddAudit", err)
}

func (s *SQLiteStore) ListAudit() []api.AuditEntry {
	rows, err := s.db.Query(`SELECT at, actor, action, target, note FROM audit_log ORDER BY seq`)
	if err != nil {
		s.logErr("ListAudit: query", err)
		return nil
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logErr("ListAudit: rows.Close", cerr)
		}
	}()
	var out []api.AuditEntry
	for rows.Next() {
		var e api.AuditEntry
		var at string
		var actor, target, note sql.NullString
		if err := rows.Scan(&at, &actor, &e.Action, &target, &note); err != nil {
			s.logErr("ListAudit: scan", err)
			continue
		}
		e.Time = parseTime(at)
		e.Actor = actor.String
		e.Target = target.String
		e.Note = note.String
		out = append(out, e)
	}
	s.logErr("ListAudit: rows.Err", rows.Err())
	return out
}
