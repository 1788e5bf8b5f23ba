package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
)

// Store persists everything the onboarding workflow writes.
type Store struct {
	DB *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// sqlite serialises writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	queries := []string{
		`CREATE TABLE IF NOT EXISTS task_templates (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			category TEXT,
			phase TEXT,
			priority TEXT DEFAULT 'medium',
			sort_order INTEGER DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS businesses (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			category TEXT,
			state_code TEXT,
			stage TEXT,
			created_at TEXT,
			updated_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			business_id TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			template_id TEXT,
			title TEXT NOT NULL,
			description TEXT,
			category TEXT,
			priority TEXT,
			status TEXT DEFAULT 'pending',
			created_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS business_plans (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL UNIQUE,
			business_id TEXT,
			onboarding_session_id TEXT,
			plan_summary TEXT,
			recommended_entity_type TEXT,
			recommended_state TEXT,
			executive_summary TEXT,
			phase_recommendations TEXT,
			confidence_score INTEGER,
			ideation_score INTEGER,
			legal_score INTEGER,
			financial_score INTEGER,
			launch_prep_score INTEGER,
			created_at TEXT,
			updated_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT,
			role TEXT,
			content TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, q := range queries {
		if _, err = db.Exec(q); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// ListTemplates returns templates ordered by sort order, optionally
// restricted to one category.
func (s *Store) ListTemplates(ctx context.Context, category string) ([]Template, error) {
	query := `SELECT id, title, COALESCE(description, ''), COALESCE(category, ''), COALESCE(phase, ''),
		COALESCE(priority, ''), sort_order FROM task_templates`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY sort_order, title`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Category, &t.Phase, &t.Priority, &t.SortOrder); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// UpsertTemplates inserts or replaces templates by id.
func (s *Store) UpsertTemplates(ctx context.Context, templates []Template) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range templates {
		if t.ID == "" || t.Title == "" {
			return fmt.Errorf("template requires id and title: %+v", t)
		}
		priority := t.Priority
		if priority == "" {
			priority = "medium"
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO task_templates (id, title, description, category, phase, priority, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET title = excluded.title, description = excluded.description,
				category = excluded.category, phase = excluded.phase, priority = excluded.priority,
				sort_order = excluded.sort_order`,
			t.ID, t.Title, t.Description, t.Category, t.Phase, priority, t.SortOrder)
		if err != nil {
			return fmt.Errorf("upsert template %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

// UpsertBusiness updates the owner's business if one exists, otherwise inserts it.
func (s *Store) UpsertBusiness(ctx context.Context, b Business) (Business, error) {
	if b.OwnerID == "" || b.Name == "" {
		return Business{}, errors.New("business requires owner and name")
	}

	var existingID, createdAt string
	err := s.DB.QueryRowContext(ctx, `SELECT id, COALESCE(created_at, '') FROM businesses WHERE owner_id = ?`, b.OwnerID).
		Scan(&existingID, &createdAt)
	ts := now()

	switch {
	case errors.Is(err, sql.ErrNoRows):
		b.ID = uuid.NewString()
		b.CreatedAt, b.UpdatedAt = ts, ts
		_, err = s.DB.ExecContext(ctx, `INSERT INTO businesses (id, owner_id, name, category, state_code, stage, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, b.OwnerID, b.Name, b.Category, b.StateCode, b.Stage, b.CreatedAt, b.UpdatedAt)
	case err == nil:
		b.ID, b.CreatedAt, b.UpdatedAt = existingID, createdAt, ts
		_, err = s.DB.ExecContext(ctx, `UPDATE businesses SET name = ?, category = ?, state_code = ?, stage = ?, updated_at = ?
			WHERE id = ?`,
			b.Name, b.Category, b.StateCode, b.Stage, b.UpdatedAt, b.ID)
	}
	if err != nil {
		return Business{}, err
	}
	return b, nil
}

// CreateTasks instantiates one task per known template id, in request order.
// Unknown template ids are skipped.
func (s *Store) CreateTasks(ctx context.Context, ownerID, businessID string, templateIDs []string) ([]Task, error) {
	if len(templateIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(templateIDs)), ",")
	args := make([]any, len(templateIDs))
	for i, id := range templateIDs {
		args[i] = id
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT id, title, COALESCE(description, ''), COALESCE(category, ''),
		COALESCE(priority, '') FROM task_templates WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Template, len(templateIDs))
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Category, &t.Priority); err != nil {
			rows.Close()
			return nil, err
		}
		byID[t.ID] = t
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ts := now()
	seen := make(map[string]bool, len(templateIDs))
	var tasks []Task
	for _, id := range templateIDs {
		t, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true

		task := Task{
			ID:          uuid.NewString(),
			BusinessID:  businessID,
			OwnerID:     ownerID,
			TemplateID:  t.ID,
			Title:       t.Title,
			Description: t.Description,
			Category:    t.Category,
			Priority:    t.Priority,
			Status:      "pending",
			CreatedAt:   ts,
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO tasks (id, business_id, owner_id, template_id, title, description, category, priority, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			task.ID, task.BusinessID, task.OwnerID, task.TemplateID, task.Title, task.Description,
			task.Category, task.Priority, task.Status, task.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert task for template %s: %w", id, err)
		}
		tasks = append(tasks, task)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListTasks returns a business's tasks in creation order.
func (s *Store) ListTasks(ctx context.Context, businessID string) ([]Task, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id, business_id, owner_id, COALESCE(template_id, ''), title,
		COALESCE(description, ''), COALESCE(category, ''), COALESCE(priority, ''), status, COALESCE(created_at, '')
		FROM tasks WHERE business_id = ? ORDER BY rowid`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.BusinessID, &t.OwnerID, &t.TemplateID, &t.Title, &t.Description,
			&t.Category, &t.Priority, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpsertBusinessPlan updates the owner's plan if one exists, otherwise inserts it.
func (s *Store) UpsertBusinessPlan(ctx context.Context, p BusinessPlan) (BusinessPlan, error) {
	if p.OwnerID == "" {
		return BusinessPlan{}, errors.New("business plan requires owner")
	}

	var existingID, createdAt string
	err := s.DB.QueryRowContext(ctx, `SELECT id, COALESCE(created_at, '') FROM business_plans WHERE owner_id = ?`, p.OwnerID).
		Scan(&existingID, &createdAt)
	ts := now()

	exec := rawOrNull(p.ExecutiveSummary)
	phases := rawOrNull(p.PhaseRecommendations)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		p.ID = uuid.NewString()
		p.CreatedAt, p.UpdatedAt = ts, ts
		_, err = s.DB.ExecContext(ctx, `INSERT INTO business_plans (id, owner_id, business_id, onboarding_session_id,
			plan_summary, recommended_entity_type, recommended_state, executive_summary, phase_recommendations,
			confidence_score, ideation_score, legal_score, financial_score, launch_prep_score, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.OwnerID, nullString(p.BusinessID), nullString(p.OnboardingSessionID),
			p.PlanSummary, p.RecommendedEntityType, p.RecommendedState, exec, phases,
			p.ConfidenceScore, p.IdeationScore, p.LegalScore, p.FinancialScore, p.LaunchPrepScore,
			p.CreatedAt, p.UpdatedAt)
	case err == nil:
		p.ID, p.CreatedAt, p.UpdatedAt = existingID, createdAt, ts
		_, err = s.DB.ExecContext(ctx, `UPDATE business_plans SET business_id = ?, onboarding_session_id = ?,
			plan_summary = ?, recommended_entity_type = ?, recommended_state = ?, executive_summary = ?,
			phase_recommendations = ?, confidence_score = ?, ideation_score = ?, legal_score = ?,
			financial_score = ?, launch_prep_score = ?, updated_at = ? WHERE id = ?`,
			nullString(p.BusinessID), nullString(p.OnboardingSessionID),
			p.PlanSummary, p.RecommendedEntityType, p.RecommendedState, exec, phases,
			p.ConfidenceScore, p.IdeationScore, p.LegalScore, p.FinancialScore, p.LaunchPrepScore,
			p.UpdatedAt, p.ID)
	}
	if err != nil {
		return BusinessPlan{}, err
	}
	return p, nil
}

// GetBusinessPlan returns the owner's plan, or sql.ErrNoRows.
func (s *Store) GetBusinessPlan(ctx context.Context, ownerID string) (BusinessPlan, error) {
	var p BusinessPlan
	var businessID, sessionID sql.NullString
	var exec, phases sql.NullString
	err := s.DB.QueryRowContext(ctx, `SELECT id, owner_id, business_id, onboarding_session_id, plan_summary,
		recommended_entity_type, recommended_state, executive_summary, phase_recommendations,
		confidence_score, ideation_score, legal_score, financial_score, launch_prep_score, created_at, updated_at
		FROM business_plans WHERE owner_id = ?`, ownerID).Scan(
		&p.ID, &p.OwnerID, &businessID, &sessionID, &p.PlanSummary,
		&p.RecommendedEntityType, &p.RecommendedState, &exec, &phases,
		&p.ConfidenceScore, &p.IdeationScore, &p.LegalScore, &p.FinancialScore, &p.LaunchPrepScore,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return BusinessPlan{}, err
	}
	p.BusinessID = businessID.String
	p.OnboardingSessionID = sessionID.String
	if exec.Valid {
		p.ExecutiveSummary = json.RawMessage(exec.String)
	}
	if phases.Valid {
		p.PhaseRecommendations = json.RawMessage(phases.String)
	}
	return p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func rawOrNull(raw json.RawMessage) sql.NullString {
	return sql.NullString{String: string(raw), Valid: len(raw) > 0}
}
