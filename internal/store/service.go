// Package store persists decision cases and evaluation runs in Postgres.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Run lifecycle states.
const (
	StatusQueued    = "QUEUED"
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// Service provides case and run persistence backed by Postgres.
type Service struct {
	db *sql.DB
}

// CaseRow is a stored decision case. Spec holds the full case document
// as JSON; the evaluator re-validates it on load.
type CaseRow struct {
	ID          string
	Name        string
	Description string
	Spec        json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RunRow is one evaluation run of a stored case.
type RunRow struct {
	ID         string
	CaseID     string
	Status     string
	Error      *string
	Results    json.RawMessage // result document, set when completed
	StorageRef *string         // blob reference when results are offloaded
	CreatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// NewService creates a new store Service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// UpsertCase creates a case or replaces the spec of an existing case with
// the same name.
func (s *Service) UpsertCase(ctx context.Context, name, description string, spec json.RawMessage) (*CaseRow, error) {
	c := &CaseRow{}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO cases (name, description, spec)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE
		   SET description = EXCLUDED.description,
		       spec = EXCLUDED.spec,
		       updated_at = now()
		 RETURNING id, name, description, spec, created_at, updated_at`,
		name, description, spec,
	).Scan(&c.ID, &c.Name, &c.Description, &c.Spec, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert case %s: %w", name, err)
	}
	return c, nil
}

// GetCase retrieves a case by ID.
func (s *Service) GetCase(ctx context.Context, id string) (*CaseRow, error) {
	c := &CaseRow{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, spec, created_at, updated_at
		 FROM cases WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.Spec, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get case %s: %w", id, err)
	}
	return c, nil
}

// GetCaseByName retrieves a case by its unique name.
func (s *Service) GetCaseByName(ctx context.Context, name string) (*CaseRow, error) {
	c := &CaseRow{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, spec, created_at, updated_at
		 FROM cases WHERE name = $1`,
		name,
	).Scan(&c.ID, &c.Name, &c.Description, &c.Spec, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get case by name %s: %w", name, err)
	}
	return c, nil
}

// ListCases returns all cases ordered by name. Specs are omitted to keep
// listings light.
func (s *Service) ListCases(ctx context.Context) ([]CaseRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, created_at, updated_at
		 FROM cases ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var cases []CaseRow
	for rows.Next() {
		var c CaseRow
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

// CreateRun queues a new evaluation run for a case.
func (s *Service) CreateRun(ctx context.Context, caseID string) (*RunRow, error) {
	r := &RunRow{}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO runs (case_id, status)
		 VALUES ($1, $2)
		 RETURNING id, case_id, status, error, results, storage_ref, created_at, started_at, finished_at`,
		caseID, StatusQueued,
	).Scan(&r.ID, &r.CaseID, &r.Status, &r.Error, &r.Results, &r.StorageRef, &r.CreatedAt, &r.StartedAt, &r.FinishedAt)
	if err != nil {
		return nil, fmt.Errorf("create run for case %s: %w", caseID, err)
	}
	return r, nil
}

// MarkRunning transitions a run to RUNNING and stamps its start time.
func (s *Service) MarkRunning(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = $2, started_at = now() WHERE id = $1`,
		runID, StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("mark run %s running: %w", runID, err)
	}
	return nil
}

// CompleteRun stores the result document and transitions the run to
// COMPLETED. storageRef may be empty when results are stored inline only.
func (s *Service) CompleteRun(ctx context.Context, runID string, results json.RawMessage, storageRef string) error {
	var ref *string
	if storageRef != "" {
		ref = &storageRef
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = $2, results = $3, storage_ref = $4, finished_at = now()
		 WHERE id = $1`,
		runID, StatusCompleted, results, ref,
	)
	if err != nil {
		return fmt.Errorf("complete run %s: %w", runID, err)
	}
	return nil
}

// FailRun records the failure reason and transitions the run to FAILED.
func (s *Service) FailRun(ctx context.Context, runID, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = $2, error = $3, finished_at = now() WHERE id = $1`,
		runID, StatusFailed, reason,
	)
	if err != nil {
		return fmt.Errorf("fail run %s: %w", runID, err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *Service) GetRun(ctx context.Context, runID string) (*RunRow, error) {
	r := &RunRow{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, case_id, status, error, results, storage_ref, created_at, started_at, finished_at
		 FROM runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.CaseID, &r.Status, &r.Error, &r.Results, &r.StorageRef, &r.CreatedAt, &r.StartedAt, &r.FinishedAt)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}
	return r, nil
}

// ListRunsByCase returns all runs for a case, newest first. Result
// documents are omitted.
func (s *Service) ListRunsByCase(ctx context.Context, caseID string) ([]RunRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, case_id, status, error, storage_ref, created_at, started_at, finished_at
		 FROM runs WHERE case_id = $1 ORDER BY created_at DESC`,
		caseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRow
	for rows.Next() {
		var r RunRow
		if err := rows.Scan(&r.ID, &r.CaseID, &r.Status, &r.Error, &r.StorageRef, &r.CreatedAt, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
