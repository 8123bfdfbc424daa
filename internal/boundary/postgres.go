// internal/boundary/postgres.go
package boundary

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresStore persists assignments and the adjustment log in Postgres.
// Boundary configurations are stored as JSONB documents; the swap in
// UpdateBoundaries runs under a row lock so the logged Previous value is the
// configuration the transaction actually replaced.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over an existing connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// InitSchema creates the boundary tables when they do not exist yet.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	schema := `
    CREATE TABLE IF NOT EXISTS assignments (
        id TEXT PRIMARY KEY,
        course_id TEXT NOT NULL,
        educator_id TEXT NOT NULL DEFAULT '',
        title TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        due_at TIMESTAMPTZ,
        boundaries JSONB NOT NULL
    );

    CREATE TABLE IF NOT EXISTS boundary_adjustment_log (
        id UUID PRIMARY KEY,
        assignment_id TEXT NOT NULL REFERENCES assignments(id),
        proposal_id TEXT,
        previous JSONB NOT NULL,
        updated JSONB NOT NULL,
        reason TEXT NOT NULL,
        actor TEXT NOT NULL,
        notes TEXT,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        impact JSONB
    );

    CREATE INDEX IF NOT EXISTS idx_adjustment_log_assignment
        ON boundary_adjustment_log(assignment_id, created_at DESC);
    `

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("initializing boundary schema: %w", err)
	}
	return nil
}

// CreateAssignment inserts or replaces an assignment record.
func (s *PostgresStore) CreateAssignment(ctx context.Context, a *Assignment) error {
	cfg := a.Boundaries
	if cfg.QuestionsPerHour == 0 && cfg.ReflectionRequirement == "" {
		cfg = DefaultConfig()
	}
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling boundary config: %w", err)
	}

	var due interface{}
	if !a.DueAt.IsZero() {
		due = a.DueAt
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assignments (id, course_id, educator_id, title, created_at, due_at, boundaries)
         VALUES ($1, $2, $3, $4, $5, $6, $7)
         ON CONFLICT (id) DO UPDATE
         SET course_id = $2, educator_id = $3, title = $4, due_at = $6, boundaries = $7`,
		a.ID, a.CourseID, a.EducatorID, a.Title, a.CreatedAt, due, cfgJSON)
	if err != nil {
		return fmt.Errorf("creating assignment %s: %w", a.ID, err)
	}
	return nil
}

// GetAssignment resolves an assignment or fails with ErrAssignmentNotFound.
func (s *PostgresStore) GetAssignment(ctx context.Context, assignmentID string) (*Assignment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, course_id, educator_id, title, created_at, due_at, boundaries
         FROM assignments
         WHERE id = $1`,
		assignmentID)

	a, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAssignmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting assignment %s: %w", assignmentID, err)
	}
	return a, nil
}

// ListOpen returns assignments with no due date or one still in the future.
func (s *PostgresStore) ListOpen(ctx context.Context) ([]*Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, course_id, educator_id, title, created_at, due_at, boundaries
         FROM assignments
         WHERE due_at IS NULL OR due_at > NOW()
         ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing open assignments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var open []*Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning assignment row: %w", err)
		}
		open = append(open, a)
	}
	return open, rows.Err()
}

// UpdateBoundaries swaps the boundary configuration and appends the log entry
// in one transaction. The next configuration is schema-checked before the
// transaction opens; the assignment row is then locked for the duration, so a
// concurrent approval waits and reads this write as its Previous.
func (s *PostgresStore) UpdateBoundaries(ctx context.Context, assignmentID string, next Config, entry *AdjustmentLog) error {
	nextJSON, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshaling next config: %w", err)
	}
	if _, err := ValidateDocument(nextJSON); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning boundary update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var prevJSON []byte
	err = tx.QueryRowContext(ctx,
		`SELECT boundaries FROM assignments WHERE id = $1 FOR UPDATE`,
		assignmentID).Scan(&prevJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAssignmentNotFound
	}
	if err != nil {
		return fmt.Errorf("locking assignment %s: %w", assignmentID, err)
	}

	var prev Config
	if err := json.Unmarshal(prevJSON, &prev); err != nil {
		return fmt.Errorf("unmarshaling previous config: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE assignments SET boundaries = $1 WHERE id = $2`,
		nextJSON, assignmentID); err != nil {
		return fmt.Errorf("updating boundaries for %s: %w", assignmentID, err)
	}

	entry.AssignmentID = assignmentID
	entry.Previous = prev
	entry.Updated = next
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO boundary_adjustment_log
             (id, assignment_id, proposal_id, previous, updated, reason, actor, notes, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entry.ID, assignmentID, nullString(entry.ProposalID), prevJSON, nextJSON,
		entry.Reason, entry.Actor, nullString(entry.Notes), entry.CreatedAt); err != nil {
		return fmt.Errorf("appending adjustment log: %w", err)
	}

	return tx.Commit()
}

// AdjustmentHistory returns log entries for an assignment, newest first.
func (s *PostgresStore) AdjustmentHistory(ctx context.Context, assignmentID string) ([]*AdjustmentLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, assignment_id, proposal_id, previous, updated, reason, actor, notes, created_at, impact
         FROM boundary_adjustment_log
         WHERE assignment_id = $1
         ORDER BY created_at DESC`,
		assignmentID)
	if err != nil {
		return nil, fmt.Errorf("querying adjustment history for %s: %w", assignmentID, err)
	}
	defer func() { _ = rows.Close() }()

	var history []*AdjustmentLog
	for rows.Next() {
		e := &AdjustmentLog{}
		var proposalID, notes sql.NullString
		var prevJSON, updatedJSON, impactJSON []byte

		if err := rows.Scan(&e.ID, &e.AssignmentID, &proposalID, &prevJSON, &updatedJSON,
			&e.Reason, &e.Actor, &notes, &e.CreatedAt, &impactJSON); err != nil {
			return nil, fmt.Errorf("scanning adjustment log row: %w", err)
		}

		e.ProposalID = proposalID.String
		e.Notes = notes.String
		if err := json.Unmarshal(prevJSON, &e.Previous); err != nil {
			return nil, fmt.Errorf("unmarshaling previous config: %w", err)
		}
		if err := json.Unmarshal(updatedJSON, &e.Updated); err != nil {
			return nil, fmt.Errorf("unmarshaling updated config: %w", err)
		}
		if impactJSON != nil {
			e.Impact = &ImpactMetrics{}
			if err := json.Unmarshal(impactJSON, e.Impact); err != nil {
				return nil, fmt.Errorf("unmarshaling impact metrics: %w", err)
			}
		}

		history = append(history, e)
	}
	return history, rows.Err()
}

// RecordImpact fills impact metrics on an existing entry exactly once.
func (s *PostgresStore) RecordImpact(ctx context.Context, logID uuid.UUID, impact ImpactMetrics) error {
	impactJSON, err := json.Marshal(impact)
	if err != nil {
		return fmt.Errorf("marshaling impact metrics: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE boundary_adjustment_log SET impact = $1 WHERE id = $2 AND impact IS NULL`,
		impactJSON, logID)
	if err != nil {
		return fmt.Errorf("recording impact for entry %s: %w", logID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking impact update: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM boundary_adjustment_log WHERE id = $1)`,
		logID).Scan(&exists); err != nil {
		return fmt.Errorf("checking log entry %s: %w", logID, err)
	}
	if !exists {
		return ErrLogNotFound
	}
	return ErrImpactRecorded
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAssignment(row rowScanner) (*Assignment, error) {
	a := &Assignment{}
	var due sql.NullTime
	var cfgJSON []byte

	if err := row.Scan(&a.ID, &a.CourseID, &a.EducatorID, &a.Title, &a.CreatedAt, &due, &cfgJSON); err != nil {
		return nil, err
	}
	if due.Valid {
		a.DueAt = due.Time
	}
	if err := json.Unmarshal(cfgJSON, &a.Boundaries); err != nil {
		return nil, fmt.Errorf("unmarshaling boundary config: %w", err)
	}
	return a, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
