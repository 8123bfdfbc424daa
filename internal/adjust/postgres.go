// internal/adjust/postgres.go
package adjust

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PostgresProposalStore persists proposals in Postgres. Evidence and the
// affected-student list are stored as JSONB documents.
type PostgresProposalStore struct {
	db *sql.DB
}

// NewPostgresProposalStore creates a store over an existing connection pool.
func NewPostgresProposalStore(db *sql.DB) *PostgresProposalStore {
	return &PostgresProposalStore{db: db}
}

// InitSchema creates the proposal table when it does not exist yet.
func (s *PostgresProposalStore) InitSchema(ctx context.Context) error {
	schema := `
    CREATE TABLE IF NOT EXISTS boundary_proposals (
        id UUID PRIMARY KEY,
        assignment_id TEXT NOT NULL,
        course_id TEXT NOT NULL,
        pattern TEXT NOT NULL,
        adjustment_type TEXT NOT NULL,
        reason TEXT NOT NULL,
        specific_change TEXT NOT NULL,
        affected_students JSONB NOT NULL DEFAULT '[]',
        expected_outcome TEXT NOT NULL,
        evidence JSONB NOT NULL DEFAULT '[]',
        confidence DOUBLE PRECISION NOT NULL,
        status TEXT NOT NULL DEFAULT 'pending',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        decided_at TIMESTAMPTZ,
        decided_by TEXT,
        decision_notes TEXT
    );

    CREATE INDEX IF NOT EXISTS idx_proposals_assignment
        ON boundary_proposals(assignment_id, created_at DESC);

    CREATE INDEX IF NOT EXISTS idx_proposals_dedupe
        ON boundary_proposals(assignment_id, adjustment_type, created_at);
    `

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("initializing proposal schema: %w", err)
	}
	return nil
}

// Create persists a new proposal.
func (s *PostgresProposalStore) Create(ctx context.Context, p *Proposal) error {
	studentsJSON, err := json.Marshal(p.AffectedStudents)
	if err != nil {
		return fmt.Errorf("marshaling affected students: %w", err)
	}
	evidenceJSON, err := json.Marshal(p.Evidence)
	if err != nil {
		return fmt.Errorf("marshaling evidence: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO boundary_proposals
             (id, assignment_id, course_id, pattern, adjustment_type, reason, specific_change,
              affected_students, expected_outcome, evidence, confidence, status, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.AssignmentID, p.CourseID, p.Pattern, p.Type, p.Reason, p.SpecificChange,
		studentsJSON, p.ExpectedOutcome, evidenceJSON, p.Confidence, p.Status, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating proposal %s: %w", p.ID, err)
	}
	return nil
}

// Get resolves a proposal or fails with ErrProposalNotFound.
func (s *PostgresProposalStore) Get(ctx context.Context, id string) (*Proposal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, assignment_id, course_id, pattern, adjustment_type, reason, specific_change,
                affected_students, expected_outcome, evidence, confidence, status, created_at,
                decided_at, decided_by, decision_notes
         FROM boundary_proposals
         WHERE id = $1`,
		id)

	p, err := scanProposal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProposalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting proposal %s: %w", id, err)
	}
	return p, nil
}

// Update rewrites the decision fields of an existing proposal.
func (s *PostgresProposalStore) Update(ctx context.Context, p *Proposal) error {
	var decidedAt interface{}
	if p.DecidedAt != nil {
		decidedAt = *p.DecidedAt
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE boundary_proposals
         SET status = $1, decided_at = $2, decided_by = $3, decision_notes = $4
         WHERE id = $5`,
		p.Status, decidedAt, nullString(p.DecidedBy), nullString(p.DecisionNotes), p.ID)
	if err != nil {
		return fmt.Errorf("updating proposal %s: %w", p.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking proposal update: %w", err)
	}
	if affected == 0 {
		return ErrProposalNotFound
	}
	return nil
}

// ListByAssignment returns all proposals for an assignment, newest first.
func (s *PostgresProposalStore) ListByAssignment(ctx context.Context, assignmentID string) ([]*Proposal, error) {
	return s.list(ctx,
		`SELECT id, assignment_id, course_id, pattern, adjustment_type, reason, specific_change,
                affected_students, expected_outcome, evidence, confidence, status, created_at,
                decided_at, decided_by, decision_notes
         FROM boundary_proposals
         WHERE assignment_id = $1
         ORDER BY created_at DESC`,
		assignmentID)
}

// ListPending returns undecided proposals for an assignment, newest first.
func (s *PostgresProposalStore) ListPending(ctx context.Context, assignmentID string) ([]*Proposal, error) {
	return s.list(ctx,
		`SELECT id, assignment_id, course_id, pattern, adjustment_type, reason, specific_change,
                affected_students, expected_outcome, evidence, confidence, status, created_at,
                decided_at, decided_by, decision_notes
         FROM boundary_proposals
         WHERE assignment_id = $1 AND status = 'pending'
         ORDER BY created_at DESC`,
		assignmentID)
}

// ExistsSince reports whether a same-type proposal, in any status, was
// created at or after the cutoff.
func (s *PostgresProposalStore) ExistsSince(ctx context.Context, assignmentID string, t AdjustmentType, since time.Time) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (
             SELECT 1 FROM boundary_proposals
             WHERE assignment_id = $1 AND adjustment_type = $2 AND created_at >= $3
         )`,
		assignmentID, t, since).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking proposal history for %s: %w", assignmentID, err)
	}
	return exists, nil
}

func (s *PostgresProposalStore) list(ctx context.Context, query string, assignmentID string) ([]*Proposal, error) {
	rows, err := s.db.QueryContext(ctx, query, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("listing proposals for %s: %w", assignmentID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning proposal row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProposal(row rowScanner) (*Proposal, error) {
	p := &Proposal{}
	var studentsJSON, evidenceJSON []byte
	var decidedAt sql.NullTime
	var decidedBy, decisionNotes sql.NullString

	if err := row.Scan(&p.ID, &p.AssignmentID, &p.CourseID, &p.Pattern, &p.Type, &p.Reason,
		&p.SpecificChange, &studentsJSON, &p.ExpectedOutcome, &evidenceJSON, &p.Confidence,
		&p.Status, &p.CreatedAt, &decidedAt, &decidedBy, &decisionNotes); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(studentsJSON, &p.AffectedStudents); err != nil {
		return nil, fmt.Errorf("unmarshaling affected students: %w", err)
	}
	if err := json.Unmarshal(evidenceJSON, &p.Evidence); err != nil {
		return nil, fmt.Errorf("unmarshaling evidence: %w", err)
	}
	if decidedAt.Valid {
		at := decidedAt.Time
		p.DecidedAt = &at
	}
	p.DecidedBy = decidedBy.String
	p.DecisionNotes = decisionNotes.String
	return p, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
