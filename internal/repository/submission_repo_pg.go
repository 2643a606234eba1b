package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/airbooking-desk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubmissionRepository interface {
	Create(ctx context.Context, submission *domain.Submission) error
	ListBySession(ctx context.Context, sessionID string) ([]domain.Submission, error)
	MarkRedirected(ctx context.Context, id int64, processURL, requestID string) error
	MarkFailed(ctx context.Context, id int64, reason string) error
	FailStaleBefore(ctx context.Context, deadline time.Time) ([]domain.Submission, error)
}

type PGSubmissionRepository struct {
	db *pgxpool.Pool
}

func NewSubmissionRepository(db *pgxpool.Pool) SubmissionRepository {
	return &PGSubmissionRepository{db: db}
}

const submissionColumns = `id, session_id, state, contact_email, total, passengers, process_url, request_id, error, payload, created_at, updated_at`

func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var s domain.Submission
	if err := row.Scan(&s.ID, &s.SessionID, &s.State, &s.ContactEmail, &s.Total, &s.Passengers, &s.ProcessURL, &s.RequestID, &s.Error, &s.Payload, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGSubmissionRepository) Create(ctx context.Context, submission *domain.Submission) error {
	if submission.State == "" {
		submission.State = domain.SubmissionPending
	}
	return r.db.QueryRow(ctx, `INSERT INTO reservation_submissions (session_id, state, contact_email, total, passengers, payload)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		submission.SessionID, submission.State, submission.ContactEmail, submission.Total, submission.Passengers, submission.Payload).
		Scan(&submission.ID, &submission.CreatedAt, &submission.UpdatedAt)
}

func (r *PGSubmissionRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.Submission, error) {
	rows, err := r.db.Query(ctx, `SELECT `+submissionColumns+` FROM reservation_submissions WHERE session_id=$1 ORDER BY created_at`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *PGSubmissionRepository) MarkRedirected(ctx context.Context, id int64, processURL, requestID string) error {
	return r.transition(ctx, `UPDATE reservation_submissions SET state=$1, process_url=$2, request_id=$3, updated_at=now() WHERE id=$4 AND state=$5`,
		domain.SubmissionRedirected, processURL, requestID, id, domain.SubmissionPending)
}

func (r *PGSubmissionRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	return r.transition(ctx, `UPDATE reservation_submissions SET state=$1, error=$2, updated_at=now() WHERE id=$3 AND state=$4`,
		domain.SubmissionFailed, reason, id, domain.SubmissionPending)
}

// FailStaleBefore fails every attempt still SUBMITTING that was created
// before deadline and returns the rows it changed.
func (r *PGSubmissionRepository) FailStaleBefore(ctx context.Context, deadline time.Time) ([]domain.Submission, error) {
	rows, err := r.db.Query(ctx, `UPDATE reservation_submissions SET state=$1, error='no answer from reservation backend', updated_at=now()
		WHERE state=$2 AND created_at <= $3
		RETURNING `+submissionColumns, domain.SubmissionFailed, domain.SubmissionPending, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stale []domain.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		stale = append(stale, *s)
	}
	return stale, rows.Err()
}

func (r *PGSubmissionRepository) transition(ctx context.Context, sql string, args ...any) error {
	cmd, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ConflictError{Resource: "submission", Msg: "submission is not pending"}
	}
	return nil
}

var _ SubmissionRepository = (*PGSubmissionRepository)(nil)
