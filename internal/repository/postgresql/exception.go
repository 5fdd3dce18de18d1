package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/exception"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const exceptionColumns = `
	e.id, e.user_id, e.type, e.reason, e.date, e.status, e.reviewed_by, e.reviewed_at, e.rejection_reason,
	e.created_at, e.updated_at, u.full_name, r.full_name`

const exceptionFrom = `
	FROM exception_requests e
	JOIN users u ON u.id = e.user_id
	LEFT JOIN users r ON r.id = e.reviewed_by`

type exceptionRepositoryImpl struct {
	db *database.DB
}

func NewExceptionRepository(db *database.DB) exception.ExceptionRepository {
	return &exceptionRepositoryImpl{db: db}
}

func scanException(row pgx.Row) (exception.ExceptionRequest, error) {
	var e exception.ExceptionRequest
	err := row.Scan(
		&e.ID, &e.UserID, &e.Type, &e.Reason, &e.Date, &e.Status, &e.ReviewedBy, &e.ReviewedAt, &e.RejectionReason,
		&e.CreatedAt, &e.UpdatedAt, &e.UserName, &e.ReviewerName,
	)
	return e, err
}

// Create implements exception.ExceptionRepository.
func (r *exceptionRepositoryImpl) Create(ctx context.Context, e exception.ExceptionRequest) (exception.ExceptionRequest, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return exception.ExceptionRequest{}, err
	}

	query := `
		INSERT INTO exception_requests (id, user_id, type, reason, date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err = q.QueryRow(ctx, query, id, e.UserID, e.Type, e.Reason, e.Date, e.Status).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return exception.ExceptionRequest{}, fmt.Errorf("failed to insert exception request: %w", err)
	}
	return e, nil
}

// GetByID implements exception.ExceptionRepository.
func (r *exceptionRepositoryImpl) GetByID(ctx context.Context, id string) (exception.ExceptionRequest, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanException(q.QueryRow(ctx, `SELECT `+exceptionColumns+exceptionFrom+` WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exception.ExceptionRequest{}, exception.ErrExceptionNotFound
		}
		return exception.ExceptionRequest{}, err
	}
	return e, nil
}

// UpdateReview implements exception.ExceptionRepository.
func (r *exceptionRepositoryImpl) UpdateReview(ctx context.Context, e exception.ExceptionRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE exception_requests
		SET status = $1, reviewed_by = $2, reviewed_at = $3, rejection_reason = $4, updated_at = NOW()
		WHERE id = $5 AND status = $6
	`
	tag, err := q.Exec(ctx, query, e.Status, e.ReviewedBy, e.ReviewedAt, e.RejectionReason, e.ID, exception.StatusPending)
	if err != nil {
		return fmt.Errorf("failed to update exception request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return exception.ErrExceptionNotPending
	}
	return nil
}

// List implements exception.ExceptionRepository.
func (r *exceptionRepositoryImpl) List(ctx context.Context, filter exception.ExceptionFilter) ([]exception.ExceptionRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	var w whereBuilder
	if nonEmpty(filter.UserID) {
		w.add("e.user_id = ?", *filter.UserID)
	}
	if nonEmpty(filter.Status) {
		w.add("e.status = ?", *filter.Status)
	}
	if nonEmpty(filter.Type) {
		w.add("e.type = ?", *filter.Type)
	}
	if nonEmpty(filter.StartDate) {
		w.add("e.date >= ?", *filter.StartDate)
	}
	if nonEmpty(filter.EndDate) {
		w.add("e.date <= ?", *filter.EndDate)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM exception_requests e WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count exception requests: %w", err)
	}

	query := `SELECT ` + exceptionColumns + exceptionFrom + ` WHERE ` + w.String() +
		` ORDER BY e.created_at DESC ` + w.page(filter.Page, filter.Limit)
	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query exception requests: %w", err)
	}
	defer rows.Close()

	var out []exception.ExceptionRequest
	for rows.Next() {
		e, err := scanException(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan exception request: %w", err)
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// HasPending implements exception.ExceptionRepository.
func (r *exceptionRepositoryImpl) HasPending(ctx context.Context, userID string, t exception.Type, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM exception_requests
			WHERE user_id = $1 AND type = $2 AND date = $3 AND status = $4
		)
	`
	var exists bool
	if err := q.QueryRow(ctx, query, userID, t, date, exception.StatusPending).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
