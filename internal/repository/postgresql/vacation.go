package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/vacation"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const vacationColumns = `
	v.id, v.user_id, v.start_date, v.end_date, v.reason, v.status, v.rejection_reason, v.original_request_id,
	v.reviewed_by, v.reviewed_at, v.cancelled_at, v.created_at, v.updated_at, u.full_name, r.full_name`

const vacationFrom = `
	FROM vacation_requests v
	JOIN users u ON u.id = v.user_id
	LEFT JOIN users r ON r.id = v.reviewed_by`

type vacationRepositoryImpl struct {
	db *database.DB
}

func NewVacationRepository(db *database.DB) vacation.VacationRepository {
	return &vacationRepositoryImpl{db: db}
}

func scanVacation(row pgx.Row) (vacation.VacationRequest, error) {
	var v vacation.VacationRequest
	err := row.Scan(
		&v.ID, &v.UserID, &v.StartDate, &v.EndDate, &v.Reason, &v.Status, &v.RejectionReason, &v.OriginalRequestID,
		&v.ReviewedBy, &v.ReviewedAt, &v.CancelledAt, &v.CreatedAt, &v.UpdatedAt, &v.UserName, &v.ReviewerName,
	)
	return v, err
}

// Create implements vacation.VacationRepository.
func (r *vacationRepositoryImpl) Create(ctx context.Context, v vacation.VacationRequest) (vacation.VacationRequest, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return vacation.VacationRequest{}, err
	}

	query := `
		INSERT INTO vacation_requests (id, user_id, start_date, end_date, reason, status, original_request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err = q.QueryRow(ctx, query,
		id, v.UserID, v.StartDate, v.EndDate, v.Reason, v.Status, v.OriginalRequestID,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "vacation_requests_original_key") {
			return vacation.VacationRequest{}, vacation.ErrAlreadyResubmitted
		}
		return vacation.VacationRequest{}, fmt.Errorf("failed to insert vacation request: %w", err)
	}
	return v, nil
}

// GetByID implements vacation.VacationRepository.
func (r *vacationRepositoryImpl) GetByID(ctx context.Context, id string) (vacation.VacationRequest, error) {
	q := GetQuerier(ctx, r.db)

	v, err := scanVacation(q.QueryRow(ctx, `SELECT `+vacationColumns+vacationFrom+` WHERE v.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return vacation.VacationRequest{}, vacation.ErrVacationNotFound
		}
		return vacation.VacationRequest{}, err
	}
	return v, nil
}

// UpdateStatus implements vacation.VacationRepository.
func (r *vacationRepositoryImpl) UpdateStatus(ctx context.Context, v vacation.VacationRequest, from vacation.Status) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE vacation_requests
		SET status = $1, rejection_reason = $2, reviewed_by = $3, reviewed_at = $4, cancelled_at = $5, updated_at = NOW()
		WHERE id = $6 AND status = $7
	`
	tag, err := q.Exec(ctx, query, v.Status, v.RejectionReason, v.ReviewedBy, v.ReviewedAt, v.CancelledAt, v.ID, from)
	if err != nil {
		return fmt.Errorf("failed to update vacation request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return vacation.ErrStatusConflict
	}
	return nil
}

// DeletePending implements vacation.VacationRepository.
func (r *vacationRepositoryImpl) DeletePending(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM vacation_requests WHERE id = $1 AND status = $2`, id, vacation.StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return vacation.ErrVacationNotPending
	}
	return nil
}

// HasOverlap implements vacation.VacationRepository. Inside a transaction it
// holds a per-user advisory lock so concurrent submissions are serialized.
func (r *vacationRepositoryImpl) HasOverlap(ctx context.Context, userID string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	if _, ok := database.TxFromContext(ctx); ok {
		if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "vacation:"+userID); err != nil {
			return false, fmt.Errorf("failed to lock vacation requests: %w", err)
		}
	}

	query := `
		SELECT EXISTS(
			SELECT 1 FROM vacation_requests
			WHERE user_id = $1 AND status IN ($2, $3)
			  AND start_date <= $5 AND end_date >= $4
		)
	`
	var exists bool
	err := q.QueryRow(ctx, query, userID, vacation.StatusPending, vacation.StatusApproved, start, end).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// GetResubmission implements vacation.VacationRepository.
func (r *vacationRepositoryImpl) GetResubmission(ctx context.Context, originalID string) (*vacation.VacationRequest, error) {
	q := GetQuerier(ctx, r.db)

	v, err := scanVacation(q.QueryRow(ctx, `SELECT `+vacationColumns+vacationFrom+` WHERE v.original_request_id = $1`, originalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// List implements vacation.VacationRepository.
func (r *vacationRepositoryImpl) List(ctx context.Context, filter vacation.VacationFilter) ([]vacation.VacationRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	var w whereBuilder
	if nonEmpty(filter.UserID) {
		w.add("v.user_id = ?", *filter.UserID)
	}
	if nonEmpty(filter.Status) {
		w.add("v.status = ?", *filter.Status)
	}
	if nonEmpty(filter.StartDate) {
		w.add("v.end_date >= ?", *filter.StartDate)
	}
	if nonEmpty(filter.EndDate) {
		w.add("v.start_date <= ?", *filter.EndDate)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM vacation_requests v WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count vacation requests: %w", err)
	}

	query := `SELECT ` + vacationColumns + vacationFrom + ` WHERE ` + w.String() +
		` ORDER BY v.created_at DESC ` + w.page(filter.Page, filter.Limit)
	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query vacation requests: %w", err)
	}
	defer rows.Close()

	var out []vacation.VacationRequest
	for rows.Next() {
		v, err := scanVacation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan vacation request: %w", err)
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

// UsersOnLeave implements vacation.VacationRepository and attendance.LeaveCalendar.
func (r *vacationRepositoryImpl) UsersOnLeave(ctx context.Context, date time.Time) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT DISTINCT user_id FROM vacation_requests
		WHERE status = $1 AND start_date <= $2 AND end_date >= $2
	`
	rows, err := q.Query(ctx, query, vacation.StatusApproved, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query users on leave: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
