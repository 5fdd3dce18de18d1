package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/attendance"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	a.id, a.user_id, a.date, a.clock_in, a.clock_out, a.status, a.auto_clocked_out,
	a.created_at, a.updated_at, u.full_name`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var rec attendance.Record
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Date, &rec.ClockIn, &rec.ClockOut, &rec.Status, &rec.AutoClockedOut,
		&rec.CreatedAt, &rec.UpdatedAt, &rec.UserName,
	)
	return rec, err
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	id, err := newID()
	if err != nil {
		return attendance.Record{}, err
	}

	query := `
		INSERT INTO attendance_records (id, user_id, date, clock_in, clock_out, status, auto_clocked_out)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err = q.QueryRow(ctx, query,
		id, rec.UserID, rec.Date, rec.ClockIn, rec.ClockOut, rec.Status, rec.AutoClockedOut,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "attendance_records_user_date_key") {
			return attendance.Record{}, attendance.ErrAlreadyClockedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to insert attendance: %w", err)
	}
	return rec, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance_records a
		JOIN users u ON u.id = a.user_id
		WHERE a.id = $1`
	rec, err := scanRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Record{}, err
	}

	records := []attendance.Record{rec}
	if err := a.loadBreaks(ctx, records); err != nil {
		return attendance.Record{}, err
	}
	return records[0], nil
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance_records a
		JOIN users u ON u.id = a.user_id
		WHERE a.user_id = $1 AND a.date = $2`
	rec, err := scanRecord(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	records := []attendance.Record{rec}
	if err := a.loadBreaks(ctx, records); err != nil {
		return nil, err
	}
	return &records[0], nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, rec attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET clock_out = $1, status = $2, auto_clocked_out = $3, updated_at = NOW()
		WHERE id = $4
	`
	tag, err := q.Exec(ctx, query, rec.ClockOut, rec.Status, rec.AutoClockedOut, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	var w whereBuilder
	if nonEmpty(filter.UserID) {
		w.add("a.user_id = ?", *filter.UserID)
	}
	if nonEmpty(filter.Search) {
		w.add("u.full_name ILIKE ?", containing(*filter.Search))
	}
	if nonEmpty(filter.StartDate) {
		w.add("a.date >= ?", *filter.StartDate)
	}
	if nonEmpty(filter.EndDate) {
		w.add("a.date <= ?", *filter.EndDate)
	}
	if nonEmpty(filter.Status) {
		w.add("a.status = ?", *filter.Status)
	}

	countQuery := `
		SELECT COUNT(*)
		FROM attendance_records a
		JOIN users u ON u.id = a.user_id
		WHERE ` + w.String()
	var total int64
	if err := q.QueryRow(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM attendance_records a
		JOIN users u ON u.id = a.user_id
		WHERE %s
		ORDER BY a.date %s, u.full_name ASC
		%s`, attendanceColumns, w.String(), sortOrder, w.page(filter.Page, filter.Limit))

	records, err := a.query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListOpen implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpen(ctx context.Context, date time.Time) ([]attendance.Record, error) {
	query := `SELECT ` + attendanceColumns + `
		FROM attendance_records a
		JOIN users u ON u.id = a.user_id
		WHERE a.date <= $1 AND a.clock_in IS NOT NULL AND a.clock_out IS NULL
		ORDER BY a.date`
	return a.query(ctx, query, date)
}

// ListUserIDsByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListUserIDsByDate(ctx context.Context, date time.Time) ([]string, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, `SELECT user_id FROM attendance_records WHERE date = $1`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance users: %w", err)
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

// LatestMarkedDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) LatestMarkedDate(ctx context.Context, before time.Time) (*time.Time, error) {
	q := GetQuerier(ctx, a.db)

	var latest *time.Time
	err := q.QueryRow(ctx, `
		SELECT MAX(date) FROM attendance_records
		WHERE clock_in IS NULL AND status IN ($1, $2) AND date < $3`,
		attendance.StatusAbsent, attendance.StatusLeave, before,
	).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest marked date: %w", err)
	}
	return latest, nil
}

// CreateBreak implements attendance.AttendanceRepository.
func (a *attendanceRepository) CreateBreak(ctx context.Context, b attendance.BreakInterval) (attendance.BreakInterval, error) {
	q := GetQuerier(ctx, a.db)

	id, err := newID()
	if err != nil {
		return attendance.BreakInterval{}, err
	}

	query := `
		INSERT INTO attendance_breaks (id, attendance_record_id, break_in)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := q.QueryRow(ctx, query, id, b.AttendanceRecordID, b.BreakIn).Scan(&b.ID); err != nil {
		if isUniqueViolation(err, "attendance_breaks_one_open_idx") {
			return attendance.BreakInterval{}, attendance.ErrAlreadyOnBreak
		}
		return attendance.BreakInterval{}, fmt.Errorf("failed to insert break: %w", err)
	}
	return b, nil
}

// CloseBreak implements attendance.AttendanceRepository.
func (a *attendanceRepository) CloseBreak(ctx context.Context, breakID string, at time.Time) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `UPDATE attendance_breaks SET break_out = $1 WHERE id = $2 AND break_out IS NULL`, at, breakID)
	if err != nil {
		return fmt.Errorf("failed to close break: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrNotOnBreak
	}
	return nil
}

func (a *attendanceRepository) query(ctx context.Context, query string, args ...interface{}) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := a.loadBreaks(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// loadBreaks fills Breaks on every record with one query.
func (a *attendanceRepository) loadBreaks(ctx context.Context, records []attendance.Record) error {
	if len(records) == 0 {
		return nil
	}
	q := GetQuerier(ctx, a.db)

	ids := make([]string, len(records))
	index := make(map[string]int, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
		index[rec.ID] = i
	}

	query := `
		SELECT id, attendance_record_id, break_in, break_out
		FROM attendance_breaks
		WHERE attendance_record_id = ANY($1::uuid[])
		ORDER BY break_in
	`
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to query breaks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b attendance.BreakInterval
		if err := rows.Scan(&b.ID, &b.AttendanceRecordID, &b.BreakIn, &b.BreakOut); err != nil {
			return fmt.Errorf("failed to scan break: %w", err)
		}
		i := index[b.AttendanceRecordID]
		records[i].Breaks = append(records[i].Breaks, b)
	}
	return rows.Err()
}

type overtimeRepository struct {
	db *database.DB
}

func NewOvertimeRepository(db *database.DB) attendance.OvertimeRepository {
	return &overtimeRepository{db: db}
}

const overtimeColumns = `o.id, o.user_id, o.date, o.clock_in, o.clock_out, o.created_at, o.updated_at, u.full_name`

func scanOvertime(row pgx.Row) (attendance.OvertimeRecord, error) {
	var o attendance.OvertimeRecord
	err := row.Scan(&o.ID, &o.UserID, &o.Date, &o.ClockIn, &o.ClockOut, &o.CreatedAt, &o.UpdatedAt, &o.UserName)
	return o, err
}

// Create implements attendance.OvertimeRepository.
func (o *overtimeRepository) Create(ctx context.Context, rec attendance.OvertimeRecord) (attendance.OvertimeRecord, error) {
	q := GetQuerier(ctx, o.db)

	id, err := newID()
	if err != nil {
		return attendance.OvertimeRecord{}, err
	}

	query := `
		INSERT INTO overtime_records (id, user_id, date, clock_in)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err = q.QueryRow(ctx, query, id, rec.UserID, rec.Date, rec.ClockIn).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "overtime_records_user_date_key") {
			return attendance.OvertimeRecord{}, attendance.ErrOvertimeAlreadyStarted
		}
		return attendance.OvertimeRecord{}, fmt.Errorf("failed to insert overtime: %w", err)
	}
	return rec, nil
}

// GetByUserAndDate implements attendance.OvertimeRepository.
func (o *overtimeRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.OvertimeRecord, error) {
	q := GetQuerier(ctx, o.db)

	query := `SELECT ` + overtimeColumns + `
		FROM overtime_records o
		JOIN users u ON u.id = o.user_id
		WHERE o.user_id = $1 AND o.date = $2`
	rec, err := scanOvertime(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// Update implements attendance.OvertimeRepository.
func (o *overtimeRepository) Update(ctx context.Context, rec attendance.OvertimeRecord) error {
	q := GetQuerier(ctx, o.db)

	tag, err := q.Exec(ctx, `UPDATE overtime_records SET clock_out = $1, updated_at = NOW() WHERE id = $2`, rec.ClockOut, rec.ID)
	if err != nil {
		return fmt.Errorf("failed to update overtime: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrOvertimeNotActive
	}
	return nil
}

// List implements attendance.OvertimeRepository.
func (o *overtimeRepository) List(ctx context.Context, filter attendance.OvertimeFilter) ([]attendance.OvertimeRecord, int64, error) {
	q := GetQuerier(ctx, o.db)

	var w whereBuilder
	if nonEmpty(filter.UserID) {
		w.add("o.user_id = ?", *filter.UserID)
	}
	if nonEmpty(filter.StartDate) {
		w.add("o.date >= ?", *filter.StartDate)
	}
	if nonEmpty(filter.EndDate) {
		w.add("o.date <= ?", *filter.EndDate)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM overtime_records o WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count overtime: %w", err)
	}

	query := `SELECT ` + overtimeColumns + `
		FROM overtime_records o
		JOIN users u ON u.id = o.user_id
		WHERE ` + w.String() + `
		ORDER BY o.date DESC ` + w.page(filter.Page, filter.Limit)
	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query overtime: %w", err)
	}
	defer rows.Close()

	var out []attendance.OvertimeRecord
	for rows.Next() {
		rec, err := scanOvertime(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan overtime: %w", err)
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}
