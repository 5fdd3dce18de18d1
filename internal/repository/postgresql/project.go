package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/project"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const projectColumns = `
	p.id, p.name, p.code, p.description, p.status, p.start_date, p.end_date, p.created_at, p.updated_at,
	(SELECT COUNT(*) FROM project_allocations pa WHERE pa.project_id = p.id AND pa.is_active)`

type projectRepositoryImpl struct {
	db *database.DB
}

func NewProjectRepository(db *database.DB) project.ProjectRepository {
	return &projectRepositoryImpl{db: db}
}

func scanProject(row pgx.Row) (project.Project, error) {
	var p project.Project
	err := row.Scan(&p.ID, &p.Name, &p.Code, &p.Description, &p.Status, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt, &p.MemberCount)
	return p, err
}

// Create implements project.ProjectRepository.
func (r *projectRepositoryImpl) Create(ctx context.Context, p project.Project) (project.Project, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return project.Project{}, err
	}

	query := `
		INSERT INTO projects (id, name, code, description, status, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err = q.QueryRow(ctx, query, id, p.Name, p.Code, p.Description, p.Status, p.StartDate, p.EndDate).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "projects_code_key") {
			return project.Project{}, project.ErrProjectCodeExists
		}
		return project.Project{}, fmt.Errorf("failed to insert project: %w", err)
	}
	return p, nil
}

// GetByID implements project.ProjectRepository.
func (r *projectRepositoryImpl) GetByID(ctx context.Context, id string) (project.Project, error) {
	q := GetQuerier(ctx, r.db)

	p, err := scanProject(q.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Project{}, project.ErrProjectNotFound
		}
		return project.Project{}, err
	}
	return p, nil
}

// Update implements project.ProjectRepository.
func (r *projectRepositoryImpl) Update(ctx context.Context, p project.Project) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE projects
		SET name = $1, code = $2, description = $3, status = $4, start_date = $5, end_date = $6, updated_at = NOW()
		WHERE id = $7
	`
	tag, err := q.Exec(ctx, query, p.Name, p.Code, p.Description, p.Status, p.StartDate, p.EndDate, p.ID)
	if err != nil {
		if isUniqueViolation(err, "projects_code_key") {
			return project.ErrProjectCodeExists
		}
		return fmt.Errorf("failed to update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return project.ErrProjectNotFound
	}
	return nil
}

// Delete implements project.ProjectRepository.
func (r *projectRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM projects p
		WHERE p.id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM project_allocations a
			JOIN daily_project_updates u ON u.allocation_id = a.id
			WHERE a.project_id = p.id
		  )
	`
	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check project: %w", err)
	}
	if exists {
		return project.ErrProjectHasUpdates
	}
	return project.ErrProjectNotFound
}

// List implements project.ProjectRepository.
func (r *projectRepositoryImpl) List(ctx context.Context, filter project.ProjectFilter) ([]project.Project, int64, error) {
	q := GetQuerier(ctx, r.db)

	var w whereBuilder
	if nonEmpty(filter.Search) {
		w.add("(p.name ILIKE ? OR p.code ILIKE ?)", containing(*filter.Search))
	}
	if nonEmpty(filter.Status) {
		w.add("p.status = ?", *filter.Status)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM projects p WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	query := `SELECT ` + projectColumns + ` FROM projects p WHERE ` + w.String() + ` ORDER BY p.name ASC ` + w.page(filter.Page, filter.Limit)
	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var out []project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

const allocationColumns = `
	pa.id, pa.project_id, pa.user_id, pa.role, pa.hours_allocated, pa.is_active, pa.created_at, pa.updated_at,
	p.name, p.code, u.full_name`

const allocationFrom = `
	FROM project_allocations pa
	JOIN projects p ON p.id = pa.project_id
	JOIN users u ON u.id = pa.user_id`

type allocationRepositoryImpl struct {
	db *database.DB
}

func NewAllocationRepository(db *database.DB) project.AllocationRepository {
	return &allocationRepositoryImpl{db: db}
}

func scanAllocation(row pgx.Row) (project.Allocation, error) {
	var a project.Allocation
	err := row.Scan(
		&a.ID, &a.ProjectID, &a.UserID, &a.Role, &a.HoursAllocated, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
		&a.ProjectName, &a.ProjectCode, &a.UserName,
	)
	return a, err
}

// Create implements project.AllocationRepository.
func (r *allocationRepositoryImpl) Create(ctx context.Context, a project.Allocation) (project.Allocation, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return project.Allocation{}, err
	}

	query := `
		INSERT INTO project_allocations (id, project_id, user_id, role, hours_allocated, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err = q.QueryRow(ctx, query, id, a.ProjectID, a.UserID, a.Role, a.HoursAllocated, a.IsActive).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "project_allocations_one_active_idx") {
			return project.Allocation{}, project.ErrAllocationExists
		}
		return project.Allocation{}, fmt.Errorf("failed to insert allocation: %w", err)
	}
	return a, nil
}

// GetByID implements project.AllocationRepository.
func (r *allocationRepositoryImpl) GetByID(ctx context.Context, id string) (project.Allocation, error) {
	q := GetQuerier(ctx, r.db)

	a, err := scanAllocation(q.QueryRow(ctx, `SELECT `+allocationColumns+allocationFrom+` WHERE pa.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.Allocation{}, project.ErrAllocationNotFound
		}
		return project.Allocation{}, err
	}
	return a, nil
}

// Update implements project.AllocationRepository.
func (r *allocationRepositoryImpl) Update(ctx context.Context, a project.Allocation) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE project_allocations
		SET role = $1, hours_allocated = $2, is_active = $3, updated_at = NOW()
		WHERE id = $4
	`
	tag, err := q.Exec(ctx, query, a.Role, a.HoursAllocated, a.IsActive, a.ID)
	if err != nil {
		if isUniqueViolation(err, "project_allocations_one_active_idx") {
			return project.ErrAllocationExists
		}
		return fmt.Errorf("failed to update allocation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return project.ErrAllocationNotFound
	}
	return nil
}

// List implements project.AllocationRepository.
func (r *allocationRepositoryImpl) List(ctx context.Context, filter project.AllocationFilter) ([]project.Allocation, int64, error) {
	q := GetQuerier(ctx, r.db)

	var w whereBuilder
	if nonEmpty(filter.ProjectID) {
		w.add("pa.project_id = ?", *filter.ProjectID)
	}
	if nonEmpty(filter.UserID) {
		w.add("pa.user_id = ?", *filter.UserID)
	}
	if filter.ActiveOnly {
		w.raw("pa.is_active")
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM project_allocations pa WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count allocations: %w", err)
	}

	query := `SELECT ` + allocationColumns + allocationFrom + ` WHERE ` + w.String() +
		` ORDER BY p.name ASC, u.full_name ASC ` + w.page(filter.Page, filter.Limit)
	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer rows.Close()

	var out []project.Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan allocation: %w", err)
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

const dailyUpdateColumns = `
	d.id, d.allocation_id, d.date, d.hours_worked, d.description, d.blockers, d.completion_percentage,
	d.created_at, d.updated_at, pa.project_id, p.name, pa.user_id, u.full_name`

const dailyUpdateFrom = `
	FROM daily_project_updates d
	JOIN project_allocations pa ON pa.id = d.allocation_id
	JOIN projects p ON p.id = pa.project_id
	JOIN users u ON u.id = pa.user_id`

type dailyUpdateRepositoryImpl struct {
	db *database.DB
}

func NewDailyUpdateRepository(db *database.DB) project.DailyUpdateRepository {
	return &dailyUpdateRepositoryImpl{db: db}
}

func scanDailyUpdate(row pgx.Row) (project.DailyUpdate, error) {
	var d project.DailyUpdate
	err := row.Scan(
		&d.ID, &d.AllocationID, &d.Date, &d.HoursWorked, &d.Description, &d.Blockers, &d.CompletionPercentage,
		&d.CreatedAt, &d.UpdatedAt, &d.ProjectID, &d.ProjectName, &d.UserID, &d.UserName,
	)
	return d, err
}

// Create implements project.DailyUpdateRepository.
func (r *dailyUpdateRepositoryImpl) Create(ctx context.Context, d project.DailyUpdate) (project.DailyUpdate, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return project.DailyUpdate{}, err
	}

	query := `
		INSERT INTO daily_project_updates (id, allocation_id, date, hours_worked, description, blockers, completion_percentage)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err = q.QueryRow(ctx, query, id, d.AllocationID, d.Date, d.HoursWorked, d.Description, d.Blockers, d.CompletionPercentage).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "daily_project_updates_allocation_date_key") {
			return project.DailyUpdate{}, project.ErrUpdateExists
		}
		return project.DailyUpdate{}, fmt.Errorf("failed to insert daily update: %w", err)
	}
	return d, nil
}

// GetByID implements project.DailyUpdateRepository.
func (r *dailyUpdateRepositoryImpl) GetByID(ctx context.Context, id string) (project.DailyUpdate, error) {
	q := GetQuerier(ctx, r.db)

	d, err := scanDailyUpdate(q.QueryRow(ctx, `SELECT `+dailyUpdateColumns+dailyUpdateFrom+` WHERE d.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return project.DailyUpdate{}, project.ErrUpdateNotFound
		}
		return project.DailyUpdate{}, err
	}
	return d, nil
}

// Update implements project.DailyUpdateRepository.
func (r *dailyUpdateRepositoryImpl) Update(ctx context.Context, d project.DailyUpdate) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE daily_project_updates
		SET hours_worked = $1, description = $2, blockers = $3, completion_percentage = $4, updated_at = NOW()
		WHERE id = $5
	`
	tag, err := q.Exec(ctx, query, d.HoursWorked, d.Description, d.Blockers, d.CompletionPercentage, d.ID)
	if err != nil {
		return fmt.Errorf("failed to update daily update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return project.ErrUpdateNotFound
	}
	return nil
}

// List implements project.DailyUpdateRepository.
func (r *dailyUpdateRepositoryImpl) List(ctx context.Context, filter project.DailyUpdateFilter) ([]project.DailyUpdate, int64, error) {
	q := GetQuerier(ctx, r.db)

	var w whereBuilder
	if nonEmpty(filter.ProjectID) {
		w.add("pa.project_id = ?", *filter.ProjectID)
	}
	if nonEmpty(filter.UserID) {
		w.add("pa.user_id = ?", *filter.UserID)
	}
	if nonEmpty(filter.AllocationID) {
		w.add("d.allocation_id = ?", *filter.AllocationID)
	}
	if nonEmpty(filter.StartDate) {
		w.add("d.date >= ?", *filter.StartDate)
	}
	if nonEmpty(filter.EndDate) {
		w.add("d.date <= ?", *filter.EndDate)
	}

	countQuery := `
		SELECT COUNT(*)
		FROM daily_project_updates d
		JOIN project_allocations pa ON pa.id = d.allocation_id
		WHERE ` + w.String()
	var total int64
	if err := q.QueryRow(ctx, countQuery, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count daily updates: %w", err)
	}

	query := `SELECT ` + dailyUpdateColumns + dailyUpdateFrom + ` WHERE ` + w.String() +
		` ORDER BY d.date DESC, p.name ASC ` + w.page(filter.Page, filter.Limit)
	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query daily updates: %w", err)
	}
	defer rows.Close()

	var out []project.DailyUpdate
	for rows.Next() {
		d, err := scanDailyUpdate(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan daily update: %w", err)
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// ReportRows implements project.DailyUpdateRepository.
func (r *dailyUpdateRepositoryImpl) ReportRows(ctx context.Context, from, to time.Time, projectID, userID *string) ([]project.ReportRow, error) {
	q := GetQuerier(ctx, r.db)

	var w whereBuilder
	w.add("d.date >= ?", from)
	w.add("d.date <= ?", to)
	if nonEmpty(projectID) {
		w.add("pa.project_id = ?", *projectID)
	}
	if nonEmpty(userID) {
		w.add("pa.user_id = ?", *userID)
	}

	query := `
		SELECT p.id, p.name, p.code, u.id, u.full_name, pa.hours_allocated, d.date, d.hours_worked, d.completion_percentage
		FROM daily_project_updates d
		JOIN project_allocations pa ON pa.id = d.allocation_id
		JOIN projects p ON p.id = pa.project_id
		JOIN users u ON u.id = pa.user_id
		WHERE ` + w.String() + `
		ORDER BY p.name, u.full_name, d.date`
	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query report rows: %w", err)
	}
	defer rows.Close()

	var out []project.ReportRow
	for rows.Next() {
		var row project.ReportRow
		err := rows.Scan(
			&row.ProjectID, &row.ProjectName, &row.ProjectCode, &row.UserID, &row.UserName,
			&row.HoursAllocated, &row.Date, &row.HoursWorked, &row.CompletionPercentage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
