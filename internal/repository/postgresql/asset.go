package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/asset"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const assetColumns = `
	a.id, a.name, a.category, a.serial_number, a.status, a.purchase_date, a.purchase_cost,
	a.proof_of_purchase, a.notes, a.created_at, a.updated_at, aa.user_id, au.full_name`

const assetFrom = `
	FROM assets a
	LEFT JOIN asset_assignments aa ON aa.asset_id = a.id AND aa.status = 'Active'
	LEFT JOIN users au ON au.id = aa.user_id`

type assetRepositoryImpl struct {
	db *database.DB
}

func NewAssetRepository(db *database.DB) asset.AssetRepository {
	return &assetRepositoryImpl{db: db}
}

func scanAsset(row pgx.Row) (asset.Asset, error) {
	var a asset.Asset
	err := row.Scan(
		&a.ID, &a.Name, &a.Category, &a.SerialNumber, &a.Status, &a.PurchaseDate, &a.PurchaseCost,
		&a.ProofOfPurchase, &a.Notes, &a.CreatedAt, &a.UpdatedAt, &a.AssigneeID, &a.AssigneeName,
	)
	return a, err
}

// Create implements asset.AssetRepository.
func (r *assetRepositoryImpl) Create(ctx context.Context, a asset.Asset) (asset.Asset, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return asset.Asset{}, err
	}

	query := `
		INSERT INTO assets (id, name, category, serial_number, status, purchase_date, purchase_cost, proof_of_purchase, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err = q.QueryRow(ctx, query,
		id, a.Name, a.Category, a.SerialNumber, a.Status, a.PurchaseDate, a.PurchaseCost, a.ProofOfPurchase, a.Notes,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "assets_serial_number_key") {
			return asset.Asset{}, asset.ErrSerialNumberExists
		}
		return asset.Asset{}, fmt.Errorf("failed to insert asset: %w", err)
	}
	return a, nil
}

// GetByID implements asset.AssetRepository.
func (r *assetRepositoryImpl) GetByID(ctx context.Context, id string) (asset.Asset, error) {
	q := GetQuerier(ctx, r.db)

	a, err := scanAsset(q.QueryRow(ctx, `SELECT `+assetColumns+assetFrom+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return asset.Asset{}, asset.ErrAssetNotFound
		}
		return asset.Asset{}, err
	}
	return a, nil
}

// Update implements asset.AssetRepository.
func (r *assetRepositoryImpl) Update(ctx context.Context, a asset.Asset) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE assets
		SET name = $1, category = $2, serial_number = $3, status = $4, purchase_date = $5,
			purchase_cost = $6, proof_of_purchase = $7, notes = $8, updated_at = NOW()
		WHERE id = $9
	`
	tag, err := q.Exec(ctx, query,
		a.Name, a.Category, a.SerialNumber, a.Status, a.PurchaseDate, a.PurchaseCost, a.ProofOfPurchase, a.Notes, a.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "assets_serial_number_key") {
			return asset.ErrSerialNumberExists
		}
		return fmt.Errorf("failed to update asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return asset.ErrAssetNotFound
	}
	return nil
}

// Delete implements asset.AssetRepository.
func (r *assetRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return asset.ErrAssetNotFound
	}
	return nil
}

// List implements asset.AssetRepository.
func (r *assetRepositoryImpl) List(ctx context.Context, filter asset.AssetFilter) ([]asset.Asset, int64, error) {
	q := GetQuerier(ctx, r.db)

	var w whereBuilder
	if nonEmpty(filter.Search) {
		w.add("(a.name ILIKE ? OR a.serial_number ILIKE ?)", containing(*filter.Search))
	}
	if nonEmpty(filter.Category) {
		w.add("a.category ILIKE ?", escapeLike(*filter.Category))
	}
	if nonEmpty(filter.Status) {
		w.add("a.status = ?", *filter.Status)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM assets a WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count assets: %w", err)
	}

	query := `SELECT ` + assetColumns + assetFrom + ` WHERE ` + w.String() +
		` ORDER BY a.name ASC ` + w.page(filter.Page, filter.Limit)
	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var out []asset.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan asset: %w", err)
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

// SetStatus implements asset.AssetRepository.
func (r *assetRepositoryImpl) SetStatus(ctx context.Context, id string, from, to asset.Status) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE assets SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update asset status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return asset.ErrAssetNotAvailable
	}
	return nil
}

const assignmentColumns = `
	g.id, g.asset_id, g.user_id, g.assigned_by, g.issue_date, g.expected_return_date, g.return_date,
	g.status, g.condition, g.notes, g.created_at, g.updated_at, a.name, u.full_name`

const assignmentFrom = `
	FROM asset_assignments g
	JOIN assets a ON a.id = g.asset_id
	JOIN users u ON u.id = g.user_id`

type assignmentRepositoryImpl struct {
	db *database.DB
}

func NewAssignmentRepository(db *database.DB) asset.AssignmentRepository {
	return &assignmentRepositoryImpl{db: db}
}

func scanAssignment(row pgx.Row) (asset.Assignment, error) {
	var g asset.Assignment
	err := row.Scan(
		&g.ID, &g.AssetID, &g.UserID, &g.AssignedBy, &g.IssueDate, &g.ExpectedReturnDate, &g.ReturnDate,
		&g.Status, &g.Condition, &g.Notes, &g.CreatedAt, &g.UpdatedAt, &g.AssetName, &g.UserName,
	)
	return g, err
}

// Create implements asset.AssignmentRepository.
func (r *assignmentRepositoryImpl) Create(ctx context.Context, g asset.Assignment) (asset.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return asset.Assignment{}, err
	}

	query := `
		INSERT INTO asset_assignments (id, asset_id, user_id, assigned_by, issue_date, expected_return_date, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err = q.QueryRow(ctx, query,
		id, g.AssetID, g.UserID, g.AssignedBy, g.IssueDate, g.ExpectedReturnDate, g.Status, g.Notes,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "asset_assignments_one_active_idx") {
			return asset.Assignment{}, asset.ErrAssetNotAvailable
		}
		return asset.Assignment{}, fmt.Errorf("failed to insert assignment: %w", err)
	}
	return g, nil
}

// GetByID implements asset.AssignmentRepository.
func (r *assignmentRepositoryImpl) GetByID(ctx context.Context, id string) (asset.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	g, err := scanAssignment(q.QueryRow(ctx, `SELECT `+assignmentColumns+assignmentFrom+` WHERE g.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return asset.Assignment{}, asset.ErrAssignmentNotFound
		}
		return asset.Assignment{}, err
	}
	return g, nil
}

// GetActiveByAsset implements asset.AssignmentRepository.
func (r *assignmentRepositoryImpl) GetActiveByAsset(ctx context.Context, assetID string) (*asset.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + assignmentColumns + assignmentFrom + ` WHERE g.asset_id = $1 AND g.status = $2`
	g, err := scanAssignment(q.QueryRow(ctx, query, assetID, asset.AssignmentActive))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

// MarkReturned implements asset.AssignmentRepository.
func (r *assignmentRepositoryImpl) MarkReturned(ctx context.Context, g asset.Assignment) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE asset_assignments
		SET status = $1, return_date = $2, condition = $3, notes = $4, updated_at = NOW()
		WHERE id = $5 AND status = $6
	`
	tag, err := q.Exec(ctx, query, asset.AssignmentReturned, g.ReturnDate, g.Condition, g.Notes, g.ID, asset.AssignmentActive)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return asset.ErrAssignmentNotActive
	}
	return nil
}

// List implements asset.AssignmentRepository.
func (r *assignmentRepositoryImpl) List(ctx context.Context, filter asset.AssignmentFilter) ([]asset.Assignment, int64, error) {
	q := GetQuerier(ctx, r.db)

	var w whereBuilder
	if nonEmpty(filter.AssetID) {
		w.add("g.asset_id = ?", *filter.AssetID)
	}
	if nonEmpty(filter.UserID) {
		w.add("g.user_id = ?", *filter.UserID)
	}
	if nonEmpty(filter.Status) {
		w.add("g.status = ?", *filter.Status)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM asset_assignments g WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count assignments: %w", err)
	}

	query := `SELECT ` + assignmentColumns + assignmentFrom + ` WHERE ` + w.String() +
		` ORDER BY g.issue_date DESC, g.created_at DESC ` + w.page(filter.Page, filter.Limit)
	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query assignments: %w", err)
	}
	defer rows.Close()

	var out []asset.Assignment
	for rows.Next() {
		g, err := scanAssignment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan assignment: %w", err)
		}
		out = append(out, g)
	}
	return out, total, rows.Err()
}

const assetRequestColumns = `
	ar.id, ar.user_id, ar.category, ar.reason, ar.urgency, ar.status, ar.approved_by, ar.assigned_asset_id,
	ar.rejection_reason, ar.decided_at, ar.created_at, ar.updated_at, u.full_name`

type assetRequestRepositoryImpl struct {
	db *database.DB
}

func NewAssetRequestRepository(db *database.DB) asset.RequestRepository {
	return &assetRequestRepositoryImpl{db: db}
}

func scanAssetRequest(row pgx.Row) (asset.Request, error) {
	var ar asset.Request
	err := row.Scan(
		&ar.ID, &ar.UserID, &ar.Category, &ar.Reason, &ar.Urgency, &ar.Status, &ar.ApprovedBy, &ar.AssignedAssetID,
		&ar.RejectionReason, &ar.DecidedAt, &ar.CreatedAt, &ar.UpdatedAt, &ar.UserName,
	)
	return ar, err
}

// Create implements asset.RequestRepository.
func (r *assetRequestRepositoryImpl) Create(ctx context.Context, ar asset.Request) (asset.Request, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return asset.Request{}, err
	}

	query := `
		INSERT INTO asset_requests (id, user_id, category, reason, urgency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err = q.QueryRow(ctx, query, id, ar.UserID, ar.Category, ar.Reason, ar.Urgency, ar.Status).
		Scan(&ar.ID, &ar.CreatedAt, &ar.UpdatedAt)
	if err != nil {
		return asset.Request{}, fmt.Errorf("failed to insert asset request: %w", err)
	}
	return ar, nil
}

// GetByID implements asset.RequestRepository.
func (r *assetRequestRepositoryImpl) GetByID(ctx context.Context, id string) (asset.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + assetRequestColumns + ` FROM asset_requests ar JOIN users u ON u.id = ar.user_id WHERE ar.id = $1`
	ar, err := scanAssetRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return asset.Request{}, asset.ErrRequestNotFound
		}
		return asset.Request{}, err
	}
	return ar, nil
}

// UpdateDecision implements asset.RequestRepository.
func (r *assetRequestRepositoryImpl) UpdateDecision(ctx context.Context, ar asset.Request, from asset.RequestStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE asset_requests
		SET status = $1, approved_by = $2, assigned_asset_id = $3, rejection_reason = $4, decided_at = $5, updated_at = NOW()
		WHERE id = $6 AND status = $7
	`
	tag, err := q.Exec(ctx, query, ar.Status, ar.ApprovedBy, ar.AssignedAssetID, ar.RejectionReason, ar.DecidedAt, ar.ID, from)
	if err != nil {
		return fmt.Errorf("failed to update asset request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return asset.ErrRequestNotPending
	}
	return nil
}

// List implements asset.RequestRepository.
func (r *assetRequestRepositoryImpl) List(ctx context.Context, filter asset.RequestFilter) ([]asset.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	var w whereBuilder
	if nonEmpty(filter.UserID) {
		w.add("ar.user_id = ?", *filter.UserID)
	}
	if nonEmpty(filter.Status) {
		w.add("ar.status = ?", *filter.Status)
	}
	if nonEmpty(filter.Urgency) {
		w.add("ar.urgency = ?", *filter.Urgency)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM asset_requests ar WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count asset requests: %w", err)
	}

	query := `SELECT ` + assetRequestColumns + ` FROM asset_requests ar JOIN users u ON u.id = ar.user_id WHERE ` + w.String() +
		` ORDER BY ar.created_at DESC ` + w.page(filter.Page, filter.Limit)
	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query asset requests: %w", err)
	}
	defer rows.Close()

	var out []asset.Request
	for rows.Next() {
		ar, err := scanAssetRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan asset request: %w", err)
		}
		out = append(out, ar)
	}
	return out, total, rows.Err()
}
