package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/office-portal-go/internal/domain/supply"
	"github.com/cmlabs-hris/office-portal-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const supplyColumns = `id, name, category, unit, quantity, minimum_stock, proof_of_purchase, notes, created_at, updated_at`

type supplyRepositoryImpl struct {
	db *database.DB
}

func NewSupplyRepository(db *database.DB) supply.SupplyRepository {
	return &supplyRepositoryImpl{db: db}
}

func scanSupply(row pgx.Row) (supply.Supply, error) {
	var s supply.Supply
	err := row.Scan(&s.ID, &s.Name, &s.Category, &s.Unit, &s.Quantity, &s.MinimumStock, &s.ProofOfPurchase, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// Create implements supply.SupplyRepository.
func (r *supplyRepositoryImpl) Create(ctx context.Context, s supply.Supply) (supply.Supply, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return supply.Supply{}, err
	}

	query := `
		INSERT INTO supplies (id, name, category, unit, quantity, minimum_stock, proof_of_purchase, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + supplyColumns
	created, err := scanSupply(q.QueryRow(ctx, query,
		id, s.Name, s.Category, s.Unit, s.Quantity, s.MinimumStock, s.ProofOfPurchase, s.Notes,
	))
	if err != nil {
		if isUniqueViolation(err, "supplies_name_key") {
			return supply.Supply{}, supply.ErrSupplyNameExists
		}
		return supply.Supply{}, fmt.Errorf("failed to insert supply: %w", err)
	}
	return created, nil
}

// GetByID implements supply.SupplyRepository.
func (r *supplyRepositoryImpl) GetByID(ctx context.Context, id string) (supply.Supply, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanSupply(q.QueryRow(ctx, `SELECT `+supplyColumns+` FROM supplies WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return supply.Supply{}, supply.ErrSupplyNotFound
		}
		return supply.Supply{}, err
	}
	return s, nil
}

// Update implements supply.SupplyRepository.
func (r *supplyRepositoryImpl) Update(ctx context.Context, s supply.Supply) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE supplies
		SET name = $1, category = $2, unit = $3, quantity = $4, minimum_stock = $5,
			proof_of_purchase = $6, notes = $7, updated_at = NOW()
		WHERE id = $8
	`
	tag, err := q.Exec(ctx, query, s.Name, s.Category, s.Unit, s.Quantity, s.MinimumStock, s.ProofOfPurchase, s.Notes, s.ID)
	if err != nil {
		if isUniqueViolation(err, "supplies_name_key") {
			return supply.ErrSupplyNameExists
		}
		return fmt.Errorf("failed to update supply: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return supply.ErrSupplyNotFound
	}
	return nil
}

// Delete implements supply.SupplyRepository.
func (r *supplyRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM supplies s
		WHERE s.id = $1 AND NOT EXISTS (
			SELECT 1 FROM supply_requests sr
			WHERE sr.supply_id = s.id AND sr.status IN ($2, $3)
		)
	`
	tag, err := q.Exec(ctx, query, id, supply.RequestPending, supply.RequestApproved)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return supply.ErrSupplyInUse
}

// List implements supply.SupplyRepository.
func (r *supplyRepositoryImpl) List(ctx context.Context, filter supply.SupplyFilter) ([]supply.Supply, int64, error) {
	q := GetQuerier(ctx, r.db)

	var w whereBuilder
	if nonEmpty(filter.Search) {
		w.add("name ILIKE ?", containing(*filter.Search))
	}
	if nonEmpty(filter.Category) {
		w.add("category ILIKE ?", escapeLike(*filter.Category))
	}
	if filter.LowStock {
		w.raw("quantity <= minimum_stock")
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM supplies WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count supplies: %w", err)
	}

	query := `SELECT ` + supplyColumns + ` FROM supplies WHERE ` + w.String() + ` ORDER BY name ASC ` + w.page(filter.Page, filter.Limit)
	supplies, err := r.query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return supplies, total, nil
}

// ListLowStock implements supply.SupplyRepository.
func (r *supplyRepositoryImpl) ListLowStock(ctx context.Context) ([]supply.Supply, error) {
	return r.query(ctx, `SELECT `+supplyColumns+` FROM supplies WHERE quantity <= minimum_stock ORDER BY quantity - minimum_stock, name`)
}

// Decrement implements supply.SupplyRepository.
func (r *supplyRepositoryImpl) Decrement(ctx context.Context, id string, qty int) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE supplies
		SET quantity = quantity - $2, updated_at = NOW()
		WHERE id = $1 AND quantity >= $2
		RETURNING quantity
	`
	var remaining int
	if err := q.QueryRow(ctx, query, id, qty).Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return 0, getErr
			}
			return 0, supply.ErrInsufficientStock
		}
		return 0, fmt.Errorf("failed to decrement stock: %w", err)
	}
	return remaining, nil
}

func (r *supplyRepositoryImpl) query(ctx context.Context, query string, args ...interface{}) ([]supply.Supply, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query supplies: %w", err)
	}
	defer rows.Close()

	var out []supply.Supply
	for rows.Next() {
		s, err := scanSupply(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan supply: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

const supplyRequestColumns = `
	sr.id, sr.user_id, sr.supply_id, sr.quantity, sr.reason, sr.urgency, sr.status, sr.approved_by,
	sr.rejection_reason, sr.decided_at, sr.fulfilled_at, sr.created_at, sr.updated_at,
	u.full_name, s.name, s.unit`

const supplyRequestFrom = `
	FROM supply_requests sr
	JOIN users u ON u.id = sr.user_id
	JOIN supplies s ON s.id = sr.supply_id`

type supplyRequestRepositoryImpl struct {
	db *database.DB
}

func NewSupplyRequestRepository(db *database.DB) supply.RequestRepository {
	return &supplyRequestRepositoryImpl{db: db}
}

func scanSupplyRequest(row pgx.Row) (supply.Request, error) {
	var sr supply.Request
	err := row.Scan(
		&sr.ID, &sr.UserID, &sr.SupplyID, &sr.Quantity, &sr.Reason, &sr.Urgency, &sr.Status, &sr.ApprovedBy,
		&sr.RejectionReason, &sr.DecidedAt, &sr.FulfilledAt, &sr.CreatedAt, &sr.UpdatedAt,
		&sr.UserName, &sr.SupplyName, &sr.Unit,
	)
	return sr, err
}

// Create implements supply.RequestRepository.
func (r *supplyRequestRepositoryImpl) Create(ctx context.Context, sr supply.Request) (supply.Request, error) {
	q := GetQuerier(ctx, r.db)

	id, err := newID()
	if err != nil {
		return supply.Request{}, err
	}

	query := `
		INSERT INTO supply_requests (id, user_id, supply_id, quantity, reason, urgency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err = q.QueryRow(ctx, query, id, sr.UserID, sr.SupplyID, sr.Quantity, sr.Reason, sr.Urgency, sr.Status).
		Scan(&sr.ID, &sr.CreatedAt, &sr.UpdatedAt)
	if err != nil {
		if isConstraintViolation(err, pgForeignKeyViolation, "") {
			return supply.Request{}, supply.ErrSupplyNotFound
		}
		return supply.Request{}, fmt.Errorf("failed to insert supply request: %w", err)
	}
	return sr, nil
}

// GetByID implements supply.RequestRepository.
func (r *supplyRequestRepositoryImpl) GetByID(ctx context.Context, id string) (supply.Request, error) {
	q := GetQuerier(ctx, r.db)

	sr, err := scanSupplyRequest(q.QueryRow(ctx, `SELECT `+supplyRequestColumns+supplyRequestFrom+` WHERE sr.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return supply.Request{}, supply.ErrRequestNotFound
		}
		return supply.Request{}, err
	}
	return sr, nil
}

// UpdateDecision implements supply.RequestRepository.
func (r *supplyRequestRepositoryImpl) UpdateDecision(ctx context.Context, sr supply.Request, from supply.RequestStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE supply_requests
		SET status = $1, approved_by = $2, rejection_reason = $3, decided_at = $4, fulfilled_at = $5, updated_at = NOW()
		WHERE id = $6 AND status = $7
	`
	tag, err := q.Exec(ctx, query, sr.Status, sr.ApprovedBy, sr.RejectionReason, sr.DecidedAt, sr.FulfilledAt, sr.ID, from)
	if err != nil {
		return fmt.Errorf("failed to update supply request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return supply.ErrRequestNotPending
	}
	return nil
}

// List implements supply.RequestRepository.
func (r *supplyRequestRepositoryImpl) List(ctx context.Context, filter supply.RequestFilter) ([]supply.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	var w whereBuilder
	if nonEmpty(filter.UserID) {
		w.add("sr.user_id = ?", *filter.UserID)
	}
	if nonEmpty(filter.SupplyID) {
		w.add("sr.supply_id = ?", *filter.SupplyID)
	}
	if nonEmpty(filter.Status) {
		w.add("sr.status = ?", *filter.Status)
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM supply_requests sr WHERE `+w.String(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count supply requests: %w", err)
	}

	query := `SELECT ` + supplyRequestColumns + supplyRequestFrom + ` WHERE ` + w.String() +
		` ORDER BY sr.created_at DESC ` + w.page(filter.Page, filter.Limit)
	rows, err := q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query supply requests: %w", err)
	}
	defer rows.Close()

	var out []supply.Request
	for rows.Next() {
		sr, err := scanSupplyRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan supply request: %w", err)
		}
		out = append(out, sr)
	}
	return out, total, rows.Err()
}
