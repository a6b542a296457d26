package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rxcart/rxcart/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const lineCols = `id, customer_id, medicine_id, medicine_name, unit_price_cents,
	quantity, pharmacy_id, pharmacy_name, requires_license, approved, position,
	created_at, updated_at`

func scanLine(row pgx.Row) (*Line, error) {
	var l Line
	err := row.Scan(&l.ID, &l.CustomerID, &l.MedicineID, &l.MedicineName,
		&l.UnitPriceCents, &l.Quantity, &l.PharmacyID, &l.PharmacyName,
		&l.RequiresLicense, &l.Approved, &l.Position, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repoPG) Insert(ctx context.Context, l *Line) error {
	l.ID = uuid.New()
	// position is a bigserial; read it back so callers see insertion order.
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO cart_line (id, customer_id, medicine_id, medicine_name,
			unit_price_cents, quantity, pharmacy_id, pharmacy_name,
			requires_license, approved)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING position`,
		l.ID, l.CustomerID, l.MedicineID, l.MedicineName,
		l.UnitPriceCents, l.Quantity, l.PharmacyID, l.PharmacyName,
		l.RequiresLicense, l.Approved).Scan(&l.Position)
}

func (r *repoPG) GetByMedicine(ctx context.Context, customerID, medicineID uuid.UUID) (*Line, error) {
	l, err := scanLine(r.conn(ctx).QueryRow(ctx, `
		SELECT `+lineCols+` FROM cart_line
		WHERE customer_id = $1 AND medicine_id = $2`, customerID, medicineID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return l, err
}

func (r *repoPG) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE cart_line SET quantity = $2, updated_at = NOW() WHERE id = $1`, id, quantity)
	return err
}

func (r *repoPG) SetApproved(ctx context.Context, customerID, medicineID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE cart_line SET approved = TRUE, updated_at = NOW()
		WHERE customer_id = $1 AND medicine_id = $2`, customerID, medicineID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Line, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+lineCols+` FROM cart_line
		WHERE customer_id = $1 ORDER BY position`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []*Line{}
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repoPG) DeleteByMedicine(ctx context.Context, customerID, medicineID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM cart_line WHERE customer_id = $1 AND medicine_id = $2`,
		customerID, medicineID)
	return err
}

func (r *repoPG) DeleteByMedicines(ctx context.Context, customerID uuid.UUID, medicineIDs []uuid.UUID) error {
	if len(medicineIDs) == 0 {
		return nil
	}
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM cart_line WHERE customer_id = $1 AND medicine_id = ANY($2)`,
		customerID, medicineIDs)
	return err
}
