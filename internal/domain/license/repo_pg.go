package license

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

const requestCols = `id, customer_id, medicine_id, pharmacy_id, quantity, status,
	reason, submitted_at, resolved_at`

func scanRequest(row pgx.Row) (*Request, error) {
	var req Request
	err := row.Scan(&req.ID, &req.CustomerID, &req.MedicineID, &req.PharmacyID,
		&req.Quantity, &req.Status, &req.Reason, &req.SubmittedAt, &req.ResolvedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repoPG) Create(ctx context.Context, req *Request) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO license_request (id, customer_id, medicine_id, pharmacy_id,
			quantity, status, reason, submitted_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		req.ID, req.CustomerID, req.MedicineID, req.PharmacyID,
		req.Quantity, req.Status, req.Reason, req.SubmittedAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	req, err := scanRequest(r.conn(ctx).QueryRow(ctx,
		`SELECT `+requestCols+` FROM license_request WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return req, err
}

func (r *repoPG) GetPending(ctx context.Context, customerID, medicineID uuid.UUID) (*Request, error) {
	req, err := scanRequest(r.conn(ctx).QueryRow(ctx, `
		SELECT `+requestCols+` FROM license_request
		WHERE customer_id = $1 AND medicine_id = $2 AND status = 'pending'`,
		customerID, medicineID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return req, err
}

func (r *repoPG) Update(ctx context.Context, req *Request) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE license_request
		SET status = $2, reason = $3, resolved_at = $4
		WHERE id = $1`,
		req.ID, req.Status, req.Reason, req.ResolvedAt)
	return err
}

func (r *repoPG) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Request, int, error) {
	return r.list(ctx,
		`customer_id = $1`, customerID, limit, offset)
}

func (r *repoPG) ListPendingByPharmacy(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*Request, int, error) {
	return r.list(ctx,
		`pharmacy_id = $1 AND status = 'pending'`, pharmacyID, limit, offset)
}

func (r *repoPG) list(ctx context.Context, where string, id uuid.UUID, limit, offset int) ([]*Request, int, error) {
	c := r.conn(ctx)

	var total int
	err := c.QueryRow(ctx,
		`SELECT COUNT(*) FROM license_request WHERE `+where, id).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := c.Query(ctx, `
		SELECT `+requestCols+` FROM license_request
		WHERE `+where+`
		ORDER BY submitted_at DESC
		LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	requests := []*Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, req)
	}
	return requests, total, rows.Err()
}
