package order

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

const orderCols = `id, customer_id, customer_name, customer_email, customer_phone,
	pharmacy_id, pharmacy_name, total_cents, status, created_at, updated_at`

const orderLineCols = `id, order_id, medicine_id, medicine_name, quantity, unit_price_cents`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &o.CustomerEmail,
		&o.CustomerPhone, &o.PharmacyID, &o.PharmacyName, &o.TotalCents,
		&o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func scanOrderLine(row pgx.Row) (*Line, error) {
	var l Line
	err := row.Scan(&l.ID, &l.OrderID, &l.MedicineID, &l.MedicineName,
		&l.Quantity, &l.UnitPriceCents)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts the order and its lines and removes the cart lines they came
// from. All three steps share one transaction so a failed group leaves the
// cart untouched.
func (r *repoPG) Create(ctx context.Context, o *Order, cartLineIDs []uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		c := r.conn(ctx)
		_, err := c.Exec(ctx, `
			INSERT INTO orders (id, customer_id, customer_name, customer_email,
				customer_phone, pharmacy_id, pharmacy_name, total_cents, status)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
			o.ID, o.CustomerID, o.CustomerName, o.CustomerEmail,
			o.CustomerPhone, o.PharmacyID, o.PharmacyName, o.TotalCents, o.Status)
		if err != nil {
			return err
		}
		for _, l := range o.Lines {
			_, err = c.Exec(ctx, `
				INSERT INTO order_line (id, order_id, medicine_id, medicine_name,
					quantity, unit_price_cents)
				VALUES ($1,$2,$3,$4,$5,$6)`,
				l.ID, l.OrderID, l.MedicineID, l.MedicineName,
				l.Quantity, l.UnitPriceCents)
			if err != nil {
				return err
			}
		}
		_, err = c.Exec(ctx,
			`DELETE FROM cart_line WHERE id = ANY($1)`, cartLineIDs)
		return err
	})
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(r.conn(ctx).QueryRow(ctx,
		`SELECT `+orderCols+` FROM orders WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.Lines, err = r.linesFor(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repoPG) linesFor(ctx context.Context, orderID uuid.UUID) ([]*Line, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+orderLineCols+` FROM order_line WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []*Line{}
	for rows.Next() {
		l, err := scanOrderLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repoPG) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Order, int, error) {
	return r.list(ctx, "customer_id", customerID, limit, offset)
}

func (r *repoPG) ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*Order, int, error) {
	return r.list(ctx, "pharmacy_id", pharmacyID, limit, offset)
}

func (r *repoPG) list(ctx context.Context, column string, id uuid.UUID, limit, offset int) ([]*Order, int, error) {
	c := r.conn(ctx)

	var total int
	err := c.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE `+column+` = $1`, id).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := c.Query(ctx, `
		SELECT `+orderCols+` FROM orders
		WHERE `+column+` = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := []*Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, o := range orders {
		if o.Lines, err = r.linesFor(ctx, o.ID); err != nil {
			return nil, 0, err
		}
	}
	return orders, total, nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE orders SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
