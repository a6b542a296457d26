package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

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

// =========== Pharmacy Repository ===========

type pharmacyRepoPG struct{ pool *pgxpool.Pool }

func NewPharmacyRepoPG(pool *pgxpool.Pool) PharmacyRepository {
	return &pharmacyRepoPG{pool: pool}
}

func (r *pharmacyRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const pharmacyCols = `id, name, email, phone, address, license_number, status, created_at, updated_at`

func scanPharmacy(row pgx.Row) (*Pharmacy, error) {
	var p Pharmacy
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Address,
		&p.LicenseNumber, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pharmacyRepoPG) Create(ctx context.Context, p *Pharmacy) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pharmacy (id, name, email, phone, address, license_number, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.Name, p.Email, p.Phone, p.Address, p.LicenseNumber, p.Status)
	return err
}

func (r *pharmacyRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error) {
	return scanPharmacy(r.conn(ctx).QueryRow(ctx,
		`SELECT `+pharmacyCols+` FROM pharmacy WHERE id = $1`, id))
}

func (r *pharmacyRepoPG) Update(ctx context.Context, p *Pharmacy) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE pharmacy SET name=$2, email=$3, phone=$4, address=$5,
			license_number=$6, status=$7, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Email, p.Phone, p.Address, p.LicenseNumber, p.Status)
	return err
}

func (r *pharmacyRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM pharmacy WHERE id = $1`, id)
	return err
}

func (r *pharmacyRepoPG) List(ctx context.Context, limit, offset int) ([]*Pharmacy, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM pharmacy`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+pharmacyCols+` FROM pharmacy ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Pharmacy
	for rows.Next() {
		p, err := scanPharmacy(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

// =========== Medicine Repository ===========

type medicineRepoPG struct{ pool *pgxpool.Pool }

func NewMedicineRepoPG(pool *pgxpool.Pool) MedicineRepository {
	return &medicineRepoPG{pool: pool}
}

func (r *medicineRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const medicineCols = `m.id, m.pharmacy_id, p.name, m.name, m.generic_name, m.category,
	m.unit_price_cents, m.stock, m.requires_license, m.description, m.created_at, m.updated_at`

func scanMedicine(row pgx.Row) (*Medicine, error) {
	var m Medicine
	err := row.Scan(&m.ID, &m.PharmacyID, &m.PharmacyName, &m.Name, &m.GenericName,
		&m.Category, &m.UnitPriceCents, &m.Stock, &m.RequiresLicense,
		&m.Description, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *medicineRepoPG) Create(ctx context.Context, m *Medicine) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medicine (id, pharmacy_id, name, generic_name, category,
			unit_price_cents, stock, requires_license, description)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		m.ID, m.PharmacyID, m.Name, m.GenericName, m.Category,
		m.UnitPriceCents, m.Stock, m.RequiresLicense, m.Description)
	return err
}

func (r *medicineRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return scanMedicine(r.conn(ctx).QueryRow(ctx, `
		SELECT `+medicineCols+`
		FROM medicine m JOIN pharmacy p ON p.id = m.pharmacy_id
		WHERE m.id = $1`, id))
}

func (r *medicineRepoPG) Update(ctx context.Context, m *Medicine) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medicine SET name=$2, generic_name=$3, category=$4,
			unit_price_cents=$5, stock=$6, requires_license=$7, description=$8,
			updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.Name, m.GenericName, m.Category,
		m.UnitPriceCents, m.Stock, m.RequiresLicense, m.Description)
	return err
}

func (r *medicineRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM medicine WHERE id = $1`, id)
	return err
}

func (r *medicineRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Medicine, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}

	addArg := func(clause string, val interface{}) {
		args = append(args, val)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if name := params["name"]; name != "" {
		addArg("m.name ILIKE '%%' || $%d || '%%'", name)
	}
	if category := params["category"]; category != "" {
		addArg("m.category = $%d", category)
	}
	if pharmacyID := params["pharmacy_id"]; pharmacyID != "" {
		addArg("m.pharmacy_id = $%d", pharmacyID)
	}
	if rl := params["requires_license"]; rl != "" {
		v, err := strconv.ParseBool(rl)
		if err == nil {
			addArg("m.requires_license = $%d", v)
		}
	}

	cond := strings.Join(where, " AND ")
	base := ` FROM medicine m JOIN pharmacy p ON p.id = m.pharmacy_id WHERE ` + cond

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*)`+base, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataArgs := append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+medicineCols+base+
			fmt.Sprintf(` ORDER BY m.name LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2),
		dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}
