package cart

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Line is one medicine in a customer's cart. Name, price and pharmacy are
// snapshotted from the catalog at add time; later catalog edits do not touch
// existing lines. Position preserves insertion order.
type Line struct {
	ID              uuid.UUID `json:"id"`
	CustomerID      uuid.UUID `json:"customer_id"`
	MedicineID      uuid.UUID `json:"medicine_id"`
	MedicineName    string    `json:"medicine_name"`
	UnitPriceCents  int64     `json:"unit_price_cents"`
	Quantity        int       `json:"quantity"`
	PharmacyID      uuid.UUID `json:"pharmacy_id"`
	PharmacyName    string    `json:"pharmacy_name"`
	RequiresLicense bool      `json:"requires_license"`
	Approved        bool      `json:"approved"`
	Position        int64     `json:"position"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SubtotalCents returns the line subtotal in cents.
func (l *Line) SubtotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}

// CatalogItem is the snapshot of a medicine used to build a cart line.
type CatalogItem struct {
	MedicineID      uuid.UUID `json:"medicine_id"`
	Name            string    `json:"name"`
	UnitPriceCents  int64     `json:"unit_price_cents"`
	PharmacyID      uuid.UUID `json:"pharmacy_id"`
	PharmacyName    string    `json:"pharmacy_name"`
	RequiresLicense bool      `json:"requires_license"`
}

// Catalog resolves medicine snapshots at cart-add time.
type Catalog interface {
	Lookup(ctx context.Context, medicineID uuid.UUID) (*CatalogItem, error)
}
