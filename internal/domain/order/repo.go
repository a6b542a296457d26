package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists orders.
type Repository interface {
	// Create inserts the order with its lines and deletes the originating
	// cart lines in one transaction.
	Create(ctx context.Context, o *Order, cartLineIDs []uuid.UUID) error

	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Order, int, error)
	ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*Order, int, error)

	// UpdateStatus applies a compare-and-set transition and reports whether
	// a row was updated.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)
}
