package license

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists license requests.
type Repository interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)

	// GetPending returns the pending request for (customer, medicine) or
	// ErrNotFound.
	GetPending(ctx context.Context, customerID, medicineID uuid.UUID) (*Request, error)

	Update(ctx context.Context, r *Request) error

	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Request, int, error)
	ListPendingByPharmacy(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*Request, int, error)
}
