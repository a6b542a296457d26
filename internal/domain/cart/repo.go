package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores cart lines. GetByMedicine returns ErrNotFound when the
// customer has no line for the medicine.
type Repository interface {
	Insert(ctx context.Context, l *Line) error
	GetByMedicine(ctx context.Context, customerID, medicineID uuid.UUID) (*Line, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	SetApproved(ctx context.Context, customerID, medicineID uuid.UUID) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Line, error)
	DeleteByMedicine(ctx context.Context, customerID, medicineID uuid.UUID) error
	DeleteByMedicines(ctx context.Context, customerID uuid.UUID, medicineIDs []uuid.UUID) error
}
