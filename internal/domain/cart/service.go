package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rxcart/rxcart/internal/platform/keylock"
)

// Service implements cart operations. All mutations for one customer are
// serialized through the lock registry, which checkout shares.
type Service struct {
	repo    Repository
	catalog Catalog
	locks   *keylock.Registry
}

func NewService(repo Repository, catalog Catalog, locks *keylock.Registry) *Service {
	return &Service{repo: repo, catalog: catalog, locks: locks}
}

// AddLine adds a medicine to the customer's cart. Adding a medicine that is
// already present increments its quantity and keeps the original snapshot and
// position.
func (s *Service) AddLine(ctx context.Context, customerID, medicineID uuid.UUID, quantity int) (*Line, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	s.locks.Lock(customerID.String())
	defer s.locks.Unlock(customerID.String())

	existing, err := s.repo.GetByMedicine(ctx, customerID, medicineID)
	if err == nil {
		existing.Quantity += quantity
		if err := s.repo.UpdateQuantity(ctx, existing.ID, existing.Quantity); err != nil {
			return nil, fmt.Errorf("update quantity: %w", err)
		}
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	item, err := s.catalog.Lookup(ctx, medicineID)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}

	line := &Line{
		CustomerID:      customerID,
		MedicineID:      item.MedicineID,
		MedicineName:    item.Name,
		UnitPriceCents:  item.UnitPriceCents,
		Quantity:        quantity,
		PharmacyID:      item.PharmacyID,
		PharmacyName:    item.PharmacyName,
		RequiresLicense: item.RequiresLicense,
	}
	if err := s.repo.Insert(ctx, line); err != nil {
		return nil, fmt.Errorf("insert cart line: %w", err)
	}
	return line, nil
}

// RemoveLine deletes a medicine from the cart. Removing an absent medicine is
// a no-op.
func (s *Service) RemoveLine(ctx context.Context, customerID, medicineID uuid.UUID) error {
	s.locks.Lock(customerID.String())
	defer s.locks.Unlock(customerID.String())

	return s.repo.DeleteByMedicine(ctx, customerID, medicineID)
}

// Get returns the customer's cart lines in insertion order. A customer with
// no cart gets an empty slice.
func (s *Service) Get(ctx context.Context, customerID uuid.UUID) ([]*Line, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// Clear removes only the named medicines from the cart.
func (s *Service) Clear(ctx context.Context, customerID uuid.UUID, medicineIDs []uuid.UUID) error {
	s.locks.Lock(customerID.String())
	defer s.locks.Unlock(customerID.String())

	return s.repo.DeleteByMedicines(ctx, customerID, medicineIDs)
}

// Approve marks the customer's line for a medicine as license-approved.
// Returns ErrNotFound when the medicine is not in the cart.
func (s *Service) Approve(ctx context.Context, customerID, medicineID uuid.UUID) error {
	s.locks.Lock(customerID.String())
	defer s.locks.Unlock(customerID.String())

	return s.repo.SetApproved(ctx, customerID, medicineID)
}

// AddApproved inserts a pre-approved line for a medicine that is not in the
// cart yet. Used by the license workflow when an approval arrives for a
// medicine the customer removed in the meantime. If the line exists after
// all, it is approved instead and its quantity is left alone.
func (s *Service) AddApproved(ctx context.Context, customerID, medicineID uuid.UUID, quantity int) (*Line, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	s.locks.Lock(customerID.String())
	defer s.locks.Unlock(customerID.String())

	existing, err := s.repo.GetByMedicine(ctx, customerID, medicineID)
	if err == nil {
		if !existing.Approved {
			if err := s.repo.SetApproved(ctx, customerID, medicineID); err != nil {
				return nil, err
			}
			existing.Approved = true
		}
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	item, err := s.catalog.Lookup(ctx, medicineID)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}

	line := &Line{
		CustomerID:      customerID,
		MedicineID:      item.MedicineID,
		MedicineName:    item.Name,
		UnitPriceCents:  item.UnitPriceCents,
		Quantity:        quantity,
		PharmacyID:      item.PharmacyID,
		PharmacyName:    item.PharmacyName,
		RequiresLicense: item.RequiresLicense,
		Approved:        true,
	}
	if err := s.repo.Insert(ctx, line); err != nil {
		return nil, fmt.Errorf("insert cart line: %w", err)
	}
	return line, nil
}
