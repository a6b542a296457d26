package license

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rxcart/rxcart/internal/domain/cart"
	"github.com/rxcart/rxcart/internal/platform/notification"
)

// Cart is the slice of the cart service the approval gate drives.
type Cart interface {
	Approve(ctx context.Context, customerID, medicineID uuid.UUID) error
	AddApproved(ctx context.Context, customerID, medicineID uuid.UUID, quantity int) (*cart.Line, error)
}

// Notifier sends templated customer notifications.
type Notifier interface {
	SendFromTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*notification.Notification, error)
}

// Service implements the license approval workflow for regulated medicines.
type Service struct {
	repo     Repository
	cart     Cart
	notifier Notifier
	logger   zerolog.Logger
}

func NewService(repo Repository, c Cart, notifier Notifier, logger zerolog.Logger) *Service {
	return &Service{repo: repo, cart: c, notifier: notifier, logger: logger}
}

// Submit opens a pending request. A customer can have at most one pending
// request per medicine.
func (s *Service) Submit(ctx context.Context, customerID, medicineID, pharmacyID uuid.UUID, quantity int) (*Request, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	_, err := s.repo.GetPending(ctx, customerID, medicineID)
	if err == nil {
		return nil, ErrDuplicateRequest
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	req := &Request{
		ID:          uuid.New(),
		CustomerID:  customerID,
		MedicineID:  medicineID,
		PharmacyID:  pharmacyID,
		Quantity:    quantity,
		Status:      StatusPending,
		SubmittedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Resolve decides a pending request. Approval marks the matching cart line
// approved; if the customer removed the line in the meantime, the medicine is
// added back to the cart already approved, with the requested quantity.
func (s *Service) Resolve(ctx context.Context, requestID uuid.UUID, decision, reason string) (*Request, error) {
	if decision != StatusApproved && decision != StatusRejected {
		return nil, fmt.Errorf("decision must be %s or %s", StatusApproved, StatusRejected)
	}

	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusPending {
		return nil, ErrAlreadyResolved
	}

	// Cart effect before persisting the resolution: if the cart update fails
	// the request stays pending and the decision can be retried.
	if decision == StatusApproved {
		if err := s.applyToCart(ctx, req); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	req.Status = decision
	req.Reason = reason
	req.ResolvedAt = &now
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}

	s.notifyDecision(ctx, req)
	return req, nil
}

func (s *Service) applyToCart(ctx context.Context, req *Request) error {
	err := s.cart.Approve(ctx, req.CustomerID, req.MedicineID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, cart.ErrNotFound) {
		return err
	}
	// The line is gone from the cart; re-add it pre-approved.
	_, err = s.cart.AddApproved(ctx, req.CustomerID, req.MedicineID, req.Quantity)
	return err
}

func (s *Service) notifyDecision(ctx context.Context, req *Request) {
	if s.notifier == nil {
		return
	}
	template := "license-approved"
	data := map[string]string{"request_id": req.ID.String()}
	if req.Status == StatusRejected {
		template = "license-rejected"
		data["reason"] = req.Reason
	}
	if _, err := s.notifier.SendFromTemplate(ctx, template, data, req.CustomerID.String()); err != nil {
		s.logger.Warn().Err(err).Str("request_id", req.ID.String()).
			Msg("license decision notification failed")
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Request, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Request, int, error) {
	return s.repo.ListByCustomer(ctx, customerID, limit, offset)
}

func (s *Service) ListPendingByPharmacy(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*Request, int, error) {
	return s.repo.ListPendingByPharmacy(ctx, pharmacyID, limit, offset)
}
