package license

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rxcart/rxcart/internal/domain/cart"
	"github.com/rxcart/rxcart/internal/platform/notification"
)

// -- Mocks --

type mockRepo struct {
	requests map[uuid.UUID]*Request
}

func newMockRepo() *mockRepo {
	return &mockRepo{requests: make(map[uuid.UUID]*Request)}
}

func (m *mockRepo) Create(_ context.Context, r *Request) error {
	cp := *r
	m.requests[r.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Request, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepo) GetPending(_ context.Context, customerID, medicineID uuid.UUID) (*Request, error) {
	for _, r := range m.requests {
		if r.CustomerID == customerID && r.MedicineID == medicineID && r.Status == StatusPending {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, r *Request) error {
	if _, ok := m.requests[r.ID]; !ok {
		return ErrNotFound
	}
	cp := *r
	m.requests[r.ID] = &cp
	return nil
}

func (m *mockRepo) ListByCustomer(_ context.Context, customerID uuid.UUID, limit, offset int) ([]*Request, int, error) {
	var out []*Request
	for _, r := range m.requests {
		if r.CustomerID == customerID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListPendingByPharmacy(_ context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*Request, int, error) {
	var out []*Request
	for _, r := range m.requests {
		if r.PharmacyID == pharmacyID && r.Status == StatusPending {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

type cartCall struct {
	method     string
	medicineID uuid.UUID
	quantity   int
}

type mockCart struct {
	inCart map[uuid.UUID]bool
	calls  []cartCall
	addErr error
}

func newMockCart() *mockCart {
	return &mockCart{inCart: make(map[uuid.UUID]bool)}
}

func (m *mockCart) Approve(_ context.Context, _, medicineID uuid.UUID) error {
	m.calls = append(m.calls, cartCall{method: "approve", medicineID: medicineID})
	if !m.inCart[medicineID] {
		return cart.ErrNotFound
	}
	return nil
}

func (m *mockCart) AddApproved(_ context.Context, _, medicineID uuid.UUID, quantity int) (*cart.Line, error) {
	m.calls = append(m.calls, cartCall{method: "add_approved", medicineID: medicineID, quantity: quantity})
	if m.addErr != nil {
		return nil, m.addErr
	}
	m.inCart[medicineID] = true
	return &cart.Line{MedicineID: medicineID, Quantity: quantity, Approved: true}, nil
}

type mockNotifier struct {
	sent []string
}

func (m *mockNotifier) SendFromTemplate(_ context.Context, templateID string, _ map[string]string, _ string) (*notification.Notification, error) {
	m.sent = append(m.sent, templateID)
	return &notification.Notification{}, nil
}

type fixture struct {
	svc      *Service
	repo     *mockRepo
	cart     *mockCart
	notifier *mockNotifier
}

func newFixture() *fixture {
	repo := newMockRepo()
	c := newMockCart()
	notifier := &mockNotifier{}
	return &fixture{
		svc:      NewService(repo, c, notifier, zerolog.Nop()),
		repo:     repo,
		cart:     c,
		notifier: notifier,
	}
}

// -- Submit --

func TestSubmit_CreatesPendingRequest(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	medicineID := uuid.New()

	r, err := f.svc.Submit(context.Background(), customerID, medicineID, uuid.New(), 2)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if r.Status != StatusPending {
		t.Errorf("status = %s, want pending", r.Status)
	}
	if r.Quantity != 2 {
		t.Errorf("quantity = %d", r.Quantity)
	}
	if r.SubmittedAt.IsZero() {
		t.Error("submitted_at not set")
	}
	if r.ResolvedAt != nil {
		t.Error("resolved_at should be nil")
	}
}

func TestSubmit_DuplicatePending(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	medicineID := uuid.New()

	if _, err := f.svc.Submit(context.Background(), customerID, medicineID, uuid.New(), 1); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	_, err := f.svc.Submit(context.Background(), customerID, medicineID, uuid.New(), 3)
	if !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("expected ErrDuplicateRequest, got %v", err)
	}
}

func TestSubmit_AllowedAfterResolution(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	medicineID := uuid.New()

	r, err := f.svc.Submit(context.Background(), customerID, medicineID, uuid.New(), 1)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := f.svc.Resolve(context.Background(), r.ID, StatusRejected, "no license on file"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// A rejected request no longer blocks a fresh submission.
	if _, err := f.svc.Submit(context.Background(), customerID, medicineID, uuid.New(), 1); err != nil {
		t.Fatalf("resubmit after rejection: %v", err)
	}
}

func TestSubmit_InvalidQuantity(t *testing.T) {
	f := newFixture()
	for _, qty := range []int{0, -1} {
		if _, err := f.svc.Submit(context.Background(), uuid.New(), uuid.New(), uuid.New(), qty); err == nil {
			t.Errorf("quantity %d: expected error", qty)
		}
	}
}

// -- Resolve --

func TestResolve_ApproveMarksCartLine(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	medicineID := uuid.New()
	f.cart.inCart[medicineID] = true

	r, _ := f.svc.Submit(context.Background(), customerID, medicineID, uuid.New(), 2)
	resolved, err := f.svc.Resolve(context.Background(), r.ID, StatusApproved, "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Status != StatusApproved {
		t.Errorf("status = %s", resolved.Status)
	}
	if resolved.ResolvedAt == nil {
		t.Error("resolved_at not set")
	}

	if len(f.cart.calls) != 1 || f.cart.calls[0].method != "approve" {
		t.Errorf("cart calls = %+v, want single approve", f.cart.calls)
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0] != "license-approved" {
		t.Errorf("notifications = %v", f.notifier.sent)
	}
}

func TestResolve_ApproveAddsMissingCartLine(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	medicineID := uuid.New()
	// Medicine not in cart anymore.

	r, _ := f.svc.Submit(context.Background(), customerID, medicineID, uuid.New(), 3)
	if _, err := f.svc.Resolve(context.Background(), r.ID, StatusApproved, ""); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if len(f.cart.calls) != 2 {
		t.Fatalf("cart calls = %+v", f.cart.calls)
	}
	add := f.cart.calls[1]
	if add.method != "add_approved" || add.quantity != 3 {
		t.Errorf("expected add_approved with requested quantity, got %+v", add)
	}
	if !f.cart.inCart[medicineID] {
		t.Error("medicine should be back in the cart")
	}
}

func TestResolve_CartFailureKeepsRequestPending(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	medicineID := uuid.New()
	// Medicine not in cart, and re-adding it fails (e.g. deleted from the catalog).
	f.cart.addErr = errors.New("medicine not found")

	r, _ := f.svc.Submit(context.Background(), customerID, medicineID, uuid.New(), 2)
	if _, err := f.svc.Resolve(context.Background(), r.ID, StatusApproved, ""); err == nil {
		t.Fatal("expected error when the cart effect fails")
	}

	stored, err := f.svc.Get(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Status != StatusPending {
		t.Fatalf("status = %s, want pending after failed cart effect", stored.Status)
	}
	if stored.ResolvedAt != nil {
		t.Error("resolved_at must stay nil")
	}
	if len(f.notifier.sent) != 0 {
		t.Errorf("no notification should be sent, got %v", f.notifier.sent)
	}

	// Once the cart accepts the medicine again the decision can be retried.
	f.cart.addErr = nil
	resolved, err := f.svc.Resolve(context.Background(), r.ID, StatusApproved, "")
	if err != nil {
		t.Fatalf("retry Resolve: %v", err)
	}
	if resolved.Status != StatusApproved {
		t.Errorf("status = %s after retry", resolved.Status)
	}
	if !f.cart.inCart[medicineID] {
		t.Error("medicine should be in the cart after the retry")
	}
}

func TestResolve_Reject(t *testing.T) {
	f := newFixture()
	r, _ := f.svc.Submit(context.Background(), uuid.New(), uuid.New(), uuid.New(), 1)

	resolved, err := f.svc.Resolve(context.Background(), r.ID, StatusRejected, "expired license")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Status != StatusRejected || resolved.Reason != "expired license" {
		t.Errorf("resolved = %+v", resolved)
	}
	// Rejection never touches the cart.
	if len(f.cart.calls) != 0 {
		t.Errorf("cart calls = %+v, want none", f.cart.calls)
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0] != "license-rejected" {
		t.Errorf("notifications = %v", f.notifier.sent)
	}
}

func TestResolve_AlreadyResolved(t *testing.T) {
	f := newFixture()
	r, _ := f.svc.Submit(context.Background(), uuid.New(), uuid.New(), uuid.New(), 1)
	if _, err := f.svc.Resolve(context.Background(), r.ID, StatusRejected, ""); err != nil {
		t.Fatalf("first Resolve: %v", err)
	}

	_, err := f.svc.Resolve(context.Background(), r.ID, StatusApproved, "")
	if !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
}

func TestResolve_InvalidDecision(t *testing.T) {
	f := newFixture()
	r, _ := f.svc.Submit(context.Background(), uuid.New(), uuid.New(), uuid.New(), 1)
	if _, err := f.svc.Resolve(context.Background(), r.ID, "maybe", ""); err == nil {
		t.Error("expected error for unknown decision")
	}
}

func TestResolve_UnknownRequest(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Resolve(context.Background(), uuid.New(), StatusApproved, "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListPendingByPharmacy(t *testing.T) {
	f := newFixture()
	pharmacyID := uuid.New()

	r1, _ := f.svc.Submit(context.Background(), uuid.New(), uuid.New(), pharmacyID, 1)
	f.svc.Submit(context.Background(), uuid.New(), uuid.New(), pharmacyID, 1)
	f.svc.Submit(context.Background(), uuid.New(), uuid.New(), uuid.New(), 1)
	f.svc.Resolve(context.Background(), r1.ID, StatusApproved, "")

	pending, total, err := f.svc.ListPendingByPharmacy(context.Background(), pharmacyID, 10, 0)
	if err != nil {
		t.Fatalf("ListPendingByPharmacy: %v", err)
	}
	if total != 1 || len(pending) != 1 {
		t.Errorf("pending = %d (total %d), want 1", len(pending), total)
	}
}
