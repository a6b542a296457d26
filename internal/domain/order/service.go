package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rxcart/rxcart/internal/domain/cart"
	"github.com/rxcart/rxcart/internal/platform/events"
	"github.com/rxcart/rxcart/internal/platform/keylock"
	"github.com/rxcart/rxcart/internal/platform/notification"
	"github.com/rxcart/rxcart/internal/platform/websocket"
)

// Cart is the slice of the cart service checkout reads from.
type Cart interface {
	Get(ctx context.Context, customerID uuid.UUID) ([]*cart.Line, error)
}

// Notifier sends templated customer notifications.
type Notifier interface {
	SendFromTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*notification.Notification, error)
}

// Service implements checkout and the order status lifecycle. Notifications,
// Kafka events and websocket broadcasts are best-effort: failures are logged
// and never fail the request.
type Service struct {
	repo      Repository
	cart      Cart
	locks     *keylock.Registry
	notifier  Notifier
	producer  events.Producer
	publisher websocket.EventPublisher
	logger    zerolog.Logger
}

func NewService(repo Repository, c Cart, locks *keylock.Registry, notifier Notifier,
	producer events.Producer, publisher websocket.EventPublisher, logger zerolog.Logger) *Service {
	if producer == nil {
		producer = events.NopProducer{}
	}
	return &Service{
		repo:      repo,
		cart:      c,
		locks:     locks,
		notifier:  notifier,
		producer:  producer,
		publisher: publisher,
		logger:    logger,
	}
}

// Checkout turns the customer's cart into one order per pharmacy. Lines that
// require a license and are not yet approved stay in the cart. Each pharmacy
// group is persisted in its own transaction; a failed group leaves its cart
// lines in place.
func (s *Service) Checkout(ctx context.Context, customerID uuid.UUID, contact Contact) ([]*Order, error) {
	key := customerID.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	lines, err := s.cart.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	orderable := make([]*cart.Line, 0, len(lines))
	for _, l := range lines {
		if l.RequiresLicense && !l.Approved {
			continue
		}
		orderable = append(orderable, l)
	}
	if len(orderable) == 0 {
		return nil, ErrEmptyCart
	}

	groups := partitionByPharmacy(orderable)

	created := []*Order{}
	failed := []uuid.UUID{}
	var lastErr error
	for _, g := range groups {
		o := buildOrder(customerID, contact, g)
		cartLineIDs := make([]uuid.UUID, len(g))
		for i, l := range g {
			cartLineIDs[i] = l.ID
		}
		if err := s.repo.Create(ctx, o, cartLineIDs); err != nil {
			s.logger.Error().Err(err).
				Str("customer_id", customerID.String()).
				Str("pharmacy_id", o.PharmacyID.String()).
				Msg("checkout: persisting order failed")
			failed = append(failed, o.PharmacyID)
			lastErr = err
			continue
		}
		created = append(created, o)
		s.announceCreated(ctx, o)
	}

	if len(failed) > 0 {
		if len(created) == 0 {
			return nil, lastErr
		}
		return created, &PartialCheckoutError{Created: created, Failed: failed}
	}
	return created, nil
}

// partitionByPharmacy groups lines by pharmacy preserving cart order, both of
// the groups and of the lines within each group.
func partitionByPharmacy(lines []*cart.Line) [][]*cart.Line {
	index := map[uuid.UUID]int{}
	groups := [][]*cart.Line{}
	for _, l := range lines {
		i, ok := index[l.PharmacyID]
		if !ok {
			i = len(groups)
			index[l.PharmacyID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], l)
	}
	return groups
}

func buildOrder(customerID uuid.UUID, contact Contact, group []*cart.Line) *Order {
	now := time.Now()
	o := &Order{
		ID:            uuid.New(),
		CustomerID:    customerID,
		CustomerName:  contact.Name,
		CustomerEmail: contact.Email,
		CustomerPhone: contact.Phone,
		PharmacyID:    group[0].PharmacyID,
		PharmacyName:  group[0].PharmacyName,
		Status:        StatusProcessing,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, l := range group {
		o.Lines = append(o.Lines, &Line{
			ID:             uuid.New(),
			OrderID:        o.ID,
			MedicineID:     l.MedicineID,
			MedicineName:   l.MedicineName,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
		})
		o.TotalCents += l.SubtotalCents()
	}
	return o
}

// Transition moves an order to the next status using an optimistic
// compare-and-set. A raced loser re-reads and re-validates against the state
// the winner left behind.
func (s *Service) Transition(ctx context.Context, orderID uuid.UUID, next Status) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	for {
		if !o.Status.CanTransitionTo(next) {
			return nil, &InvalidTransitionError{From: o.Status, To: next}
		}
		updated, err := s.repo.UpdateStatus(ctx, orderID, o.Status, next)
		if err != nil {
			return nil, err
		}
		if updated {
			from := o.Status
			o.Status = next
			o.UpdatedAt = time.Now()
			s.announceTransition(ctx, o, from)
			return o, nil
		}
		// Lost the race; reload and validate against the new state.
		if o, err = s.repo.GetByID(ctx, orderID); err != nil {
			return nil, err
		}
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*Order, int, error) {
	return s.repo.ListByCustomer(ctx, customerID, limit, offset)
}

func (s *Service) ListByPharmacy(ctx context.Context, pharmacyID uuid.UUID, limit, offset int) ([]*Order, int, error) {
	return s.repo.ListByPharmacy(ctx, pharmacyID, limit, offset)
}

func (s *Service) announceCreated(ctx context.Context, o *Order) {
	if s.notifier != nil && o.CustomerEmail != "" {
		_, err := s.notifier.SendFromTemplate(ctx, "order-confirmation", map[string]string{
			"customer_name": o.CustomerName,
			"order_id":      o.ID.String(),
			"pharmacy":      o.PharmacyName,
			"total":         formatCents(o.TotalCents),
		}, o.CustomerEmail)
		if err != nil {
			s.logger.Warn().Err(err).Str("order_id", o.ID.String()).
				Msg("order confirmation notification failed")
		}
	}

	if err := s.producer.PublishOrderCreated(events.OrderCreatedEvent{
		OrderID:    o.ID.String(),
		CustomerID: o.CustomerID.String(),
		PharmacyID: o.PharmacyID.String(),
		TotalCents: o.TotalCents,
		CreatedAt:  o.CreatedAt,
	}); err != nil {
		s.logger.Warn().Err(err).Str("order_id", o.ID.String()).
			Msg("publishing order.created failed")
	}

	s.broadcast(ctx, "order.created", o)
}

func (s *Service) announceTransition(ctx context.Context, o *Order, from Status) {
	if s.notifier != nil {
		if o.CustomerEmail != "" {
			_, err := s.notifier.SendFromTemplate(ctx, "order-status-update", map[string]string{
				"customer_name": o.CustomerName,
				"order_id":      o.ID.String(),
				"pharmacy":      o.PharmacyName,
				"status":        string(o.Status),
			}, o.CustomerEmail)
			if err != nil {
				s.logger.Warn().Err(err).Str("order_id", o.ID.String()).
					Msg("status update notification failed")
			}
		}
		if o.Status == StatusShipped && o.CustomerPhone != "" {
			_, err := s.notifier.SendFromTemplate(ctx, "order-shipped", map[string]string{
				"order_id": o.ID.String(),
				"pharmacy": o.PharmacyName,
			}, o.CustomerPhone)
			if err != nil {
				s.logger.Warn().Err(err).Str("order_id", o.ID.String()).
					Msg("shipped SMS failed")
			}
		}
	}

	if err := s.producer.PublishOrderStatusChanged(events.OrderStatusChangedEvent{
		OrderID:    o.ID.String(),
		CustomerID: o.CustomerID.String(),
		PharmacyID: o.PharmacyID.String(),
		FromStatus: string(from),
		ToStatus:   string(o.Status),
	}); err != nil {
		s.logger.Warn().Err(err).Str("order_id", o.ID.String()).
			Msg("publishing order.status_changed failed")
	}

	s.broadcast(ctx, "order.status_changed", o)
}

func (s *Service) broadcast(ctx context.Context, eventType string, o *Order) {
	if s.publisher == nil {
		return
	}
	for _, topic := range []string{
		websocket.CustomerTopic(o.CustomerID.String()),
		websocket.PharmacyTopic(o.PharmacyID.String()),
	} {
		event := websocket.Event{
			Type:      eventType,
			Topic:     topic,
			OrderID:   o.ID.String(),
			Status:    string(o.Status),
			Timestamp: time.Now(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn().Err(err).Str("order_id", o.ID.String()).
				Str("topic", topic).Msg("websocket broadcast failed")
		}
	}
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
