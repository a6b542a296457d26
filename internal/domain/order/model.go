package order

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// transitions holds the allowed status edges. Delivered and cancelled are
// terminal.
var transitions = map[Status]map[Status]bool{
	StatusProcessing: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:    {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransitionTo reports whether the edge s -> next is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	return transitions[s][next]
}

// Contact is the customer contact snapshot captured at checkout.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Order groups the cart lines of a single pharmacy at checkout time. Apart
// from Status and UpdatedAt an order never changes after creation.
type Order struct {
	ID            uuid.UUID `json:"id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone"`
	PharmacyID    uuid.UUID `json:"pharmacy_id"`
	PharmacyName  string    `json:"pharmacy_name"`
	Lines         []*Line   `json:"lines"`
	TotalCents    int64     `json:"total_cents"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Line is a frozen snapshot of one cart line inside an order.
type Line struct {
	ID             uuid.UUID `json:"id"`
	OrderID        uuid.UUID `json:"order_id"`
	MedicineID     uuid.UUID `json:"medicine_id"`
	MedicineName   string    `json:"medicine_name"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
}

// SubtotalCents returns the line subtotal in cents.
func (l *Line) SubtotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}
