package license

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Request asks a pharmacy to clear a regulated medicine for purchase. At most
// one pending request exists per (customer, medicine).
type Request struct {
	ID          uuid.UUID  `json:"id"`
	CustomerID  uuid.UUID  `json:"customer_id"`
	MedicineID  uuid.UUID  `json:"medicine_id"`
	PharmacyID  uuid.UUID  `json:"pharmacy_id"`
	Quantity    int        `json:"quantity"`
	Status      string     `json:"status"`
	Reason      string     `json:"reason,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}
