package order

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrEmptyCart is returned when checkout finds nothing orderable.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrNotFound is returned when an order does not exist.
	ErrNotFound = errors.New("order not found")
)

// InvalidTransitionError reports a status edge the lifecycle does not allow.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

// PartialCheckoutError is returned when some pharmacy groups were persisted
// and others failed. Failed holds the pharmacy ids whose cart lines were left
// in place.
type PartialCheckoutError struct {
	Created []*Order
	Failed  []uuid.UUID
}

func (e *PartialCheckoutError) Error() string {
	ids := make([]string, len(e.Failed))
	for i, id := range e.Failed {
		ids[i] = id.String()
	}
	return fmt.Sprintf("checkout created %d order(s) but failed for pharmacies: %s",
		len(e.Created), strings.Join(ids, ", "))
}
