package cart

import "errors"

var (
	// ErrInvalidQuantity is returned when a quantity is zero or negative.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrNotFound is returned when a cart line does not exist.
	ErrNotFound = errors.New("cart line not found")
)
