package license

import "errors"

var (
	// ErrDuplicateRequest is returned when the customer already has a pending
	// request for the medicine.
	ErrDuplicateRequest = errors.New("a pending request for this medicine already exists")

	// ErrAlreadyResolved is returned when resolving a non-pending request.
	ErrAlreadyResolved = errors.New("request is already resolved")

	// ErrNotFound is returned when a request does not exist.
	ErrNotFound = errors.New("license request not found")
)
