package models

import "errors"

// Typed errors raised by the aggregate and the service layer. Handlers
// map these to HTTP status codes with errors.Is; anything else is a
// store failure.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderItemNotFound = errors.New("order item not found")
	ErrDuplicateItem     = errors.New("order item already exists")
	ErrValidation        = errors.New("validation failed")
)
