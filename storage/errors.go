package storage

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrDuplicate          = errors.New("duplicate resource")
	ErrInvalidInput       = errors.New("invalid input data")
	ErrConflict           = errors.New("resource is still referenced")
	ErrCartEmpty          = errors.New("cart is empty")
	ErrInsufficientStock  = errors.New("not enough quantity available")
	ErrProductUnavailable = errors.New("product is no longer available")
	ErrInvalidTransition  = errors.New("order status transition not allowed")
)
