package service

import "errors"

var (
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidRole       = errors.New("invalid role")
	ErrInvalidAction     = errors.New("action must be add or remove")
	ErrForbidden         = errors.New("forbidden")
	ErrNameRequired      = errors.New("name is required")
	ErrFieldRequired     = errors.New("field must not be null")
	ErrInvalidPrice      = errors.New("price must be greater than zero")
	ErrInvalidStock      = errors.New("stock must not be negative")
	ErrInvalidCategory   = errors.New("unknown product category")
	ErrInvalidStatus     = errors.New("unknown status")
	ErrReasonRequired    = errors.New("a rejection reason is required")
	ErrMessageRequired   = errors.New("a message is required for contact requests")
	ErrInvalidEmailType  = errors.New("unknown email type")
)
