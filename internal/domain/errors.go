package domain

import "errors"

var (
	ErrItemNotFound           = errors.New("item not found")
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")
	ErrInvalidKey             = errors.New("invalid key")
)
