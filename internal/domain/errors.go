package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidOdds      = errors.New("invalid odds")
	ErrInsufficientLegs = errors.New("insufficient legs")
	ErrSlipInvalid      = errors.New("slip failed validation")
	ErrWSDisconnect     = errors.New("websocket disconnected")
)
