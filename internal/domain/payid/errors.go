package payid

import "errors"

var (
	ErrAlreadyRegistered = errors.New("user already has a registered PAY-ID")
	ErrUnknownCode       = errors.New("code is not in the provisioned pool")
	ErrCodeTaken         = errors.New("code already claimed by another user")
	ErrNotRegistered     = errors.New("user has no registered PAY-ID")
	ErrInactive          = errors.New("PAY-ID not yet activated")
	ErrCodeMismatch      = errors.New("entered code does not match")
)
