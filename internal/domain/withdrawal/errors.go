package withdrawal

import "errors"

var (
	ErrBelowMinimum = errors.New("amount below minimum withdrawal")
	ErrNotFound     = errors.New("withdrawal request not found")
	ErrInvalidSource = errors.New("invalid source balance")
)
