package ledger

import "errors"

var (
	ErrNotFound        = errors.New("transaction not found")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrAlreadyDecided  = errors.New("transaction already decided")
	ErrDuplicateNumber = errors.New("duplicate transaction number")
	ErrNotOwner        = errors.New("transaction belongs to another user")
)
