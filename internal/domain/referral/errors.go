package referral

import "errors"

var (
	ErrInvalidAmount             = errors.New("invalid reward amount")
	ErrInsufficientRewardBalance = errors.New("insufficient reward balance")
	ErrUnevenAmount              = errors.New("amount must consume whole rewards")
)
