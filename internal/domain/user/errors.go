package user

import "errors"

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUnknownLevel  = errors.New("unknown level key")
	ErrAlreadyExists = errors.New("user already exists")
)
