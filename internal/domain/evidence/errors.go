package evidence

import "errors"

var (
	ErrNotFound     = errors.New("evidence file not found")
	ErrNotOwner     = errors.New("evidence file belongs to another user")
	ErrInvalidImage = errors.New("file is not a decodable image")
)
