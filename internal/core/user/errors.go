package user

import "errors"

var (
	ErrInvalidID        = errors.New("user: invalid id")
	ErrInvalidFullName  = errors.New("user: invalid full name")
	ErrInvalidPageSize  = errors.New("user: invalid page size")
	ErrInvalidPageToken = errors.New("user: invalid page token")
	ErrProfileNotFound  = errors.New("user: profile not found")
	ErrNotAuthorized    = errors.New("user: not authorized")
)
