package company

import "errors"

var (
	ErrInvalidID         = errors.New("company: invalid id")
	ErrInvalidName       = errors.New("company: invalid name")
	ErrInvalidSlug       = errors.New("company: invalid slug")
	ErrInvalidMemberRole = errors.New("company: invalid member role")
	ErrCompanyNotFound   = errors.New("company: not found")
	ErrMemberNotFound    = errors.New("company: member not found")
	ErrSlugAlreadyExists = errors.New("company: slug already exists")
	ErrAlreadyMember     = errors.New("company: user is already a member")
	ErrNotAuthorized     = errors.New("company: not authorized")
)
