package job

import "errors"

var (
	ErrInvalidID        = errors.New("job: invalid id")
	ErrInvalidTitle     = errors.New("job: invalid title")
	ErrInvalidLocation  = errors.New("job: invalid location")
	ErrInvalidMethod    = errors.New("job: invalid application method")
	ErrInvalidStatus    = errors.New("job: invalid status")
	ErrInvalidSalary    = errors.New("job: invalid salary range")
	ErrInvalidQuestion  = errors.New("job: invalid question")
	ErrInvalidPlan      = errors.New("job: unknown promotion plan")
	ErrInvalidPageSize  = errors.New("job: invalid page size")
	ErrInvalidPageToken = errors.New("job: invalid page token")
	ErrJobNotFound      = errors.New("job: not found")
	ErrNotAuthorized    = errors.New("job: not authorized")
)
