package application

import "errors"

var (
	ErrInvalidID           = errors.New("application: invalid id")
	ErrInvalidStatus       = errors.New("application: invalid status")
	ErrInvalidAnswer       = errors.New("application: invalid answer")
	ErrInvalidNote         = errors.New("application: invalid note")
	ErrApplicationNotFound = errors.New("application: not found")
	ErrJobNotFound         = errors.New("application: job not found")
	ErrNoteNotFound        = errors.New("application: note not found")
	ErrJobNotOpen          = errors.New("application: job does not accept applications")
	ErrNotAuthorized       = errors.New("application: not authorized")
)
