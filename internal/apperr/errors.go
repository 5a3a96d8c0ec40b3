package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnknownCategory = errors.New("unknown category")
)
