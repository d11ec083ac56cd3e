// Package apperr holds sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidTimeKey = errors.New("invalid time key")
	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidTheme   = errors.New("invalid theme")
	ErrEmptyTable     = errors.New("verse table is empty")
	ErrInvalidInput   = errors.New("invalid input")
)
