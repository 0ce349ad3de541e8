package model

import "errors"

// Sentinel errors stores and services wrap with errors.Wrapf context.
// The respond package maps them onto 404, 400, and 409.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
)
