package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNoRoute         = errors.New("no provider route for model")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrBadSignature    = errors.New("callback signature mismatch")
	ErrProviderFailure = errors.New("provider failure")
)
