package service

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidInput       = errors.New("invalid input")
	ErrConflict           = errors.New("state conflict")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrTooEarly           = errors.New("too early")
	ErrGateway            = errors.New("payment gateway failed")
)
