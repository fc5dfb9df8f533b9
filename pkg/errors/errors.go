package errors

import (
	"fmt"
)

var (
	ErrNotFound       = fmt.Errorf("not found")
	ErrDuplicate      = fmt.Errorf("duplicate key")
	ErrRetryMismatch  = fmt.Errorf("retry count mismatch")
	ErrInvalidArg     = fmt.Errorf("invalid arg")
	ErrInvalidURL     = fmt.Errorf("invalid url")
	ErrInvalidTimeout = fmt.Errorf("invalid timeout")
	ErrUnknownCharset = fmt.Errorf("unknown charset")
	ErrUnauthorized   = fmt.Errorf("unauthorized")
	ErrForbidden      = fmt.Errorf("forbidden")
	ErrNotSupported   = fmt.Errorf("not supported")
	ErrQueueClosed    = fmt.Errorf("queue closed")
	ErrInvalidState   = fmt.Errorf("invalid state")
)
