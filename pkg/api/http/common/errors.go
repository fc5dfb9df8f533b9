package common

import (
	"errors"
	"net/http"

	te "github.com/voidshard/torque/pkg/errors"
)

var (
	errmap map[int][]error = map[int][]error{
		http.StatusBadRequest: []error{
			te.ErrInvalidArg,
			te.ErrInvalidURL,
			te.ErrInvalidTimeout,
			te.ErrUnknownCharset,
			te.ErrNotSupported,
		},
		http.StatusUnauthorized: []error{te.ErrUnauthorized},
		http.StatusForbidden:    []error{te.ErrForbidden},
		http.StatusNotFound:     []error{te.ErrNotFound},
		http.StatusConflict: []error{
			te.ErrDuplicate,
			te.ErrRetryMismatch,
		},
	}
)

// MapError returns the http status code for a given error from torque, or
// http.StatusInternalServerError if the error is not recognised.
func MapError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	for code, errs := range errmap {
		for _, e := range errs {
			if errors.Is(err, e) {
				return code
			}
		}
	}
	return http.StatusInternalServerError
}

// ErrorFor returns the error a status code most likely stands for, or nil
// if the code isn't one MapError returns for a known error.
func ErrorFor(code int) error {
	errs, ok := errmap[code]
	if !ok || len(errs) == 0 {
		return nil
	}
	return errs[0]
}

// HealthResponse is returned by API_HEALTH.
type HealthResponse struct {
	OK bool `json:"ok"`
}
