package core

import (
	"fmt"
	"mime"
	"net/url"
	"strings"

	"github.com/voidshard/torque/internal/utils"
	"github.com/voidshard/torque/pkg/errors"
)

const (
	defaultEnctype = "application/x-www-form-urlencoded"

	maxURLLength  = 2048
	maxNameLength = 255
)

// validateURL requires an absolute http(s) URL with a host
func validateURL(in string) error {
	if in == "" {
		return fmt.Errorf("%w url is required", errors.ErrInvalidURL)
	}
	if len(in) > maxURLLength {
		return fmt.Errorf("%w url exceeds %d characters", errors.ErrInvalidURL, maxURLLength)
	}
	u, err := url.Parse(in)
	if err != nil {
		return fmt.Errorf("%w %v", errors.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w scheme %q must be http or https", errors.ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w %q has no host", errors.ErrInvalidURL, in)
	}
	return nil
}

// validateTimeout checks a timeout in seconds
func validateTimeout(timeout, max int64) error {
	if timeout < 0 {
		return fmt.Errorf("%w %d is negative", errors.ErrInvalidTimeout, timeout)
	}
	if timeout > max {
		return fmt.Errorf("%w %d exceeds max %d", errors.ErrInvalidTimeout, timeout, max)
	}
	return nil
}

// parseContentType splits a Content-Type header into enctype & canonical charset
func parseContentType(in string) (string, string, error) {
	if strings.TrimSpace(in) == "" {
		return defaultEnctype, utils.DefaultCharset, nil
	}
	enctype, params, err := mime.ParseMediaType(in)
	if err != nil {
		return "", "", fmt.Errorf("%w content type %q: %v", errors.ErrInvalidArg, in, err)
	}
	charset, err := utils.CanonicalCharset(params["charset"])
	if err != nil {
		return "", "", err
	}
	return enctype, charset, nil
}

func validateName(in string) (string, error) {
	name := strings.TrimSpace(in)
	if name == "" {
		return "", fmt.Errorf("%w name is required", errors.ErrInvalidArg)
	}
	if len(name) > maxNameLength {
		return "", fmt.Errorf("%w name exceeds %d characters", errors.ErrInvalidArg, maxNameLength)
	}
	return name, nil
}
