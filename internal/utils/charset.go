package utils

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/voidshard/torque/pkg/errors"
)

const DefaultCharset = "utf-8"

// lookupCharset resolves a charset label as browsers would ("latin1",
// "iso-8859-1", "utf8", ...).
func lookupCharset(charset string) (encoding.Encoding, error) {
	charset = strings.TrimSpace(charset)
	if charset == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("%w %q", errors.ErrUnknownCharset, charset)
	}
	return enc, nil
}

// CanonicalCharset returns the canonical name of a charset label.
func CanonicalCharset(charset string) (string, error) {
	enc, err := lookupCharset(charset)
	if err != nil {
		return "", err
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return "", fmt.Errorf("%w %q", errors.ErrUnknownCharset, charset)
	}
	return name, nil
}

// DecodeCharset decodes raw bytes in the given charset to text. Input that
// would not encode back to the same bytes is rejected rather than altered.
func DecodeCharset(charset string, in []byte) (string, error) {
	enc, err := lookupCharset(charset)
	if err != nil {
		return "", err
	}
	if name, _ := htmlindex.Name(enc); name == DefaultCharset {
		if !utf8.Valid(in) {
			return "", fmt.Errorf("%w body is not valid %s", errors.ErrInvalidArg, DefaultCharset)
		}
		return string(in), nil
	}
	out, err := enc.NewDecoder().Bytes(in)
	if err != nil {
		return "", fmt.Errorf("%w decoding body as %s: %v", errors.ErrInvalidArg, charset, err)
	}
	back, err := enc.NewEncoder().Bytes(out)
	if err != nil || !bytes.Equal(back, in) {
		return "", fmt.Errorf("%w body is not valid %s", errors.ErrInvalidArg, charset)
	}
	return string(out), nil
}

// EncodeCharset encodes text into the given charset.
func EncodeCharset(charset string, in string) ([]byte, error) {
	enc, err := lookupCharset(charset)
	if err != nil {
		return nil, err
	}
	out, err := enc.NewEncoder().Bytes([]byte(in))
	if err != nil {
		return nil, fmt.Errorf("%w encoding body as %s: %v", errors.ErrInvalidArg, charset, err)
	}
	return out, nil
}
