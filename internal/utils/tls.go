package utils

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/voidshard/torque/pkg/errors"
)

// TLSFiles are paths to PEM files used to talk to the queue over TLS.
type TLSFiles struct {
	CACert string
	Cert   string
	Key    string
}

// Empty returns true if no TLS material was configured.
func (f TLSFiles) Empty() bool {
	return f.CACert == "" && f.Cert == "" && f.Key == ""
}

// TLSConfig loads a client TLS config from the given files, or returns nil if
// none are set.
func TLSConfig(files TLSFiles) (*tls.Config, error) {
	if files.Empty() {
		return nil, nil
	}
	if (files.Cert == "") != (files.Key == "") {
		return nil, fmt.Errorf("%w both a tls cert and key are required", errors.ErrInvalidArg)
	}

	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if files.Cert != "" {
		pair, err := tls.LoadX509KeyPair(files.Cert, files.Key)
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{pair}
	}

	if files.CACert != "" {
		pem, err := os.ReadFile(files.CACert)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%w no certificates found in %s", errors.ErrInvalidArg, files.CACert)
		}
		cfg.RootCAs = pool
	}

	return cfg, nil
}
