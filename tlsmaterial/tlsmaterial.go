// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tlsmaterial loads the certificate and key material the
// forward and reverse proxies need to TLS-terminate one side of a
// connection, and builds the immutable *tls.Config each then shares
// by reference across every session it handles.
package tlsmaterial

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

func newError(format string, args ...any) error {
	format = "tlsmaterial: " + format
	return errors.Errorf(format, args...)
}

// ErrConfig reports a problem with supplied certificate/key material:
// a missing file, an empty CA store, a missing private key, or more
// than one private key in a file meant to hold exactly one.
var ErrConfig = newError("invalid tls configuration")

// LoadRootStore reads a PEM bundle of one or more CA certificates and
// returns an x509.CertPool suitable for a forward proxy's
// tls.Config.RootCAs. Fails with a wrapped ErrConfig if the file can't
// be read or contains no certificates.
func LoadRootStore(path string) (*x509.CertPool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrConfig, "reading root cert %q: %v", path, err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(raw) {
		return nil, errors.Wrapf(ErrConfig, "%q contains no usable certificates", path)
	}
	return pool, nil
}

// LoadIdentity reads a PEM certificate chain and a PEM PKCS#8 private
// key and returns the tls.Certificate a reverse proxy presents during
// its server handshake. Exactly one private key is expected in
// keyPath; zero or more than one is a config error. If neither file
// can be read, both read errors are reported together via
// go-multierror.
func LoadIdentity(chainPath, keyPath string) (tls.Certificate, error) {
	var merr *multierror.Error

	chainPEM, err := os.ReadFile(chainPath)
	if err != nil {
		merr = multierror.Append(merr, errors.Wrapf(ErrConfig, "reading cert chain %q: %v", chainPath, err))
	}

	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		merr = multierror.Append(merr, errors.Wrapf(ErrConfig, "reading private key %q: %v", keyPath, err))
	}
	if merr.ErrorOrNil() != nil {
		return tls.Certificate{}, merr
	}

	if err := countPrivateKeys(keyPEM); err != nil {
		return tls.Certificate{}, err
	}

	cert, err := tls.X509KeyPair(chainPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, errors.Wrapf(ErrConfig, "loading key pair: %v", err)
	}
	return cert, nil
}

// countPrivateKeys rejects keyPEM unless it contains exactly one
// private key block: PKCS#8 ("PRIVATE KEY"), or the PKCS#1 and SEC 1
// forms ("RSA PRIVATE KEY", "EC PRIVATE KEY").
func countPrivateKeys(keyPEM []byte) error {
	count := 0
	rest := keyPEM
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type == "PRIVATE KEY" || block.Type == "RSA PRIVATE KEY" || block.Type == "EC PRIVATE KEY" {
			count++
		}
	}

	switch {
	case count == 0:
		return errors.Wrap(ErrConfig, "no private key found")
	case count > 1:
		return errors.Wrapf(ErrConfig, "expected exactly one private key, found %d", count)
	default:
		return nil
	}
}

// ClientConfig builds the tls.Config a forward proxy uses to dial its
// upstream over TLS, trusting roots. The upstream is whatever address
// transparent redirection handed the proxy, not a DNS name the client
// chose, so there is no hostname to check the certificate against:
// verification is chain-only, done by hand in VerifyConnection with
// the standard library's InsecureSkipVerify+VerifyConnection escape
// hatch for exactly this case. The returned config is immutable and
// safe to share by reference across every session.
func ClientConfig(roots *x509.CertPool) *tls.Config {
	return &tls.Config{
		RootCAs:            roots,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: true,
		VerifyConnection: func(cs tls.ConnectionState) error {
			if len(cs.PeerCertificates) == 0 {
				return newError("no peer certificate presented")
			}
			intermediates := x509.NewCertPool()
			for _, cert := range cs.PeerCertificates[1:] {
				intermediates.AddCert(cert)
			}
			_, err := cs.PeerCertificates[0].Verify(x509.VerifyOptions{
				Roots:         roots,
				Intermediates: intermediates,
			})
			return err
		},
	}
}

// ServerConfig builds the tls.Config a reverse proxy uses to accept a
// TLS handshake from a client, presenting cert. The returned config is
// immutable and safe to share by reference across every session.
func ServerConfig(cert tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
}
