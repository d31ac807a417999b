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

package tlsmaterial

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generateSelfSigned writes a PEM cert and PKCS#8 key pair to dir,
// returning their paths.
func generateSelfSigned(t *testing.T, dir string) (certPath, keyPath string) {
	t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	require.NoError(t, err)

	certPath = filepath.Join(dir, "cert.pem")
	require.NoError(t, os.WriteFile(certPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))

	keyDER, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)

	keyPath = filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}), 0o600))

	return certPath, keyPath
}

func TestLoadRootStoreSuccess(t *testing.T) {
	dir := t.TempDir()
	certPath, _ := generateSelfSigned(t, dir)

	pool, err := LoadRootStore(certPath)
	require.NoError(t, err)
	assert.NotNil(t, pool)
}

func TestLoadRootStoreMissingFile(t *testing.T) {
	_, err := LoadRootStore(filepath.Join(t.TempDir(), "missing.pem"))
	assert.ErrorIs(t, err, ErrConfig)
}

func TestLoadRootStoreEmptyFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "empty.pem")
	require.NoError(t, os.WriteFile(p, []byte("not a cert"), 0o600))

	_, err := LoadRootStore(p)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestLoadIdentitySuccess(t *testing.T) {
	dir := t.TempDir()
	certPath, keyPath := generateSelfSigned(t, dir)

	cert, err := LoadIdentity(certPath, keyPath)
	require.NoError(t, err)
	assert.NotEmpty(t, cert.Certificate)
}

func TestLoadIdentityMissingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadIdentity(filepath.Join(dir, "nope-cert.pem"), filepath.Join(dir, "nope-key.pem"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestLoadIdentityNoPrivateKey(t *testing.T) {
	dir := t.TempDir()
	certPath, _ := generateSelfSigned(t, dir)

	keyPath := filepath.Join(dir, "key.pem")
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("not a key")}), 0o600))

	_, err := LoadIdentity(certPath, keyPath)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestLoadIdentityMultiplePrivateKeys(t *testing.T) {
	dir := t.TempDir()
	certPath, keyPath := generateSelfSigned(t, dir)

	existing, err := os.ReadFile(keyPath)
	require.NoError(t, err)
	doubled := append(append([]byte{}, existing...), existing...)
	require.NoError(t, os.WriteFile(keyPath, doubled, 0o600))

	_, err = LoadIdentity(certPath, keyPath)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestClientAndServerConfig(t *testing.T) {
	dir := t.TempDir()
	certPath, keyPath := generateSelfSigned(t, dir)

	pool, err := LoadRootStore(certPath)
	require.NoError(t, err)
	clientCfg := ClientConfig(pool)
	assert.Equal(t, pool, clientCfg.RootCAs)

	cert, err := LoadIdentity(certPath, keyPath)
	require.NoError(t, err)
	serverCfg := ServerConfig(cert)
	require.Len(t, serverCfg.Certificates, 1)
}
