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

// Package stream gives the relay a single type to read from and write
// to regardless of whether a connection's bytes travel in the clear
// over TCP or are wrapped in TLS. Relay code is written once against
// Stream; callers never branch on the underlying transport.
package stream

import (
	"crypto/tls"
	"net"

	"github.com/pkg/errors"
)

func newError(format string, args ...any) error {
	format = "stream: " + format
	return errors.Errorf(format, args...)
}

// ErrHalfCloseUnsupported is returned by CloseWrite when the
// underlying transport exposes no half-close primitive.
var ErrHalfCloseUnsupported = newError("half-close not supported by this transport")

// Kind identifies which concrete transport a Stream wraps.
type Kind uint8

const (
	KindTCP Kind = iota
	KindTLS
)

func (k Kind) String() string {
	switch k {
	case KindTCP:
		return "tcp"
	case KindTLS:
		return "tls"
	default:
		return "unknown"
	}
}

// halfCloser is implemented by *net.TCPConn; *tls.Conn also implements
// it by sending a close_notify alert, and fails if the handshake has
// not completed yet (the proxy drivers call Handshake before relaying).
type halfCloser interface {
	CloseWrite() error
}

// Stream is a bidirectional byte transport that is either a bare TCP
// connection or a TLS connection layered over one. It implements
// io.Reader, io.Writer and io.Closer directly against the wrapped
// net.Conn, so relay.HalfRelay can treat both uniformly.
type Stream struct {
	kind Kind
	conn net.Conn
}

// NewTCP wraps an established TCP connection.
func NewTCP(conn net.Conn) Stream {
	return Stream{kind: KindTCP, conn: conn}
}

// NewTLS wraps an established TLS connection. The handshake is not
// performed here; callers that need to force it before relaying
// (to surface handshake errors early) should call Handshake first.
func NewTLS(conn *tls.Conn) Stream {
	return Stream{kind: KindTLS, conn: conn}
}

// Kind reports which transport this Stream wraps.
func (s Stream) Kind() Kind {
	return s.kind
}

// Read implements io.Reader.
func (s Stream) Read(p []byte) (int, error) {
	return s.conn.Read(p)
}

// Write implements io.Writer.
func (s Stream) Write(p []byte) (int, error) {
	return s.conn.Write(p)
}

// Close implements io.Closer, closing the stream in both directions.
func (s Stream) Close() error {
	return s.conn.Close()
}

// CloseWrite half-closes the write side of the stream, signaling EOF
// to the peer while still allowing reads. Used by the relay so one
// direction reaching EOF doesn't tear down the other half.
func (s Stream) CloseWrite() error {
	hc, ok := s.conn.(halfCloser)
	if !ok {
		return ErrHalfCloseUnsupported
	}
	return hc.CloseWrite()
}

// LocalAddr returns the local network address.
func (s Stream) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

// RemoteAddr returns the remote network address.
func (s Stream) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// Handshake forces the TLS handshake to complete now, surfacing
// handshake failures (as a "stream: tls handshake" error) before the
// relay begins rather than
// on the first Read or Write. It is a no-op for a plain TCP stream.
func (s Stream) Handshake() error {
	tlsConn, ok := s.conn.(*tls.Conn)
	if !ok {
		return nil
	}
	if err := tlsConn.Handshake(); err != nil {
		return newError("tls handshake: %v", err)
	}
	return nil
}
