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

// Package transparent binds a TCP listener configured with the
// transparent-intercept socket option (IP_TRANSPARENT on Linux) and
// recovers, for each accepted connection, the original destination
// address the client believed it was dialing before kernel-level
// redirection. The forward proxy uses that address to pick its
// upstream dial target.
package transparent

import (
	"context"
	"net"

	"github.com/pkg/errors"
)

func newError(format string, args ...any) error {
	format = "transparent: " + format
	return errors.Errorf(format, args...)
}

// ErrSocketOptionUnsupported is returned by Listen when the running
// kernel or platform has no equivalent of IP_TRANSPARENT.
var ErrSocketOptionUnsupported = newError("transparent-intercept socket option not supported on this platform")

// Conn is an accepted connection paired with the original destination
// address discovered for it.
type Conn struct {
	net.Conn

	// OriginalDst is the address the client believed it was
	// connecting to before transparent redirection.
	OriginalDst net.Addr
}

// Listener accepts connections redirected to it by the kernel and
// exposes each one's original destination.
type Listener struct {
	ln net.Listener
}

// Listen binds addr with the transparent-intercept socket option set.
// It fails with ErrSocketOptionUnsupported on platforms where that
// option doesn't exist (see transparent_other.go).
func Listen(ctx context.Context, addr string) (*Listener, error) {
	ln, err := listenTransparent(ctx, addr)
	if err != nil {
		return nil, err
	}
	return &Listener{ln: ln}, nil
}

// Accept waits for and returns the next connection, annotated with its
// original destination address.
func (l *Listener) Accept() (Conn, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return Conn{}, err
	}
	return Conn{Conn: conn, OriginalDst: conn.LocalAddr()}, nil
}

// Addr returns the listener's bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Close closes the listener.
func (l *Listener) Close() error {
	return l.ln.Close()
}
