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

package proxy

import (
	"context"
	"crypto/tls"
	"net"

	"github.com/klinvill/tlsproxy/internal/metrics"
	"github.com/klinvill/tlsproxy/internal/rescue"
	"github.com/klinvill/tlsproxy/logger"
	"github.com/klinvill/tlsproxy/relay"
	"github.com/klinvill/tlsproxy/stream"
)

// ReverseConfig configures a reverse-proxy accept loop.
type ReverseConfig struct {
	// ListenAddr is the address the plain TCP listener binds, e.g.
	// "0.0.0.0:9443".
	ListenAddr string

	// Backends is the ordered list of origin server addresses the
	// carousel cycles through, one per accepted connection.
	Backends []string

	// Compress enables compression on the backend->client direction
	// (and decompression on client->backend).
	Compress bool

	// TLSConfig, if non-nil, is used to promote the downstream accept
	// to a TLS server handshake. Nil means the client leg stays
	// plaintext TCP.
	TLSConfig *tls.Config
}

// RunReverse binds cfg.ListenAddr and accepts connections until ctx is
// canceled, which closes the listener. Accept errors while ctx is live
// are counted and logged, and the loop goes on accepting.
func RunReverse(ctx context.Context, cfg ReverseConfig) error {
	carousel, err := NewCarousel(cfg.Backends)
	if err != nil {
		return err
	}

	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", cfg.ListenAddr)
	if err != nil {
		return err
	}
	defer ln.Close()
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	logger.Infof("reverse proxy listening on %s", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			metrics.AcceptErrors.WithLabelValues("reverse").Inc()
			logger.Warnf("reverse: accept failed: %v", err)
			continue
		}

		backend := carousel.Next()
		go handleReverse(conn, backend, cfg)
	}
}

func handleReverse(conn net.Conn, backend string, cfg ReverseConfig) {
	defer rescue.HandleCrash()

	logger.Infof("reverse: %s -> %s", conn.RemoteAddr(), backend)

	var clientStream stream.Stream
	if cfg.TLSConfig != nil {
		tlsConn := tls.Server(conn, cfg.TLSConfig)
		clientStream = stream.NewTLS(tlsConn)
		if err := clientStream.Handshake(); err != nil {
			logger.Warnf("reverse: tls handshake from %s failed: %v", conn.RemoteAddr(), err)
			conn.Close()
			return
		}
	} else {
		clientStream = stream.NewTCP(conn)
	}

	backendConn, err := net.Dial("tcp", backend)
	if err != nil {
		metrics.BackendDialFailures.WithLabelValues(backend).Inc()
		logger.Warnf("reverse: dial backend %s failed: %v", backend, err)
		conn.Close()
		return
	}
	backendStream := stream.NewTCP(backendConn)

	// Mirror image of the forward proxy: this side decompresses what
	// the forward proxy compressed, and compresses what travels back.
	clientToBackend := relay.DirNone
	backendToClient := relay.DirNone
	if cfg.Compress {
		clientToBackend = relay.DirDecompress
		backendToClient = relay.DirCompress
	}

	sess := relay.New(clientStream, backendStream, clientToBackend, backendToClient)
	sess.Run()
}
