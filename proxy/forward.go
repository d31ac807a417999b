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

// Package proxy wires the compression, stream, transparent-acceptor
// and relay packages into the forward and reverse proxy accept loops.
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
	"github.com/klinvill/tlsproxy/transparent"
)

// ForwardConfig configures a forward-proxy accept loop.
type ForwardConfig struct {
	// ListenAddr is the address the transparent-intercept listener
	// binds, e.g. "0.0.0.0:8080".
	ListenAddr string

	// Compress enables compression on the client->upstream direction
	// (and decompression on upstream->client).
	Compress bool

	// TLSConfig, if non-nil, is used to promote the upstream dial to
	// a TLS client connection. Nil means the upstream leg stays
	// plaintext TCP.
	TLSConfig *tls.Config
}

// RunForward binds the transparent listener described by cfg and
// accepts connections until ctx is canceled, which closes the listener.
// Accept errors while ctx is live are counted and logged, and the loop
// goes on accepting.
func RunForward(ctx context.Context, cfg ForwardConfig) error {
	ln, err := transparent.Listen(ctx, cfg.ListenAddr)
	if err != nil {
		return err
	}
	defer ln.Close()
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	logger.Infof("forward proxy listening on %s", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			metrics.AcceptErrors.WithLabelValues("forward").Inc()
			logger.Warnf("forward: accept failed: %v", err)
			continue
		}

		go handleForward(conn, cfg)
	}
}

func handleForward(conn transparent.Conn, cfg ForwardConfig) {
	defer rescue.HandleCrash()

	dstAddr := conn.OriginalDst.String()
	logger.Infof("forward: %s -> %s", conn.RemoteAddr(), dstAddr)

	upstream, err := net.Dial("tcp", dstAddr)
	if err != nil {
		metrics.AcceptErrors.WithLabelValues("forward").Inc()
		logger.Warnf("forward: dial %s failed: %v", dstAddr, err)
		conn.Close()
		return
	}

	// conn.Conn (not conn itself) preserves the accepted socket's
	// dynamic type so Stream can still assert it implements
	// CloseWrite for half-close; wrapping conn directly would hide it
	// behind transparent.Conn's own net.Conn method set.
	clientStream := stream.NewTCP(conn.Conn)
	var upstreamStream stream.Stream
	if cfg.TLSConfig != nil {
		tlsConn := tls.Client(upstream, cfg.TLSConfig)
		upstreamStream = stream.NewTLS(tlsConn)
		if err := upstreamStream.Handshake(); err != nil {
			logger.Warnf("forward: tls handshake to %s failed: %v", dstAddr, err)
			conn.Close()
			upstream.Close()
			return
		}
	} else {
		upstreamStream = stream.NewTCP(upstream)
	}

	clientToUpstream := relay.DirNone
	upstreamToClient := relay.DirNone
	if cfg.Compress {
		clientToUpstream = relay.DirCompress
		upstreamToClient = relay.DirDecompress
	}

	sess := relay.New(clientStream, upstreamStream, clientToUpstream, upstreamToClient)
	sess.Run()
}
