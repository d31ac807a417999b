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

package stream

import (
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tcpPipe(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	var server net.Conn
	done := make(chan struct{})
	go func() {
		defer close(done)
		server, _ = ln.Accept()
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	<-done
	require.NotNil(t, server)
	return client, server
}

func TestStreamTCPReadWrite(t *testing.T) {
	client, server := tcpPipe(t)
	defer client.Close()
	defer server.Close()

	cs := NewTCP(client)
	ss := NewTCP(server)

	assert.Equal(t, KindTCP, cs.Kind())
	assert.Equal(t, "tcp", cs.Kind().String())

	n, err := cs.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	buf := make([]byte, 5)
	_, err = io.ReadFull(ss, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))
}

func TestStreamCloseWrite(t *testing.T) {
	client, server := tcpPipe(t)
	defer client.Close()
	defer server.Close()

	cs := NewTCP(client)
	require.NoError(t, cs.CloseWrite())

	buf := make([]byte, 1)
	_, err := server.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamAddrs(t *testing.T) {
	client, server := tcpPipe(t)
	defer client.Close()
	defer server.Close()

	cs := NewTCP(client)
	assert.NotNil(t, cs.LocalAddr())
	assert.NotNil(t, cs.RemoteAddr())
}

func TestStreamHandshakeNoopForTCP(t *testing.T) {
	client, server := tcpPipe(t)
	defer client.Close()
	defer server.Close()

	cs := NewTCP(client)
	assert.NoError(t, cs.Handshake())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "tcp", KindTCP.String())
	assert.Equal(t, "tls", KindTLS.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
