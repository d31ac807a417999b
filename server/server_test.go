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

package server

import (
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestNewDisabledWithoutAddress(t *testing.T) {
	s := New(Config{})
	assert.Nil(t, s)
}

func TestNewServesMetrics(t *testing.T) {
	addr := freeAddr(t)
	s := New(Config{Address: addr, Timeout: time.Second})
	require.NotNil(t, s)

	go s.ListenAndServe()
	time.Sleep(50 * time.Millisecond)

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewRegistersPprofRoutesWhenEnabled(t *testing.T) {
	addr := freeAddr(t)
	s := New(Config{Address: addr, Pprof: true})
	require.NotNil(t, s)

	go s.ListenAndServe()
	time.Sleep(50 * time.Millisecond)

	resp, err := http.Get("http://" + addr + "/debug/pprof/cmdline")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewOmitsPprofRoutesWhenDisabled(t *testing.T) {
	addr := freeAddr(t)
	s := New(Config{Address: addr})
	require.NotNil(t, s)

	go s.ListenAndServe()
	time.Sleep(50 * time.Millisecond)

	resp, err := http.Get("http://" + addr + "/debug/pprof/cmdline")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
