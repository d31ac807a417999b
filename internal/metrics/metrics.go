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

// Package metrics holds the process-wide Prometheus collectors shared
// by the relay, the proxy drivers and the admin server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/klinvill/tlsproxy/common"
)

var (
	// SessionsActive tracks the number of relay sessions currently
	// running, one per accepted connection.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: common.App,
			Name:      "sessions_active",
			Help:      "Number of relay sessions currently running",
		},
	)

	// BytesRelayed counts bytes read from a half-relay's source,
	// labeled by direction name (e.g. "a->b").
	BytesRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "bytes_relayed_total",
			Help:      "Bytes read from a half-relay source, before any transform",
		},
		[]string{"direction"},
	)

	// FramesEmitted counts compression frames produced (Compress
	// direction) or consumed (Decompress direction), labeled by
	// direction name.
	FramesEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "compression_frames_total",
			Help:      "Compression frames produced or consumed by a half-relay",
		},
		[]string{"direction"},
	)

	// BackendDialFailures counts reverse-proxy backend connect
	// failures, labeled by backend address.
	BackendDialFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "backend_dial_failures_total",
			Help:      "Backend dial failures observed by the reverse proxy",
		},
		[]string{"backend"},
	)

	// AcceptErrors counts accept-loop errors that caused a connection
	// to be dropped before a session could start, labeled by proxy
	// role ("forward" or "reverse").
	AcceptErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: common.App,
			Name:      "accept_errors_total",
			Help:      "Connections dropped before a relay session could start",
		},
		[]string{"role"},
	)
)
