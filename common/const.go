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

package common

const (
	// App is the process name used in the Prometheus metrics namespace
	// and the CLI's root command.
	App = "tlsproxy"

	// Version is the version string reported by --version; when a git
	// hash was stamped in at build time, the hash and build time are
	// appended to it.
	Version = "v0.1.0"

	// RelayBufferSize is the fixed size of the per-direction read
	// buffer each half-relay allocates. One Read call, one optional
	// compress/decompress pass, and the writes of its result (one, or
	// one per frame when decompressing) happen per buffer.
	RelayBufferSize = 1024
)
