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

//go:build !linux

package transparent

import (
	"context"
	"net"
)

// listenTransparent has no implementation outside Linux: there is no
// portable equivalent of IP_TRANSPARENT, so transparent interception
// always fails here, and so does the forward proxy, which has no other
// way to learn its upstream address.
func listenTransparent(_ context.Context, _ string) (net.Listener, error) {
	return nil, ErrSocketOptionUnsupported
}
