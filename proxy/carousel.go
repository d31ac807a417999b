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

import "github.com/pkg/errors"

func newError(format string, args ...any) error {
	format = "proxy: " + format
	return errors.Errorf(format, args...)
}

// ErrEmptyBackendList is returned by NewCarousel when given no
// backend addresses; a reverse proxy cannot run without at least one.
var ErrEmptyBackendList = newError("backend list is empty")

// Carousel is an infinite cyclic iterator over a fixed ordered list of
// backend addresses. It is not safe for concurrent use: the reverse
// proxy's accept loop is its sole owner and caller, exactly once per
// accepted connection, so no synchronization is needed.
type Carousel struct {
	backends []string
	pos      int
}

// NewCarousel returns a Carousel cycling through backends in order.
// Fails with ErrEmptyBackendList if backends is empty.
func NewCarousel(backends []string) (*Carousel, error) {
	if len(backends) == 0 {
		return nil, ErrEmptyBackendList
	}
	cp := make([]string, len(backends))
	copy(cp, backends)
	return &Carousel{backends: cp}, nil
}

// Next returns the next backend address, wrapping around to the start
// of the list after the last one.
func (c *Carousel) Next() string {
	addr := c.backends[c.pos]
	c.pos = (c.pos + 1) % len(c.backends)
	return addr
}
