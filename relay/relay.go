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

// Package relay implements the duplex byte pump that bridges two
// streams for the lifetime of one proxied connection, applying an
// independent, optional compression transform to each direction.
package relay

import (
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/klinvill/tlsproxy/common"
	"github.com/klinvill/tlsproxy/compression"
	"github.com/klinvill/tlsproxy/internal/metrics"
	"github.com/klinvill/tlsproxy/internal/rescue"
	"github.com/klinvill/tlsproxy/logger"
)

// Direction selects the per-batch transform a HalfRelay applies to
// bytes read from its source before writing them to its sink.
type Direction uint8

const (
	// DirNone passes bytes through unchanged.
	DirNone Direction = iota
	// DirCompress frames and compresses each read batch.
	DirCompress
	// DirDecompress splits each read batch into frames and
	// decompresses each independently.
	DirDecompress
)

func (d Direction) String() string {
	switch d {
	case DirCompress:
		return "compress"
	case DirDecompress:
		return "decompress"
	default:
		return "none"
	}
}

// halfCloser is anything capable of half-closing its write side; both
// stream.Stream and *net.TCPConn satisfy it.
type halfCloser interface {
	CloseWrite() error
}

// HalfRelay pumps bytes from src to dst, applying dir to every batch
// read, until src reaches EOF or either side errors.
type HalfRelay struct {
	name string
	src  io.Reader
	dst  io.Writer
	dir  Direction
}

// NewHalfRelay constructs a HalfRelay identified by name (used only in
// logs and metrics labels, e.g. "client->backend").
func NewHalfRelay(name string, src io.Reader, dst io.Writer, dir Direction) *HalfRelay {
	return &HalfRelay{name: name, src: src, dst: dst, dir: dir}
}

// Run executes the half-relay loop to completion: read up to
// common.RelayBufferSize bytes, transform, write, repeat, until EOF or
// error. It always attempts to half-close (or fully close, lacking
// that capability) dst's write side before returning.
func (h *HalfRelay) Run() error {
	defer h.shutdownSink()

	buf := make([]byte, common.RelayBufferSize)
	for {
		n, rerr := h.src.Read(buf)
		if n > 0 {
			if werr := h.transformAndWrite(buf[:n]); werr != nil {
				logger.Warnf("relay[%s]: write failed: %v", h.name, werr)
				return werr
			}
			metrics.BytesRelayed.WithLabelValues(h.name).Add(float64(n))
		}
		if rerr != nil {
			if rerr != io.EOF {
				logger.Warnf("relay[%s]: read failed: %v", h.name, rerr)
				return rerr
			}
			return nil
		}
	}
}

func (h *HalfRelay) transformAndWrite(batch []byte) error {
	switch h.dir {
	case DirNone:
		_, err := h.dst.Write(batch)
		return err

	case DirCompress:
		frame, err := compression.CompressFrame(batch)
		if err != nil {
			return err
		}
		metrics.FramesEmitted.WithLabelValues(h.name).Inc()
		_, err = h.dst.Write(frame)
		return err

	case DirDecompress:
		frames := compression.SplitFrames(batch)
		metrics.FramesEmitted.WithLabelValues(h.name).Add(float64(len(frames)))
		for _, f := range frames {
			plain, err := compression.DecompressFrame(f)
			if err != nil {
				return err
			}
			if _, err := h.dst.Write(plain); err != nil {
				return err
			}
		}
		return nil

	default:
		return compression.ErrIllegalState
	}
}

func (h *HalfRelay) shutdownSink() {
	if hc, ok := h.dst.(halfCloser); ok {
		_ = hc.CloseWrite()
		return
	}
	if c, ok := h.dst.(io.Closer); ok {
		_ = c.Close()
	}
}

// Session owns the two HalfRelays of one proxied connection and runs
// them to completion, tagging all of its logging with a per-connection
// correlation id.
type Session struct {
	ID string
	a  *HalfRelay
	b  *HalfRelay
}

// New constructs a Session that pumps a→b with dirAB and b→a with
// dirBA. a and b must each implement both io.Reader and io.Writer
// (stream.Stream does).
func New(a, b io.ReadWriter, dirAB, dirBA Direction) *Session {
	return &Session{
		ID: uuid.NewString(),
		a:  NewHalfRelay("a->b", a, b, dirAB),
		b:  NewHalfRelay("b->a", b, a, dirBA),
	}
}

// Run blocks until both half-relays have terminated. Each runs in its
// own goroutine, protected by rescue.HandleCrash so a panic in one
// direction can't take down the accept loop.
func (s *Session) Run() {
	metrics.SessionsActive.Inc()
	defer metrics.SessionsActive.Dec()

	logger.Infof("session[%s]: started", s.ID)
	defer logger.Infof("session[%s]: ended", s.ID)

	var wg sync.WaitGroup
	wg.Add(2)

	run := func(h *HalfRelay) {
		defer wg.Done()
		defer rescue.HandleCrash()
		if err := h.Run(); err != nil {
			logger.Warnf("session[%s]: half-relay %s ended: %v", s.ID, h.name, err)
		}
	}

	go run(s.a)
	go run(s.b)
	wg.Wait()
}
