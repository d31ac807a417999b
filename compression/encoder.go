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

package compression

import (
	"io"

	"github.com/klauspost/compress/flate"
)

// Encoder wraps an underlying sink and a DEFLATE encoder, prepending
// the 3-byte frame header to the sink exactly once, before any
// compressed bytes, on the first call to Write.
type Encoder struct {
	sink     io.Writer
	enc      *flate.Writer
	wroteHdr bool
	finished bool
}

// NewEncoder returns an Encoder that writes framed, DEFLATE-compressed
// output to sink.
func NewEncoder(sink io.Writer) *Encoder {
	enc, _ := flate.NewWriter(sink, flate.DefaultCompression)
	return &Encoder{sink: sink, enc: enc}
}

// Write feeds p into the encoder. It returns the number of input bytes
// consumed, matching the conventional streaming-codec contract — not
// the number of bytes emitted to the sink, which may lag behind due to
// internal buffering.
func (e *Encoder) Write(p []byte) (int, error) {
	if e.finished {
		return 0, ErrIllegalState
	}

	if !e.wroteHdr {
		if _, err := e.sink.Write(NewHeader(SchemeDeflate)); err != nil {
			return 0, err
		}
		e.wroteHdr = true
	}

	return e.enc.Write(p)
}

// Finish consumes the encoder, flushing the final DEFLATE blocks to
// the sink, and returns the sink for further use by the caller.
// Writing after Finish fails with ErrIllegalState.
func (e *Encoder) Finish() (io.Writer, error) {
	if e.finished {
		return nil, ErrIllegalState
	}
	e.finished = true

	if !e.wroteHdr {
		if _, err := e.sink.Write(NewHeader(SchemeDeflate)); err != nil {
			return nil, err
		}
		e.wroteHdr = true
	}

	if err := e.enc.Close(); err != nil {
		return nil, err
	}
	return e.sink, nil
}

// CompressFrame is a one-shot helper that compresses buf into a single
// framed record: header followed by exactly one DEFLATE stream. It is
// the operation the duplex relay runs once per read batch.
func CompressFrame(buf []byte) ([]byte, error) {
	out := newWriteBuffer()
	defer out.Release()

	enc := NewEncoder(out)
	if _, err := enc.Write(buf); err != nil {
		return nil, err
	}
	if _, err := enc.Finish(); err != nil {
		return nil, err
	}

	frame := make([]byte, len(out.Bytes()))
	copy(frame, out.Bytes())
	return frame, nil
}
