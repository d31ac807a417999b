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
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"
)

// Decoder wraps an underlying sink and consumes exactly one frame: the
// first write must begin with a valid DEFLATE header, and every
// subsequent write feeds more of that same frame's compressed payload.
// A second frame in the same Decoder is a protocol error at this
// layer; the frame splitter (SplitFrames) is what produces
// one-frame-per-Decoder inputs for the duplex relay.
type Decoder struct {
	sink       io.Writer
	parsedHdr  bool
	finished   bool
	compressed bytes.Buffer
}

// NewDecoder returns a Decoder that writes the decompressed plaintext
// of one frame to sink.
func NewDecoder(sink io.Writer) *Decoder {
	return &Decoder{sink: sink}
}

// Write feeds buf into the decoder. On the first call the leading
// SerializedSize() bytes must form a valid DEFLATE header; the
// returned byte count includes those header bytes so an outer
// write-all loop still makes forward progress even when the first
// call only consumes the header.
func (d *Decoder) Write(buf []byte) (int, error) {
	if d.finished {
		return 0, ErrIllegalState
	}

	written := 0
	if !d.parsedHdr {
		scheme, err := ParseHeader(buf)
		if err != nil {
			return 0, err
		}
		if scheme != SchemeDeflate {
			return 0, ErrUnsupportedScheme
		}
		d.parsedHdr = true
		written = SerializedSize()
	}

	n, err := d.compressed.Write(buf[written:])
	return written + n, err
}

// Finish consumes the decoder, inflating the accumulated DEFLATE
// payload to the sink, and returns the sink for further use. The
// payload is materialized at Finish rather than byte-by-byte on each
// Write, since every Decoder here handles exactly one frame already
// bounded to at most the relay's read-buffer size — see DESIGN.md.
func (d *Decoder) Finish() (io.Writer, error) {
	if d.finished {
		return nil, ErrIllegalState
	}
	d.finished = true

	if !d.parsedHdr {
		return nil, ErrShort
	}

	fr := flate.NewReader(&d.compressed)
	defer fr.Close()

	if _, err := io.Copy(d.sink, fr); err != nil {
		return nil, err
	}
	return d.sink, nil
}

// DecompressFrame is a one-shot helper that validates the header and
// inflates the remainder of frame, returning the plaintext payload.
func DecompressFrame(frame []byte) ([]byte, error) {
	out := newWriteBuffer()
	defer out.Release()

	dec := NewDecoder(out)
	if _, err := dec.Write(frame); err != nil {
		return nil, err
	}
	if _, err := dec.Finish(); err != nil {
		return nil, err
	}

	plain := make([]byte, len(out.Bytes()))
	copy(plain, out.Bytes())
	return plain, nil
}
