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

// Package compression implements the wire framing used to carry
// compressed records between the forward and reverse proxies: a
// 3-byte header (magic + scheme) followed by a single DEFLATE stream,
// the streaming encoder/decoder that produce and consume that framing,
// and the frame splitter that recovers independent frames from a
// concatenated buffer.
package compression

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// HeaderMagic identifies the start of a frame record. Parsers treat
// the first two bytes of any frame as this magic and reject otherwise.
const HeaderMagic uint16 = 0xBEEF

// headerSize is the number of bytes in a serialized header: 2 bytes
// of magic plus 1 byte of scheme.
const headerSize = 3

// Scheme identifies the compression codec used by a frame, modeled on
// the closed tag set described by IETF RFC 3749.
type Scheme uint8

// SchemeDeflate is the only scheme this proxy pair wires.
const SchemeDeflate Scheme = 1

var schemeNames = map[Scheme]string{
	SchemeDeflate: "deflate",
}

func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether s is a recognized scheme.
func (s Scheme) Valid() bool {
	_, ok := schemeNames[s]
	return ok
}

func newError(format string, args ...any) error {
	format = "compression: " + format
	return errors.Errorf(format, args...)
}

var (
	// ErrShort is returned by ParseHeader when fewer than headerSize
	// bytes are supplied.
	ErrShort = newError("buffer shorter than header")

	// ErrMalformedHeader is returned when the first two bytes of a
	// buffer do not equal HeaderMagic. A buffer without the magic is
	// never treated as legacy plaintext; it is always an error.
	ErrMalformedHeader = newError("magic value not found")

	// ErrUnknownScheme is returned when the magic matches but the
	// scheme byte does not map to a registered Scheme.
	ErrUnknownScheme = newError("unrecognized compression scheme")

	// ErrUnsupportedScheme is returned by the streaming decoder when
	// the parsed scheme is valid but isn't DEFLATE.
	ErrUnsupportedScheme = newError("only the deflate scheme is supported")

	// ErrIllegalState guards internal bug conditions: calling Write or
	// Finish on an Encoder or Decoder that has already finished.
	ErrIllegalState = newError("illegal state")
)

// NewHeader returns the serialized 3-byte header for scheme.
func NewHeader(scheme Scheme) []byte {
	buf := make([]byte, headerSize)
	binary.BigEndian.PutUint16(buf, HeaderMagic)
	buf[2] = byte(scheme)
	return buf
}

// ParseHeader inspects the first headerSize bytes of buf and returns
// the scheme they encode. Rejection is strict: a buffer whose first
// two bytes are not HeaderMagic fails with ErrMalformedHeader even if
// it happens to contain well-formed-looking data past that point.
func ParseHeader(buf []byte) (Scheme, error) {
	if len(buf) < headerSize {
		return 0, ErrShort
	}
	if binary.BigEndian.Uint16(buf[:2]) != HeaderMagic {
		return 0, ErrMalformedHeader
	}

	scheme := Scheme(buf[2])
	if !scheme.Valid() {
		return 0, ErrUnknownScheme
	}
	return scheme, nil
}

// SerializedSize returns the byte length of any serialized header.
func SerializedSize() int {
	return headerSize
}
