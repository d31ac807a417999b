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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	hdr := NewHeader(SchemeDeflate)
	require.Len(t, hdr, SerializedSize())

	scheme, err := ParseHeader(hdr)
	require.NoError(t, err)
	assert.Equal(t, SchemeDeflate, scheme)
}

func TestParseHeaderShort(t *testing.T) {
	_, err := ParseHeader([]byte{0xBE})
	assert.ErrorIs(t, err, ErrShort)
}

func TestParseHeaderMalformed(t *testing.T) {
	buf := []byte{0x00, 0x00, byte(SchemeDeflate)}
	_, err := ParseHeader(buf)
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestParseHeaderUnknownScheme(t *testing.T) {
	buf := NewHeader(SchemeDeflate)
	buf[2] = 0xFF
	_, err := ParseHeader(buf)
	assert.ErrorIs(t, err, ErrUnknownScheme)
}

func TestSchemeString(t *testing.T) {
	assert.Equal(t, "deflate", SchemeDeflate.String())
	assert.Equal(t, "unknown", Scheme(0xFF).String())
	assert.True(t, SchemeDeflate.Valid())
	assert.False(t, Scheme(0xFF).Valid())
}

func TestCompressDecompressFrameRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"hello, world",
		strings.Repeat("the quick brown fox jumps over the lazy dog ", 200),
	}

	for _, plain := range cases {
		frame, err := CompressFrame([]byte(plain))
		require.NoError(t, err)

		got, err := DecompressFrame(frame)
		require.NoError(t, err)
		assert.Equal(t, plain, string(got))
	}
}

func TestCompressFrameStartsWithHeader(t *testing.T) {
	frame, err := CompressFrame([]byte("payload"))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(frame), SerializedSize())

	scheme, err := ParseHeader(frame)
	require.NoError(t, err)
	assert.Equal(t, SchemeDeflate, scheme)
}

func TestDecompressFrameRejectsUnknownScheme(t *testing.T) {
	buf := NewHeader(SchemeDeflate)
	buf[2] = 0xFF
	_, err := DecompressFrame(buf)
	assert.ErrorIs(t, err, ErrUnknownScheme)
}

func TestEncoderWriteAfterFinish(t *testing.T) {
	var out bytes.Buffer
	enc := NewEncoder(&out)
	_, err := enc.Finish()
	require.NoError(t, err)

	_, err = enc.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrIllegalState)

	_, err = enc.Finish()
	assert.ErrorIs(t, err, ErrIllegalState)
}

func TestDecoderWriteAfterFinish(t *testing.T) {
	frame, err := CompressFrame([]byte("payload"))
	require.NoError(t, err)

	var out bytes.Buffer
	dec := NewDecoder(&out)
	_, err = dec.Write(frame)
	require.NoError(t, err)
	_, err = dec.Finish()
	require.NoError(t, err)

	_, err = dec.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrIllegalState)

	_, err = dec.Finish()
	assert.ErrorIs(t, err, ErrIllegalState)
}

func TestDecoderFinishWithoutHeader(t *testing.T) {
	var out bytes.Buffer
	dec := NewDecoder(&out)
	_, err := dec.Finish()
	assert.ErrorIs(t, err, ErrShort)
}

func TestEncoderMultipleWritesBeforeFinish(t *testing.T) {
	var out bytes.Buffer
	enc := NewEncoder(&out)

	_, err := enc.Write([]byte("foo"))
	require.NoError(t, err)
	_, err = enc.Write([]byte("bar"))
	require.NoError(t, err)
	_, err = enc.Finish()
	require.NoError(t, err)

	got, err := DecompressFrame(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "foobar", string(got))
}

func TestSplitFramesEmpty(t *testing.T) {
	assert.Nil(t, SplitFrames(nil))
	assert.Nil(t, SplitFrames([]byte{}))
}

func TestSplitFramesSingleFrame(t *testing.T) {
	frame, err := CompressFrame([]byte("one frame"))
	require.NoError(t, err)

	frames := SplitFrames(frame)
	require.Len(t, frames, 1)
	assert.Equal(t, frame, frames[0])
}

func TestSplitFramesConcatenated(t *testing.T) {
	a, err := CompressFrame([]byte("first"))
	require.NoError(t, err)
	b, err := CompressFrame([]byte("second"))
	require.NoError(t, err)

	combined := append(append([]byte{}, a...), b...)
	frames := SplitFrames(combined)
	require.Len(t, frames, 2)

	p1, err := DecompressFrame(frames[0])
	require.NoError(t, err)
	assert.Equal(t, "first", string(p1))

	p2, err := DecompressFrame(frames[1])
	require.NoError(t, err)
	assert.Equal(t, "second", string(p2))
}

func TestSplitFramesPreservesLeadingBytesWithoutMagic(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	frames := SplitFrames(data)
	require.Len(t, frames, 1)
	assert.Equal(t, data, frames[0])
}

func TestSplitFramesOrderPreserved(t *testing.T) {
	var combined []byte
	var plains []string
	for i := 0; i < 5; i++ {
		plain := strings.Repeat("x", i+1)
		plains = append(plains, plain)
		f, err := CompressFrame([]byte(plain))
		require.NoError(t, err)
		combined = append(combined, f...)
	}

	frames := SplitFrames(combined)
	require.Len(t, frames, len(plains))
	for i, f := range frames {
		got, err := DecompressFrame(f)
		require.NoError(t, err)
		assert.Equal(t, plains[i], string(got))
	}
}
