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

import "encoding/binary"

// SplitFrames partitions data, the concatenation of one or more
// frames, into non-overlapping slices of data that each correspond to
// one frame, preserving order.
//
// Frame boundaries are found by scanning for the 2-byte magic value;
// the DEFLATE payload of a frame may itself contain that byte pair, so
// this is a best-effort delimiter that is only correct when the magic
// never recurs inside a produced payload. See DESIGN.md / spec §9 for
// the length-prefixed alternative this proxy deliberately does not
// adopt.
//
// The splitter performs no validation: the first slice always starts
// at offset 0 even if data doesn't begin with the magic, and checking
// the header is left to the decoder.
func SplitFrames(data []byte) [][]byte {
	if len(data) == 0 {
		return nil
	}

	indices := []int{0}
	for i := 1; i+1 < len(data); i++ {
		if magicAt(data, i) {
			indices = append(indices, i)
		}
	}
	indices = append(indices, len(data))

	frames := make([][]byte, 0, len(indices)-1)
	for i := 0; i+1 < len(indices); i++ {
		start, end := indices[i], indices[i+1]
		if start == end {
			continue
		}
		frames = append(frames, data[start:end])
	}
	return frames
}

// magicAt reports whether the 2-byte magic value starts at offset i in
// data. Kept separate from SplitFrames' hot loop for testability.
func magicAt(data []byte, i int) bool {
	if i+2 > len(data) {
		return false
	}
	return binary.BigEndian.Uint16(data[i:i+2]) == HeaderMagic
}
