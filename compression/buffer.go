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

import "github.com/valyala/bytebufferpool"

// writeBuffer is a pooled, growable byte buffer used to assemble one
// frame (CompressFrame) or one decompressed payload (DecompressFrame)
// at a time. Pooling keeps the relay's per-read-batch allocations off
// the GC's hot path; see internal/metrics for the counters that track
// how many frames flow through it.
type writeBuffer struct {
	bb *bytebufferpool.ByteBuffer
}

func newWriteBuffer() *writeBuffer {
	return &writeBuffer{bb: bytebufferpool.Get()}
}

func (w *writeBuffer) Write(p []byte) (int, error) {
	if w.bb == nil {
		w.bb = bytebufferpool.Get()
	}
	return w.bb.Write(p)
}

func (w *writeBuffer) Bytes() []byte {
	if w.bb == nil {
		return nil
	}
	return w.bb.B
}

// Release returns the underlying buffer to the pool. Callers must not
// use the writeBuffer, or any slice returned by Bytes, afterwards.
func (w *writeBuffer) Release() {
	if w.bb != nil {
		bytebufferpool.Put(w.bb)
		w.bb = nil
	}
}
