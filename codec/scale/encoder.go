// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package scale

import (
	"bytes"
	"encoding/binary"
	"math/bits"

	"github.com/holiman/uint256"
)

// Encoder writes values in the SCALE binary format used by Substrate nodes and
// ink! contracts. Fixed-width integers are little-endian, lengths and compact
// integers use the variable-width compact encoding.
type Encoder struct {
	buf bytes.Buffer
}

// NewEncoder creates an empty encoder.
func NewEncoder() *Encoder {
	e := Encoder{}
	return &e
}

// Bytes returns the encoded data written so far.
func (e *Encoder) Bytes() []byte {
	out := make([]byte, e.buf.Len())
	copy(out, e.buf.Bytes())
	return out
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int {
	return e.buf.Len()
}

// Raw appends the given bytes without any length prefix.
func (e *Encoder) Raw(data []byte) {
	e.buf.Write(data)
}

func (e *Encoder) U8(v uint8) {
	e.buf.WriteByte(v)
}

func (e *Encoder) Bool(v bool) {
	if v {
		e.buf.WriteByte(1)
		return
	}
	e.buf.WriteByte(0)
}

func (e *Encoder) U16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) U32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
}

func (e *Encoder) U64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf.Write(b[:])
}

// U128 writes the lower 128 bits of the given integer. Callers are responsible
// for checking that the value fits.
func (e *Encoder) U128(v *uint256.Int) {
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], v[0])
	binary.LittleEndian.PutUint64(b[8:16], v[1])
	e.buf.Write(b[:])
}

// Compact writes an unsigned integer in compact encoding.
func (e *Encoder) Compact(v uint64) {
	switch {
	case v < 1<<6:
		e.buf.WriteByte(byte(v << 2))
	case v < 1<<14:
		e.U16(uint16(v<<2) | 0b01)
	case v < 1<<30:
		e.U32(uint32(v<<2) | 0b10)
	default:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], v)
		n := (bits.Len64(v) + 7) / 8
		e.buf.WriteByte(byte(n-4)<<2 | 0b11)
		e.buf.Write(b[:n])
	}
}

// CompactInt writes an unsigned integer of up to 128 bits in compact encoding.
func (e *Encoder) CompactInt(v *uint256.Int) {
	if v.IsUint64() {
		e.Compact(v.Uint64())
		return
	}
	var b [32]byte
	binary.LittleEndian.PutUint64(b[0:8], v[0])
	binary.LittleEndian.PutUint64(b[8:16], v[1])
	binary.LittleEndian.PutUint64(b[16:24], v[2])
	binary.LittleEndian.PutUint64(b[24:32], v[3])
	n := (v.BitLen() + 7) / 8
	e.buf.WriteByte(byte(n-4)<<2 | 0b11)
	e.buf.Write(b[:n])
}

// Vec writes a compact length prefix followed by the given bytes.
func (e *Encoder) Vec(data []byte) {
	e.Compact(uint64(len(data)))
	e.buf.Write(data)
}

// String writes a UTF-8 string as a length-prefixed byte vector.
func (e *Encoder) String(s string) {
	e.Vec([]byte(s))
}

// None writes the empty option marker.
func (e *Encoder) None() {
	e.buf.WriteByte(0)
}

// Some writes the present option marker; the caller writes the value next.
func (e *Encoder) Some() {
	e.buf.WriteByte(1)
}

// Prefixed wraps the given data with its compact length, as is done for whole
// extrinsics and for opaque payloads.
func Prefixed(data []byte) []byte {
	e := NewEncoder()
	e.Vec(data)
	return e.Bytes()
}
