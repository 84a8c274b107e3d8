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
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

// ErrUnexpectedEnd is returned when the input ends before a value is complete.
var ErrUnexpectedEnd = errors.New("unexpected end of input")

// Decoder reads SCALE-encoded values from a byte slice.
type Decoder struct {
	data []byte
	pos  int
}

// NewDecoder creates a decoder reading from the given data.
func NewDecoder(data []byte) *Decoder {
	d := Decoder{
		data: data,
	}
	return &d
}

// Remaining returns the number of bytes not consumed yet.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.pos
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int {
	return d.pos
}

// Fixed reads exactly n bytes.
func (d *Decoder) Fixed(n int) ([]byte, error) {
	if n < 0 || d.Remaining() < n {
		return nil, ErrUnexpectedEnd
	}
	out := make([]byte, n)
	copy(out, d.data[d.pos:d.pos+n])
	d.pos += n
	return out, nil
}

func (d *Decoder) U8() (uint8, error) {
	if d.Remaining() < 1 {
		return 0, ErrUnexpectedEnd
	}
	v := d.data[d.pos]
	d.pos++
	return v, nil
}

func (d *Decoder) Bool() (bool, error) {
	v, err := d.U8()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("invalid boolean byte (%x)", v)
	}
}

func (d *Decoder) U16() (uint16, error) {
	b, err := d.Fixed(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) U32() (uint32, error) {
	b, err := d.Fixed(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) U64() (uint64, error) {
	b, err := d.Fixed(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *Decoder) U128() (*uint256.Int, error) {
	b, err := d.Fixed(16)
	if err != nil {
		return nil, err
	}
	v := uint256.Int{
		binary.LittleEndian.Uint64(b[0:8]),
		binary.LittleEndian.Uint64(b[8:16]),
		0,
		0,
	}
	return &v, nil
}

// Compact reads a compact integer that must fit into 64 bits.
func (d *Decoder) Compact() (uint64, error) {
	v, err := d.CompactInt()
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("compact integer overflows 64 bits (%s)", v.ToBig())
	}
	return v.Uint64(), nil
}

// CompactInt reads a compact integer of up to 256 bits.
func (d *Decoder) CompactInt() (*uint256.Int, error) {
	first, err := d.U8()
	if err != nil {
		return nil, err
	}

	switch first & 0b11 {
	case 0b00:
		return uint256.NewInt(uint64(first >> 2)), nil

	case 0b01:
		next, err := d.U8()
		if err != nil {
			return nil, err
		}
		v := (uint64(next)<<8 | uint64(first)) >> 2
		return uint256.NewInt(v), nil

	case 0b10:
		rest, err := d.Fixed(3)
		if err != nil {
			return nil, err
		}
		raw := uint32(first) | uint32(rest[0])<<8 | uint32(rest[1])<<16 | uint32(rest[2])<<24
		return uint256.NewInt(uint64(raw >> 2)), nil

	default:
		n := int(first>>2) + 4
		if n > 32 {
			return nil, fmt.Errorf("compact integer too wide (%d bytes)", n)
		}
		raw, err := d.Fixed(n)
		if err != nil {
			return nil, err
		}
		var b [32]byte
		copy(b[:], raw)
		v := uint256.Int{
			binary.LittleEndian.Uint64(b[0:8]),
			binary.LittleEndian.Uint64(b[8:16]),
			binary.LittleEndian.Uint64(b[16:24]),
			binary.LittleEndian.Uint64(b[24:32]),
		}
		return &v, nil
	}
}

// Vec reads a length-prefixed byte vector.
func (d *Decoder) Vec() ([]byte, error) {
	n, err := d.Compact()
	if err != nil {
		return nil, fmt.Errorf("could not decode length: %w", err)
	}
	if uint64(d.Remaining()) < n {
		return nil, ErrUnexpectedEnd
	}
	return d.Fixed(int(n))
}

// Option reads an option marker and reports whether a value follows.
func (d *Decoder) Option() (bool, error) {
	return d.Bool()
}
