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

package ink

import (
	"github.com/optakt/ink-caller/codec/scale"
)

// MaxSigningPayload is the size above which the signing payload is hashed
// before it is signed.
const MaxSigningPayload = 256

// ImmortalEra is the era encoding of a transaction that never expires.
var ImmortalEra = []byte{0x00}

// Unsigned is a partially-built transaction: everything that the signature
// covers, without the signature itself.
type Unsigned struct {
	Method       []byte
	Era          []byte
	Nonce        uint64
	Tip          Balance
	SpecVersion  uint32
	TxVersion    uint32
	Genesis      Hash
	Checkpoint   Hash
	BlockNumber  uint64
	MetadataHash bool
}

// Extra returns the signed extra data that travels with the extrinsic.
func (u Unsigned) Extra() []byte {
	enc := scale.NewEncoder()
	enc.Raw(u.Era)
	enc.Compact(u.Nonce)
	enc.CompactInt(u.Tip.Int())
	if u.MetadataHash {
		// Metadata hash verification is disabled.
		enc.U8(0)
	}
	return enc.Bytes()
}

// Additional returns the data that is signed but not transmitted.
func (u Unsigned) Additional() []byte {
	enc := scale.NewEncoder()
	enc.U32(u.SpecVersion)
	enc.U32(u.TxVersion)
	enc.Raw(u.Genesis[:])
	enc.Raw(u.Checkpoint[:])
	if u.MetadataHash {
		enc.None()
	}
	return enc.Bytes()
}

// Message returns the bytes a signer has to sign.
func (u Unsigned) Message() []byte {
	var payload []byte
	payload = append(payload, u.Method...)
	payload = append(payload, u.Extra()...)
	payload = append(payload, u.Additional()...)
	if len(payload) > MaxSigningPayload {
		hash := Blake256(payload)
		return hash[:]
	}
	return payload
}

// MortalEra encodes a mortal era starting at the given block and lasting for
// the given period, which is rounded to a power of two between 4 and 65536.
func MortalEra(block uint64, period uint64) []byte {
	if period < 4 {
		period = 4
	}
	if period > 1<<16 {
		period = 1 << 16
	}
	p := uint64(4)
	for p < period {
		p <<= 1
	}
	phase := block % p
	quantize := p >> 12
	if quantize < 1 {
		quantize = 1
	}
	quantized := phase / quantize * quantize

	zeros := uint64(0)
	for v := p; v&1 == 0; v >>= 1 {
		zeros++
	}
	low := zeros - 1
	if low < 1 {
		low = 1
	}
	if low > 15 {
		low = 15
	}
	encoded := uint16(low) | uint16(quantized/quantize)<<4

	return []byte{byte(encoded), byte(encoded >> 8)}
}
