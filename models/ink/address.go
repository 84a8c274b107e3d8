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
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// AddressLength is the size of an account identifier in bytes.
const AddressLength = 32

const checksumLength = 2

var ss58Prefix = []byte("SS58PRE")

// Address is a 32-byte account identifier. Its human-readable form is the
// SS58 encoding, which adds a network prefix and a checksum.
type Address [AddressLength]byte

// ZeroAddress is the all-zero account identifier.
var ZeroAddress Address

// ParseAddress decodes an SS58 string, or a 0x-prefixed hex string holding the
// raw 32 bytes. It returns the network prefix found in the SS58 form, or
// DefaultPrefix for raw hex input.
func ParseAddress(s string) (Address, uint16, error) {
	if strings.HasPrefix(s, "0x") {
		raw, err := hex.DecodeString(s[2:])
		if err != nil {
			return ZeroAddress, 0, fmt.Errorf("could not decode hex address: %w", err)
		}
		if len(raw) != AddressLength {
			return ZeroAddress, 0, fmt.Errorf("invalid address length (have: %d, want: %d)", len(raw), AddressLength)
		}
		var a Address
		copy(a[:], raw)
		return a, DefaultPrefix, nil
	}

	raw, err := base58.Decode(s)
	if err != nil {
		return ZeroAddress, 0, fmt.Errorf("could not decode base58: %w", err)
	}
	if len(raw) == 0 {
		return ZeroAddress, 0, fmt.Errorf("empty address")
	}

	// Prefixes below 64 take one byte. Larger ones are packed in two bytes,
	// flagged by the 0b01 marker in the top bits of the first byte.
	var prefix uint16
	var offset int
	switch {
	case raw[0] < 64:
		prefix = uint16(raw[0])
		offset = 1
	case raw[0] < 128:
		if len(raw) < 2 {
			return ZeroAddress, 0, fmt.Errorf("truncated address prefix")
		}
		lower := (raw[0] << 2) | (raw[1] >> 6)
		upper := raw[1] & 0b00111111
		prefix = uint16(lower) | uint16(upper)<<8
		offset = 2
	default:
		return ZeroAddress, 0, fmt.Errorf("reserved address prefix (%d)", raw[0])
	}

	if len(raw) != offset+AddressLength+checksumLength {
		return ZeroAddress, 0, fmt.Errorf("invalid address length (have: %d, want: %d)", len(raw), offset+AddressLength+checksumLength)
	}

	body := raw[:offset+AddressLength]
	want := checksum(body)
	have := raw[offset+AddressLength:]
	if want[0] != have[0] || want[1] != have[1] {
		return ZeroAddress, 0, fmt.Errorf("invalid address checksum (have: %x, want: %x)", have, want[:])
	}

	var a Address
	copy(a[:], raw[offset:offset+AddressLength])

	return a, prefix, nil
}

// AddressFromBytes copies a raw 32-byte identifier.
func AddressFromBytes(raw []byte) (Address, error) {
	if len(raw) != AddressLength {
		return ZeroAddress, fmt.Errorf("invalid address length (have: %d, want: %d)", len(raw), AddressLength)
	}
	var a Address
	copy(a[:], raw)
	return a, nil
}

// SS58 encodes the address for the network with the given prefix.
func (a Address) SS58(prefix uint16) string {
	var body []byte
	if prefix < 64 {
		body = append(body, byte(prefix))
	} else {
		first := byte((prefix&0b0000_0000_1111_1100)>>2) | 0b01000000
		second := byte(prefix>>8) | byte(prefix&0b0000_0000_0000_0011)<<6
		body = append(body, first, second)
	}
	body = append(body, a[:]...)
	sum := checksum(body)
	body = append(body, sum[:]...)
	return base58.Encode(body)
}

// Hex returns the raw identifier as a 0x-prefixed hex string.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// String returns the SS58 form with the generic Substrate prefix.
func (a Address) String() string {
	return a.SS58(DefaultPrefix)
}

func (a Address) IsZero() bool {
	return a == ZeroAddress
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, _, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func checksum(body []byte) [checksumLength]byte {
	h, _ := blake2b.New512(nil)
	_, _ = h.Write(ss58Prefix)
	_, _ = h.Write(body)
	var sum [checksumLength]byte
	copy(sum[:], h.Sum(nil))
	return sum
}
