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

	"golang.org/x/crypto/blake2b"
)

// Hash is a 32-byte block or extrinsic hash.
type Hash [32]byte

// ZeroHash is the empty hash value.
var ZeroHash Hash

// Blake256 hashes the concatenation of the given inputs with BLAKE2b-256.
func Blake256(data ...[]byte) Hash {
	h, _ := blake2b.New256(nil)
	for _, d := range data {
		_, _ = h.Write(d)
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// HashFromHex parses a 0x-prefixed or bare hex string into a hash.
func HashFromHex(s string) (Hash, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return ZeroHash, fmt.Errorf("could not decode hex: %w", err)
	}
	if len(raw) != len(ZeroHash) {
		return ZeroHash, fmt.Errorf("invalid hash length (have: %d, want: %d)", len(raw), len(ZeroHash))
	}
	var h Hash
	copy(h[:], raw)
	return h, nil
}

// Hex returns the 0x-prefixed hex representation used on the JSON-RPC wire.
func (h Hash) Hex() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) String() string {
	return h.Hex()
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte {
	out := make([]byte, len(h))
	copy(out, h[:])
	return out
}

func (h Hash) IsZero() bool {
	return h == ZeroHash
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := HashFromHex(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
