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
)

// SelectorLength is the size of an ink! message selector.
const SelectorLength = 4

// Selector identifies a contract message. It is the first four bytes of the
// BLAKE2b-256 hash of the message label, e.g. `PSP22::total_supply`.
type Selector [SelectorLength]byte

// SelectorFor derives the selector of the message with the given label.
func SelectorFor(label string) Selector {
	hash := Blake256([]byte(label))
	var s Selector
	copy(s[:], hash[:SelectorLength])
	return s
}

// SelectorFromHex parses a selector such as `0x162df8c2`.
func SelectorFromHex(s string) (Selector, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return Selector{}, fmt.Errorf("could not decode selector: %w", err)
	}
	if len(raw) != SelectorLength {
		return Selector{}, fmt.Errorf("invalid selector length (have: %d, want: %d)", len(raw), SelectorLength)
	}
	var sel Selector
	copy(sel[:], raw)
	return sel, nil
}

func (s Selector) Hex() string {
	return "0x" + hex.EncodeToString(s[:])
}

func (s Selector) String() string {
	return s.Hex()
}

func (s Selector) MarshalText() ([]byte, error) {
	return []byte(s.Hex()), nil
}

func (s *Selector) UnmarshalText(text []byte) error {
	parsed, err := SelectorFromHex(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
