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
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// BalanceBits is the numeric width of balances on the ledger.
const BalanceBits = 128

// Balance is an unsigned amount. It can hold values wider than the ledger's
// numeric width so that out-of-range inputs can be detected and rejected
// rather than silently truncated.
type Balance struct {
	v uint256.Int
}

// MaxBalance is the largest balance representable on the ledger.
var MaxBalance = Balance{v: uint256.Int{^uint64(0), ^uint64(0), 0, 0}}

// NewBalance creates a balance from a 64-bit value.
func NewBalance(v uint64) Balance {
	return Balance{v: *uint256.NewInt(v)}
}

// BalanceFromInt copies the given 256-bit integer.
func BalanceFromInt(v *uint256.Int) Balance {
	return Balance{v: *v}
}

// ParseBalance parses a decimal string.
func ParseBalance(s string) (Balance, error) {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Balance{}, fmt.Errorf("invalid decimal amount (%s)", s)
	}
	if b.Sign() < 0 {
		return Balance{}, fmt.Errorf("negative amount (%s)", s)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return Balance{}, fmt.Errorf("amount exceeds 256 bits (%s)", s)
	}
	return Balance{v: *v}, nil
}

// Int returns a copy of the underlying integer.
func (b Balance) Int() *uint256.Int {
	v := b.v
	return &v
}

// Big returns the value as a big integer.
func (b Balance) Big() *big.Int {
	return b.v.ToBig()
}

// Fits reports whether the value is representable in the ledger's width.
func (b Balance) Fits() bool {
	return b.v.BitLen() <= BalanceBits
}

// Add returns the sum of both balances.
func (b Balance) Add(other Balance) Balance {
	var sum uint256.Int
	sum.Add(&b.v, &other.v)
	return Balance{v: sum}
}

func (b Balance) IsZero() bool {
	return b.v.IsZero()
}

func (b Balance) Cmp(other Balance) int {
	return b.v.Cmp(&other.v)
}

func (b Balance) Uint64() uint64 {
	return b.v.Uint64()
}

func (b Balance) String() string {
	return b.v.ToBig().String()
}

// MarshalJSON encodes balances as decimal strings, as JSON numbers can not hold
// 128-bit values without loss.
func (b Balance) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *Balance) UnmarshalJSON(data []byte) error {
	var s string
	err := json.Unmarshal(data, &s)
	if err != nil {
		return fmt.Errorf("could not decode balance string: %w", err)
	}
	parsed, err := ParseBalance(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// MarshalBinary encodes the balance as 32 big-endian bytes.
func (b Balance) MarshalBinary() ([]byte, error) {
	raw := b.v.Bytes32()
	return raw[:], nil
}

func (b *Balance) UnmarshalBinary(data []byte) error {
	if len(data) > 32 {
		return fmt.Errorf("invalid balance length (have: %d, max: 32)", len(data))
	}
	b.v.SetBytes(data)
	return nil
}
