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

package rpc

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/OneOfOne/xxhash"
	"golang.org/x/crypto/blake2b"

	"github.com/optakt/ink-caller/codec/scale"
	"github.com/optakt/ink-caller/models/ink"
)

// AccountInfo returns the native nonce and balances of the account. Accounts
// that do not exist have empty info.
func (c *Client) AccountInfo(ctx context.Context, address ink.Address) (ink.AccountInfo, error) {

	key := accountKey(address)

	var value *string
	err := c.Call(ctx, &value, "state_getStorage", encodeHex(key))
	if err != nil {
		return ink.AccountInfo{}, fmt.Errorf("could not get account storage (address: %s): %w", address, err)
	}
	if value == nil {
		return ink.AccountInfo{}, nil
	}

	data, err := decodeHex(*value)
	if err != nil {
		return ink.AccountInfo{}, fmt.Errorf("could not decode account storage: %w", err)
	}

	return decodeAccountInfo(data)
}

func decodeAccountInfo(data []byte) (ink.AccountInfo, error) {

	dec := scale.NewDecoder(data)

	nonce, err := dec.U32()
	if err != nil {
		return ink.AccountInfo{}, fmt.Errorf("could not decode nonce: %w", err)
	}

	// Skip the consumers, providers and sufficients reference counters.
	_, err = dec.Fixed(12)
	if err != nil {
		return ink.AccountInfo{}, fmt.Errorf("could not decode reference counters: %w", err)
	}

	free, err := dec.U128()
	if err != nil {
		return ink.AccountInfo{}, fmt.Errorf("could not decode free balance: %w", err)
	}

	reserved, err := dec.U128()
	if err != nil {
		return ink.AccountInfo{}, fmt.Errorf("could not decode reserved balance: %w", err)
	}

	info := ink.AccountInfo{
		Nonce:    nonce,
		Free:     ink.BalanceFromInt(free),
		Reserved: ink.BalanceFromInt(reserved),
	}

	return info, nil
}

// accountKey returns the storage key of `System.Account` for the address,
// which is a Blake2_128Concat map.
func accountKey(address ink.Address) []byte {
	key := make([]byte, 0, 16+16+16+ink.AddressLength)
	key = append(key, twox128([]byte("System"))...)
	key = append(key, twox128([]byte("Account"))...)
	key = append(key, blake2128(address[:])...)
	key = append(key, address[:]...)
	return key
}

func twox128(data []byte) []byte {
	out := make([]byte, 16)
	binary.LittleEndian.PutUint64(out[0:], xxhash.Checksum64S(data, 0))
	binary.LittleEndian.PutUint64(out[8:], xxhash.Checksum64S(data, 1))
	return out
}

func blake2128(data []byte) []byte {
	h, _ := blake2b.New(16, nil)
	_, _ = h.Write(data)
	return h.Sum(nil)
}
