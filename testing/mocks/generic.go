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

package mocks

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/optakt/ink-caller/models/ink"
)

// Global variables that can be used for testing. They are non-nil valid values
// for the types commonly needed to test the caller components.
var (
	NoopLogger = zerolog.New(io.Discard)

	GenericError = errors.New("dummy error")

	GenericNonce = uint64(7)

	GenericBytes = []byte(`test`)

	GenericSelector = ink.Selector{0x16, 0x2d, 0xf8, 0xc2}

	GenericBalance = ink.NewBalance(1_000_000_000_000)

	GenericWeight = ink.Weight{RefTime: 9_375_000_000, ProofSize: 524_288}

	GenericParams = ink.Params{
		Network:     ink.Development,
		Prefix:      ink.DefaultPrefix,
		Pallet:      8,
		Call:        ink.CallIndex,
		Transaction: GenericWeight,
		Query:       ink.DefaultQueryWeight,
	}

	GenericRuntime = ink.RuntimeVersion{
		SpecName:    "substrate-contracts-node",
		SpecVersion: 100,
		TxVersion:   1,
	}

	GenericPayload = ink.CallPayload{
		Contract: GenericAddress(0),
		Value:    ink.NewBalance(0),
		Budget:   GenericWeight,
		Data:     GenericSelector[:],
	}

	GenericUnsigned = ink.Unsigned{
		Method:      []byte{0x08, 0x06, 0x00},
		Era:         ink.ImmortalEra,
		Nonce:       GenericNonce,
		SpecVersion: GenericRuntime.SpecVersion,
		TxVersion:   GenericRuntime.TxVersion,
		Genesis:     GenericHash(0),
		Checkpoint:  GenericHash(0),
	}

	GenericSignature = ink.Signature{
		Scheme: ink.SchemeEd25519,
		Data:   make([]byte, ink.Ed25519SignatureLength),
	}

	GenericEvents = []ink.Event{
		{Pallet: "Contracts", Name: "ContractEmitted"},
		{Pallet: "System", Name: "ExtrinsicSuccess"},
	}
)

func GenericAddresses(number int) []ink.Address {
	// Ensure consistent deterministic results.
	random := rand.New(rand.NewSource(0))

	var addresses []ink.Address
	for i := 0; i < number; i++ {
		var a ink.Address
		binary.BigEndian.PutUint64(a[0:], random.Uint64())
		binary.BigEndian.PutUint64(a[8:], random.Uint64())
		binary.BigEndian.PutUint64(a[16:], random.Uint64())
		binary.BigEndian.PutUint64(a[24:], random.Uint64())

		addresses = append(addresses, a)
	}

	return addresses
}

func GenericAddress(index int) ink.Address {
	return GenericAddresses(index + 1)[index]
}

func GenericHashes(number int) []ink.Hash {
	// Ensure consistent deterministic results.
	random := rand.New(rand.NewSource(1))

	var hashes []ink.Hash
	for i := 0; i < number; i++ {
		var h ink.Hash
		binary.BigEndian.PutUint64(h[0:], random.Uint64())
		binary.BigEndian.PutUint64(h[8:], random.Uint64())
		binary.BigEndian.PutUint64(h[16:], random.Uint64())
		binary.BigEndian.PutUint64(h[24:], random.Uint64())

		hashes = append(hashes, h)
	}

	return hashes
}

func GenericHash(index int) ink.Hash {
	return GenericHashes(index + 1)[index]
}

func GenericAccounts(number int) []ink.Account {
	addresses := GenericAddresses(number)

	accounts := make([]ink.Account, 0, number)
	for i, address := range addresses {
		account := ink.Account{
			Address: address,
			Name:    fmt.Sprintf("account-%d", i),
			Source:  "polkadot-js",
			Type:    "ed25519",
			Origin:  ink.AgentOrigin("polkadot-js"),
		}
		accounts = append(accounts, account)
	}

	return accounts
}

func GenericAccount(index int) ink.Account {
	return GenericAccounts(index + 1)[index]
}
