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

package signer

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/ChainSafe/go-schnorrkel"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/optakt/ink-caller/models/ink"
)

// SeedLength is the size of the secret seed of a local key.
const SeedLength = 32

// Local signs with a key held in memory. It never blocks.
type Local struct {
	scheme  ink.Scheme
	address ink.Address
	sign    func(message []byte) ([]byte, error)
}

// NewLocal creates a local signer from a 32-byte secret seed.
func NewLocal(scheme ink.Scheme, seed []byte) (*Local, error) {

	if len(seed) != SeedLength {
		return nil, fmt.Errorf("invalid seed length (have: %d, want: %d)", len(seed), SeedLength)
	}

	l := Local{
		scheme: scheme,
	}

	switch scheme {

	case ink.SchemeEd25519:
		key := ed25519.NewKeyFromSeed(seed)
		copy(l.address[:], key.Public().(ed25519.PublicKey))
		l.sign = func(message []byte) ([]byte, error) {
			return ed25519.Sign(key, message), nil
		}

	case ink.SchemeSr25519:
		var raw [SeedLength]byte
		copy(raw[:], seed)
		mini, err := schnorrkel.NewMiniSecretKeyFromRaw(raw)
		if err != nil {
			return nil, fmt.Errorf("could not create sr25519 key: %w", err)
		}
		key := mini.ExpandEd25519()
		pub, err := key.Public()
		if err != nil {
			return nil, fmt.Errorf("could not derive sr25519 public key: %w", err)
		}
		l.address = pub.Encode()
		l.sign = func(message []byte) ([]byte, error) {
			sig, err := key.Sign(schnorrkel.NewSigningContext(substrateContext, message))
			if err != nil {
				return nil, err
			}
			encoded := sig.Encode()
			return encoded[:], nil
		}

	case ink.SchemeEcdsa:
		key := secp256k1.PrivKeyFromBytes(seed)
		l.address = ink.Address(ink.Blake256(key.PubKey().SerializeCompressed()))
		l.sign = func(message []byte) ([]byte, error) {
			hash := ink.Blake256(message)
			compact := ecdsa.SignCompact(key, hash[:], true)
			sig := make([]byte, 0, ink.EcdsaSignatureLength)
			sig = append(sig, compact[1:]...)
			sig = append(sig, compact[0]-compactOffset)
			return sig, nil
		}

	default:
		return nil, fmt.Errorf("unsupported signature scheme (%s)", scheme)
	}

	return &l, nil
}

// Address returns the account address of the key.
func (l *Local) Address() ink.Address {
	return l.address
}

// Scheme returns the signature scheme of the key.
func (l *Local) Scheme() ink.Scheme {
	return l.scheme
}

// Account returns the key as a selectable account.
func (l *Local) Account() ink.Account {
	account := ink.Account{
		Address: l.address,
		Name:    "Local",
		Source:  "local",
		Type:    l.scheme.String(),
		Origin:  ink.LocalOrigin,
	}
	return account
}

// Sign signs the unsigned transaction of the request.
func (l *Local) Sign(_ context.Context, req ink.SigningRequest) (ink.Signature, error) {

	if req.Signer != l.address {
		return ink.Signature{}, fmt.Errorf("signer mismatch (have: %s, want: %s)", req.Signer, l.address)
	}
	if len(req.Unsigned.Method) == 0 {
		return ink.Signature{}, fmt.Errorf("unsigned transaction has no call")
	}

	data, err := l.sign(req.Unsigned.Message())
	if err != nil {
		return ink.Signature{}, fmt.Errorf("could not sign transaction: %w", err)
	}

	sig := ink.Signature{
		Scheme: l.scheme,
		Data:   data,
	}

	return sig, nil
}
