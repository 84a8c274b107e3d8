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
	"crypto/ed25519"
	"fmt"

	"github.com/ChainSafe/go-schnorrkel"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/optakt/ink-caller/failure"
	"github.com/optakt/ink-caller/models/ink"
)

// Signing context used by Substrate for sr25519 signatures.
var substrateContext = []byte("substrate")

// ECDSA compact signatures carry the recovery ID with this offset, plus four
// when the public key is compressed.
const compactOffset = 27 + 4

// Verify checks that the signature over the message was produced by the
// account with the given address. It fails with an InvalidSignature error.
func Verify(address ink.Address, message []byte, sig ink.Signature) error {

	invalid := func(text string, fields ...failure.FieldFunc) error {
		return failure.InvalidSignature{
			Description: failure.NewDescription(text, fields...),
			Address:     address,
			Scheme:      sig.Scheme,
		}
	}

	if len(sig.Data) != sig.Scheme.Length() {
		return invalid("invalid signature length",
			failure.WithInt("have", len(sig.Data)),
			failure.WithInt("want", sig.Scheme.Length()),
		)
	}

	switch sig.Scheme {

	case ink.SchemeEd25519:
		if !ed25519.Verify(ed25519.PublicKey(address[:]), message, sig.Data) {
			return invalid("ed25519 signature does not match address")
		}

	case ink.SchemeSr25519:
		pub, err := schnorrkel.NewPublicKey(address)
		if err != nil {
			return invalid("address is not a valid sr25519 public key", failure.WithErr(err))
		}
		var raw [64]byte
		copy(raw[:], sig.Data)
		var decoded schnorrkel.Signature
		err = decoded.Decode(raw)
		if err != nil {
			return invalid("could not decode sr25519 signature", failure.WithErr(err))
		}
		ok, err := pub.Verify(&decoded, schnorrkel.NewSigningContext(substrateContext, message))
		if err != nil {
			return invalid("could not verify sr25519 signature", failure.WithErr(err))
		}
		if !ok {
			return invalid("sr25519 signature does not match address")
		}

	case ink.SchemeEcdsa:
		hash := ink.Blake256(message)
		compact := make([]byte, 0, ink.EcdsaSignatureLength)
		compact = append(compact, sig.Data[64]+compactOffset)
		compact = append(compact, sig.Data[:64]...)
		pub, _, err := ecdsa.RecoverCompact(compact, hash[:])
		if err != nil {
			return invalid("could not recover ecdsa public key", failure.WithErr(err))
		}
		if ink.Blake256(pub.SerializeCompressed()) != ink.Hash(address) {
			return invalid("ecdsa signature does not match address")
		}

	default:
		return invalid(fmt.Sprintf("unknown signature scheme (%d)", sig.Scheme))
	}

	return nil
}
