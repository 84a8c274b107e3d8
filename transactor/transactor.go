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

package transactor

import (
	"context"
	"fmt"

	"github.com/optakt/ink-caller/codec/scale"
	"github.com/optakt/ink-caller/models/ink"
)

const (
	extrinsicVersion = 4
	signedFlag       = 0x80
	multiAddressID   = 0x00
)

// Transactor turns call payloads into signable and submittable transactions
// for the contracts pallet.
type Transactor struct {
	params ink.Params
	chain  Chain
	cfg    Config
}

// New creates a new transactor for the network with the given parameters.
func New(params ink.Params, chain Chain, options ...Option) *Transactor {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	t := Transactor{
		params: params,
		chain:  chain,
		cfg:    cfg,
	}

	return &t
}

// Method encodes the payload as a `Contracts::call` dispatch.
func (t *Transactor) Method(payload ink.CallPayload) []byte {

	enc := scale.NewEncoder()
	enc.U8(t.params.Pallet)
	enc.U8(t.params.Call)
	enc.U8(multiAddressID)
	enc.Raw(payload.Contract[:])
	enc.CompactInt(payload.Value.Int())
	enc.Compact(payload.Budget.RefTime)
	enc.Compact(payload.Budget.ProofSize)
	if payload.DepositLimit == nil {
		enc.None()
	} else {
		enc.Some()
		enc.CompactInt(payload.DepositLimit.Int())
	}
	enc.Vec(payload.Data)

	return enc.Bytes()
}

// Prepare creates the unsigned transaction for the payload, using the next
// nonce of the signer and the current runtime version.
func (t *Transactor) Prepare(ctx context.Context, payload ink.CallPayload, signer ink.Address) (ink.Unsigned, error) {

	genesis, err := t.chain.GenesisHash(ctx)
	if err != nil {
		return ink.Unsigned{}, fmt.Errorf("could not get genesis hash: %w", err)
	}

	version, err := t.chain.RuntimeVersion(ctx)
	if err != nil {
		return ink.Unsigned{}, fmt.Errorf("could not get runtime version: %w", err)
	}

	nonce, err := t.chain.NextIndex(ctx, signer)
	if err != nil {
		return ink.Unsigned{}, fmt.Errorf("could not get next nonce (signer: %s): %w", signer, err)
	}

	unsigned := ink.Unsigned{
		Method:       t.Method(payload),
		Era:          ink.ImmortalEra,
		Nonce:        nonce,
		Tip:          t.cfg.Tip,
		SpecVersion:  version.SpecVersion,
		TxVersion:    version.TxVersion,
		Genesis:      genesis,
		Checkpoint:   genesis,
		MetadataHash: t.params.MetadataHash,
	}

	if t.cfg.Mortal {
		header, err := t.chain.FinalizedHeader(ctx)
		if err != nil {
			return ink.Unsigned{}, fmt.Errorf("could not get finalized header: %w", err)
		}
		unsigned.Era = ink.MortalEra(header.Number, t.cfg.Period)
		unsigned.Checkpoint = header.Hash
		unsigned.BlockNumber = header.Number
	}

	return unsigned, nil
}

// Assemble attaches the signature to the unsigned transaction and returns the
// encoded extrinsic together with its hash.
func (t *Transactor) Assemble(unsigned ink.Unsigned, signer ink.Address, sig ink.Signature) ([]byte, ink.Hash) {

	enc := scale.NewEncoder()
	enc.U8(signedFlag | extrinsicVersion)
	enc.U8(multiAddressID)
	enc.Raw(signer[:])
	enc.Raw(sig.Multi())
	enc.Raw(unsigned.Extra())
	enc.Raw(unsigned.Method)

	extrinsic := scale.Prefixed(enc.Bytes())
	hash := ink.Blake256(extrinsic)

	return extrinsic, hash
}
