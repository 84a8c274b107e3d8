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

package retriever

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/optakt/ink-caller/codec/scale"
	"github.com/optakt/ink-caller/contract/metadata"
	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/rpc"
)

// ErrLangError is returned when the contract could not decode the message.
var ErrLangError = errors.New("contract could not decode message")

// Snapshot holds the supply and one balance of a token, read from the same
// block.
type Snapshot struct {
	Block    ink.Hash    `json:"block"`
	Number   uint64      `json:"number"`
	Contract ink.Address `json:"contract"`
	Owner    ink.Address `json:"owner"`
	Supply   ink.Balance `json:"supply"`
	Balance  ink.Balance `json:"balance"`
}

// Retriever reads token state from contracts without submitting
// transactions. Results are cached by block, as the state of a block never
// changes.
type Retriever struct {
	log     zerolog.Logger
	params  ink.Params
	node    Node
	encoder Encoder
	cache   *ristretto.Cache
	cfg     Config
}

// New creates a retriever for token contracts.
func New(log zerolog.Logger, params ink.Params, node Node, encoder Encoder, options ...Option) (*Retriever, error) {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	// Ristretto recommends ten times as many counters as items in the full
	// cache; items are small, so roughly one per hundred bytes.
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.CacheSize / 100 * 10,
		MaxCost:     cfg.CacheSize,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("could not initialize cache: %w", err)
	}

	r := Retriever{
		log:     log.With().Str("component", "retriever").Logger(),
		params:  params,
		node:    node,
		encoder: encoder,
		cache:   cache,
		cfg:     cfg,
	}

	return &r, nil
}

// TotalSupply returns the total supply of the token contract at the best
// block.
func (r *Retriever) TotalSupply(ctx context.Context, contract ink.Address) (ink.Balance, error) {

	header, err := r.node.BestHeader(ctx)
	if err != nil {
		return ink.Balance{}, fmt.Errorf("could not get best header: %w", err)
	}

	return r.query(ctx, contract, header.Hash, metadata.TotalSupply)
}

// Balance returns the token balance of the owner at the best block.
func (r *Retriever) Balance(ctx context.Context, contract ink.Address, owner ink.Address) (ink.Balance, error) {

	header, err := r.node.BestHeader(ctx)
	if err != nil {
		return ink.Balance{}, fmt.Errorf("could not get best header: %w", err)
	}

	return r.query(ctx, contract, header.Hash, metadata.BalanceOf, owner)
}

// Allowance returns how much the spender may transfer on behalf of the owner
// at the best block.
func (r *Retriever) Allowance(ctx context.Context, contract ink.Address, owner ink.Address, spender ink.Address) (ink.Balance, error) {

	header, err := r.node.BestHeader(ctx)
	if err != nil {
		return ink.Balance{}, fmt.Errorf("could not get best header: %w", err)
	}

	return r.query(ctx, contract, header.Hash, metadata.Allowance, owner, spender)
}

// Snapshot reads the total supply and the balance of the owner concurrently
// from the same block.
func (r *Retriever) Snapshot(ctx context.Context, contract ink.Address, owner ink.Address) (Snapshot, error) {

	header, err := r.node.BestHeader(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("could not get best header: %w", err)
	}

	snapshot := Snapshot{
		Block:    header.Hash,
		Number:   header.Number,
		Contract: contract,
		Owner:    owner,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		supply, err := r.query(ctx, contract, header.Hash, metadata.TotalSupply)
		if err != nil {
			return fmt.Errorf("could not get total supply: %w", err)
		}
		snapshot.Supply = supply
		return nil
	})
	group.Go(func() error {
		balance, err := r.query(ctx, contract, header.Hash, metadata.BalanceOf, owner)
		if err != nil {
			return fmt.Errorf("could not get balance: %w", err)
		}
		snapshot.Balance = balance
		return nil
	})

	err = group.Wait()
	if err != nil {
		return Snapshot{}, err
	}

	return snapshot, nil
}

// Account returns the native nonce and balances of the account.
func (r *Retriever) Account(ctx context.Context, address ink.Address) (ink.AccountInfo, error) {
	return r.node.AccountInfo(ctx, address)
}

func (r *Retriever) query(ctx context.Context, contract ink.Address, block ink.Hash, method string, args ...interface{}) (ink.Balance, error) {

	input, err := r.encoder.Encode(method, args...)
	if err != nil {
		return ink.Balance{}, fmt.Errorf("could not encode message: %w", err)
	}

	key := block.Hex() + contract.Hex() + hex.EncodeToString(input)
	cached, ok := r.cache.Get(key)
	if ok {
		return cached.(ink.Balance), nil
	}

	gas := r.params.Query
	req := rpc.ContractRequest{
		Origin:   r.cfg.Origin,
		Contract: contract,
		GasLimit: &gas,
		Input:    input,
	}
	result, err := r.node.ContractCall(ctx, req, &block)
	if err != nil {
		return ink.Balance{}, fmt.Errorf("could not call contract: %w", err)
	}
	if result.DispatchError != nil {
		return ink.Balance{}, fmt.Errorf("contract call failed: %s", rpc.DescribeDispatchError(result.DispatchError))
	}
	if result.Reverted {
		return ink.Balance{}, fmt.Errorf("contract reverted (data: %x)", result.Data)
	}

	balance, err := decodeBalance(result.Data)
	if err != nil {
		return ink.Balance{}, fmt.Errorf("could not decode %s result: %w", method, err)
	}

	r.cache.Set(key, balance, int64(len(key)+32))

	r.log.Debug().Str("method", method).Str("block", block.String()).Str("value", balance.String()).Msg("contract queried")

	return balance, nil
}

// decodeBalance decodes a message result of the form `Result<u128, LangError>`.
func decodeBalance(data []byte) (ink.Balance, error) {

	dec := scale.NewDecoder(data)
	variant, err := dec.U8()
	if err != nil {
		return ink.Balance{}, err
	}
	if variant != 0 {
		return ink.Balance{}, ErrLangError
	}

	value, err := dec.U128()
	if err != nil {
		return ink.Balance{}, err
	}

	return ink.BalanceFromInt(value), nil
}
