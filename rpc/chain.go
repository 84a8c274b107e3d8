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
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/optakt/ink-caller/models/ink"
)

type header struct {
	ParentHash ink.Hash `json:"parentHash"`
	Number     string   `json:"number"`
}

type signedBlock struct {
	Block struct {
		Header     header   `json:"header"`
		Extrinsics []string `json:"extrinsics"`
	} `json:"block"`
}

type runtimeVersion struct {
	SpecName           string `json:"specName"`
	SpecVersion        uint32 `json:"specVersion"`
	TransactionVersion uint32 `json:"transactionVersion"`
}

// GenesisHash returns the hash of the genesis block. It is fetched once.
func (c *Client) GenesisHash(ctx context.Context) (ink.Hash, error) {

	c.mutex.Lock()
	genesis := c.genesis
	c.mutex.Unlock()
	if genesis != nil {
		return *genesis, nil
	}

	hash, err := c.BlockHash(ctx, 0)
	if err != nil {
		return ink.ZeroHash, fmt.Errorf("could not get genesis block hash: %w", err)
	}

	c.mutex.Lock()
	c.genesis = &hash
	c.mutex.Unlock()

	return hash, nil
}

// RuntimeVersion returns the current runtime version.
func (c *Client) RuntimeVersion(ctx context.Context) (ink.RuntimeVersion, error) {
	return c.runtimeVersion(ctx)
}

// runtimeVersion returns the runtime version at the block given in params, or
// the current one.
func (c *Client) runtimeVersion(ctx context.Context, params ...interface{}) (ink.RuntimeVersion, error) {

	var version runtimeVersion
	err := c.Call(ctx, &version, "state_getRuntimeVersion", params...)
	if err != nil {
		return ink.RuntimeVersion{}, fmt.Errorf("could not get runtime version: %w", err)
	}

	rv := ink.RuntimeVersion{
		SpecName:    version.SpecName,
		SpecVersion: version.SpecVersion,
		TxVersion:   version.TransactionVersion,
	}

	return rv, nil
}

// BlockHash returns the hash of the block with the given number on the best
// chain.
func (c *Client) BlockHash(ctx context.Context, number uint64) (ink.Hash, error) {

	var hash *ink.Hash
	err := c.Call(ctx, &hash, "chain_getBlockHash", number)
	if err != nil {
		return ink.ZeroHash, fmt.Errorf("could not get block hash (number: %d): %w", number, err)
	}
	if hash == nil {
		return ink.ZeroHash, fmt.Errorf("unknown block (number: %d)", number)
	}

	return *hash, nil
}

// Header returns the header of the block with the given hash.
func (c *Client) Header(ctx context.Context, hash ink.Hash) (ink.Header, error) {

	var h *header
	err := c.Call(ctx, &h, "chain_getHeader", hash.Hex())
	if err != nil {
		return ink.Header{}, fmt.Errorf("could not get header (block: %s): %w", hash, err)
	}
	if h == nil {
		return ink.Header{}, fmt.Errorf("unknown block (block: %s)", hash)
	}

	return convertHeader(hash, *h)
}

// BestHeader returns the header of the best block.
func (c *Client) BestHeader(ctx context.Context) (ink.Header, error) {

	var h header
	err := c.Call(ctx, &h, "chain_getHeader")
	if err != nil {
		return ink.Header{}, fmt.Errorf("could not get best header: %w", err)
	}

	number, err := parseNumber(h.Number)
	if err != nil {
		return ink.Header{}, err
	}

	// The header does not include its own hash, so it is looked up by number.
	hash, err := c.BlockHash(ctx, number)
	if err != nil {
		return ink.Header{}, err
	}

	return convertHeader(hash, h)
}

// FinalizedHeader returns the header of the latest finalized block.
func (c *Client) FinalizedHeader(ctx context.Context) (ink.Header, error) {

	var hash ink.Hash
	err := c.Call(ctx, &hash, "chain_getFinalizedHead")
	if err != nil {
		return ink.Header{}, fmt.Errorf("could not get finalized head: %w", err)
	}

	return c.Header(ctx, hash)
}

// Block returns the block with the given hash.
func (c *Client) Block(ctx context.Context, hash ink.Hash) (ink.Block, error) {

	var signed *signedBlock
	err := c.Call(ctx, &signed, "chain_getBlock", hash.Hex())
	if err != nil {
		return ink.Block{}, fmt.Errorf("could not get block (block: %s): %w", hash, err)
	}
	if signed == nil {
		return ink.Block{}, fmt.Errorf("unknown block (block: %s)", hash)
	}

	h, err := convertHeader(hash, signed.Block.Header)
	if err != nil {
		return ink.Block{}, err
	}

	extrinsics := make([][]byte, 0, len(signed.Block.Extrinsics))
	for index, encoded := range signed.Block.Extrinsics {
		extrinsic, err := decodeHex(encoded)
		if err != nil {
			return ink.Block{}, fmt.Errorf("could not decode extrinsic (block: %s, index: %d): %w", hash, index, err)
		}
		extrinsics = append(extrinsics, extrinsic)
	}

	block := ink.Block{
		Header:     h,
		Extrinsics: extrinsics,
	}

	return block, nil
}

// NextIndex returns the next nonce of the account, including transactions
// that are still in the pool.
func (c *Client) NextIndex(ctx context.Context, address ink.Address) (uint64, error) {

	var nonce uint64
	err := c.Call(ctx, &nonce, "system_accountNextIndex", address.SS58(c.cfg.Prefix))
	if err != nil {
		return 0, fmt.Errorf("could not get next index (address: %s): %w", address, err)
	}

	return nonce, nil
}

func convertHeader(hash ink.Hash, h header) (ink.Header, error) {

	number, err := parseNumber(h.Number)
	if err != nil {
		return ink.Header{}, err
	}

	converted := ink.Header{
		Number: number,
		Hash:   hash,
		Parent: h.ParentHash,
	}

	return converted, nil
}

func parseNumber(s string) (uint64, error) {
	number, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse block number (%s): %w", s, err)
	}
	return number, nil
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}

func encodeHex(data []byte) string {
	return "0x" + hex.EncodeToString(data)
}
