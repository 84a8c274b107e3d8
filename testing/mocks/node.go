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
	"context"
	"testing"

	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/rpc"
)

type Node struct {
	BestHeaderFunc   func(ctx context.Context) (ink.Header, error)
	BlockFunc        func(ctx context.Context, hash ink.Hash) (ink.Block, error)
	EventsFunc       func(ctx context.Context, hash ink.Hash) ([]ink.EventRecord, error)
	AccountInfoFunc  func(ctx context.Context, address ink.Address) (ink.AccountInfo, error)
	ContractCallFunc func(ctx context.Context, req rpc.ContractRequest, at *ink.Hash) (ink.ExecResult, error)
}

func BaselineNode(t *testing.T) *Node {
	t.Helper()

	n := Node{
		BestHeaderFunc: func(context.Context) (ink.Header, error) {
			return ink.Header{Number: 43, Hash: GenericHash(3), Parent: GenericHash(1)}, nil
		},
		BlockFunc: func(_ context.Context, hash ink.Hash) (ink.Block, error) {
			block := ink.Block{
				Header:     ink.Header{Number: 42, Hash: hash, Parent: GenericHash(2)},
				Extrinsics: [][]byte{GenericBytes},
			}
			return block, nil
		},
		EventsFunc: func(context.Context, ink.Hash) ([]ink.EventRecord, error) {
			var records []ink.EventRecord
			for _, event := range GenericEvents {
				records = append(records, ink.EventRecord{Phase: ink.PhaseApplyExtrinsic, Extrinsic: 0, Event: event})
			}
			return records, nil
		},
		AccountInfoFunc: func(context.Context, ink.Address) (ink.AccountInfo, error) {
			return ink.AccountInfo{Nonce: uint32(GenericNonce), Free: GenericBalance}, nil
		},
		ContractCallFunc: func(context.Context, rpc.ContractRequest, *ink.Hash) (ink.ExecResult, error) {
			return ink.ExecResult{Data: GenericBalanceResult()}, nil
		},
	}

	return &n
}

func (n *Node) BestHeader(ctx context.Context) (ink.Header, error) {
	return n.BestHeaderFunc(ctx)
}

func (n *Node) Block(ctx context.Context, hash ink.Hash) (ink.Block, error) {
	return n.BlockFunc(ctx, hash)
}

func (n *Node) Events(ctx context.Context, hash ink.Hash) ([]ink.EventRecord, error) {
	return n.EventsFunc(ctx, hash)
}

func (n *Node) AccountInfo(ctx context.Context, address ink.Address) (ink.AccountInfo, error) {
	return n.AccountInfoFunc(ctx, address)
}

func (n *Node) ContractCall(ctx context.Context, req rpc.ContractRequest, at *ink.Hash) (ink.ExecResult, error) {
	return n.ContractCallFunc(ctx, req, at)
}

// GenericBalanceResult is the encoded `Ok(GenericBalance)` result of a
// balance query.
func GenericBalanceResult() []byte {
	data := make([]byte, 17)
	b := GenericBalance.Uint64()
	for i := 0; i < 8; i++ {
		data[1+i] = byte(b >> (8 * i))
	}
	return data
}

type Encoder struct {
	EncodeFunc func(method string, args ...interface{}) ([]byte, error)
}

func BaselineEncoder(t *testing.T) *Encoder {
	t.Helper()

	e := Encoder{
		EncodeFunc: func(string, ...interface{}) ([]byte, error) {
			return GenericSelector[:], nil
		},
	}

	return &e
}

func (e *Encoder) Encode(method string, args ...interface{}) ([]byte, error) {
	return e.EncodeFunc(method, args...)
}
