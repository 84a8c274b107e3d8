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
)

type Chain struct {
	GenesisHashFunc     func(ctx context.Context) (ink.Hash, error)
	RuntimeVersionFunc  func(ctx context.Context) (ink.RuntimeVersion, error)
	NextIndexFunc       func(ctx context.Context, address ink.Address) (uint64, error)
	FinalizedHeaderFunc func(ctx context.Context) (ink.Header, error)
}

func BaselineChain(t *testing.T) *Chain {
	t.Helper()

	c := Chain{
		GenesisHashFunc: func(context.Context) (ink.Hash, error) {
			return GenericHash(0), nil
		},
		RuntimeVersionFunc: func(context.Context) (ink.RuntimeVersion, error) {
			return GenericRuntime, nil
		},
		NextIndexFunc: func(context.Context, ink.Address) (uint64, error) {
			return GenericNonce, nil
		},
		FinalizedHeaderFunc: func(context.Context) (ink.Header, error) {
			return ink.Header{Number: 42, Hash: GenericHash(1), Parent: GenericHash(2)}, nil
		},
	}

	return &c
}

func (c *Chain) GenesisHash(ctx context.Context) (ink.Hash, error) {
	return c.GenesisHashFunc(ctx)
}

func (c *Chain) RuntimeVersion(ctx context.Context) (ink.RuntimeVersion, error) {
	return c.RuntimeVersionFunc(ctx)
}

func (c *Chain) NextIndex(ctx context.Context, address ink.Address) (uint64, error) {
	return c.NextIndexFunc(ctx, address)
}

func (c *Chain) FinalizedHeader(ctx context.Context) (ink.Header, error) {
	return c.FinalizedHeaderFunc(ctx)
}
