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
	"sync"
	"testing"

	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/retriever"
)

type Lister struct {
	AccountsFunc func(ctx context.Context) ([]ink.Account, error)
}

func BaselineLister(t *testing.T) *Lister {
	t.Helper()

	l := Lister{
		AccountsFunc: func(context.Context) ([]ink.Account, error) {
			return GenericAccounts(2), nil
		},
	}

	return &l
}

func (l *Lister) Accounts(ctx context.Context) ([]ink.Account, error) {
	return l.AccountsFunc(ctx)
}

type Preparer struct {
	PrepareFunc func(ctx context.Context, payload ink.CallPayload, signer ink.Address) (ink.Unsigned, error)
}

func BaselinePreparer(t *testing.T) *Preparer {
	t.Helper()

	p := Preparer{
		PrepareFunc: func(context.Context, ink.CallPayload, ink.Address) (ink.Unsigned, error) {
			return GenericUnsigned, nil
		},
	}

	return &p
}

func (p *Preparer) Prepare(ctx context.Context, payload ink.CallPayload, signer ink.Address) (ink.Unsigned, error) {
	return p.PrepareFunc(ctx, payload, signer)
}

type Querier struct {
	SnapshotFunc func(ctx context.Context, contract ink.Address, owner ink.Address) (retriever.Snapshot, error)
}

func BaselineQuerier(t *testing.T) *Querier {
	t.Helper()

	q := Querier{
		SnapshotFunc: func(_ context.Context, contract ink.Address, owner ink.Address) (retriever.Snapshot, error) {
			snapshot := retriever.Snapshot{
				Block:    GenericHash(3),
				Number:   43,
				Contract: contract,
				Owner:    owner,
				Supply:   ink.NewBalance(10 * GenericBalance.Uint64()),
				Balance:  GenericBalance,
			}
			return snapshot, nil
		},
	}

	return &q
}

func (q *Querier) Snapshot(ctx context.Context, contract ink.Address, owner ink.Address) (retriever.Snapshot, error) {
	return q.SnapshotFunc(ctx, contract, owner)
}

// StageObserver records the names of processed events.
type StageObserver struct {
	mutex   sync.Mutex
	applied []string
	ignored []string
}

func (s *StageObserver) Event(name string, applied bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if applied {
		s.applied = append(s.applied, name)
		return
	}
	s.ignored = append(s.ignored, name)
}

func (s *StageObserver) Applied() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]string(nil), s.applied...)
}

func (s *StageObserver) Ignored() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]string(nil), s.ignored...)
}
