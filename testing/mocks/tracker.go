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
	"time"

	"github.com/optakt/ink-caller/models/ink"
)

type Assembler struct {
	AssembleFunc func(unsigned ink.Unsigned, signer ink.Address, sig ink.Signature) ([]byte, ink.Hash)
}

func BaselineAssembler(t *testing.T) *Assembler {
	t.Helper()

	a := Assembler{
		AssembleFunc: func(ink.Unsigned, ink.Address, ink.Signature) ([]byte, ink.Hash) {
			return GenericBytes, GenericHash(0)
		},
	}

	return &a
}

func (a *Assembler) Assemble(unsigned ink.Unsigned, signer ink.Address, sig ink.Signature) ([]byte, ink.Hash) {
	return a.AssembleFunc(unsigned, signer, sig)
}

type Inspector struct {
	InspectFunc func(ctx context.Context, sub ink.Submission, block ink.Hash) (ink.Dispatch, error)
}

func BaselineInspector(t *testing.T) *Inspector {
	t.Helper()

	i := Inspector{
		InspectFunc: func(context.Context, ink.Submission, ink.Hash) (ink.Dispatch, error) {
			return ink.Dispatch{Events: GenericEvents}, nil
		},
	}

	return &i
}

func (i *Inspector) Inspect(ctx context.Context, sub ink.Submission, block ink.Hash) (ink.Dispatch, error) {
	return i.InspectFunc(ctx, sub, block)
}

type Journal struct {
	SaveFunc    func(sub ink.Submission) error
	UpdateFunc  func(hash ink.Hash, last ink.OutcomeKind) error
	DeleteFunc  func(hash ink.Hash) error
	PendingFunc func() ([]ink.Submission, error)
}

func BaselineJournal(t *testing.T) *Journal {
	t.Helper()

	j := Journal{
		SaveFunc: func(ink.Submission) error {
			return nil
		},
		UpdateFunc: func(ink.Hash, ink.OutcomeKind) error {
			return nil
		},
		DeleteFunc: func(ink.Hash) error {
			return nil
		},
		PendingFunc: func() ([]ink.Submission, error) {
			return nil, nil
		},
	}

	return &j
}

func (j *Journal) Save(sub ink.Submission) error {
	return j.SaveFunc(sub)
}

func (j *Journal) Update(hash ink.Hash, last ink.OutcomeKind) error {
	return j.UpdateFunc(hash, last)
}

func (j *Journal) Delete(hash ink.Hash) error {
	return j.DeleteFunc(hash)
}

func (j *Journal) Pending() ([]ink.Submission, error) {
	return j.PendingFunc()
}

// Observer records every observed outcome.
type Observer struct {
	mutex    sync.Mutex
	outcomes []ink.Outcome
}

func (o *Observer) Observe(outcome ink.Outcome, _ time.Duration) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *Observer) Outcomes() []ink.Outcome {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return append([]ink.Outcome(nil), o.outcomes...)
}
