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

package tracker

import (
	"github.com/optakt/ink-caller/models/ink"
)

// fold turns the raw status notifications of one transaction into outcomes
// that never regress. Missing intermediate outcomes are synthesized, so that
// no outcome is ever emitted before the ones that precede it.
type fold struct {
	transaction ink.Hash
	rank        ink.OutcomeKind
	block       ink.Hash
	done        bool
}

// apply returns the outcomes that the status adds. If finalize is set, the
// transaction was finalized in the returned block and the caller has to emit
// the terminal outcome.
func (f *fold) apply(status ink.Status) (outcomes []ink.Outcome, finalize bool) {

	if f.done {
		return nil, false
	}

	switch status.Kind {

	case ink.StatusFuture, ink.StatusReady, ink.StatusBroadcast:
		return f.advance(ink.OutcomeBroadcast, ink.ZeroHash), false

	case ink.StatusInBlock:
		if f.rank == ink.OutcomeInBlock {
			f.block = status.Block
		}
		return f.advance(ink.OutcomeInBlock, status.Block), false

	case ink.StatusFinalized:
		outcomes = f.advance(ink.OutcomeInBlock, status.Block)
		f.block = status.Block
		return outcomes, true

	case ink.StatusFinalityTimeout:
		block := status.Block
		if block.IsZero() {
			block = f.block
		}
		outcomes = f.advance(ink.OutcomeInBlock, block)
		return append(outcomes, f.terminal(ink.OutcomeFinalizationFailed, reasonFor(status))), false

	case ink.StatusInvalid, ink.StatusDropped, ink.StatusUsurped:
		if f.rank < ink.OutcomeInBlock {
			return []ink.Outcome{f.terminal(ink.OutcomeRejected, reasonFor(status))}, false
		}
		return []ink.Outcome{f.terminal(ink.OutcomeFinalizationFailed, reasonFor(status))}, false

	default:
		// Retractions keep the transaction in the pool, where it waits for
		// inclusion in another block.
		return nil, false
	}
}

// finish emits the terminal outcome of a finalized transaction.
func (f *fold) finish(dispatch ink.Dispatch) ink.Outcome {
	if dispatch.Failed {
		outcome := f.terminal(ink.OutcomeFinalizationFailed, dispatch.Reason)
		outcome.Block = f.block
		outcome.Events = dispatch.Events
		return outcome
	}
	outcome := f.terminal(ink.OutcomeFinalized, "")
	outcome.Block = f.block
	outcome.Events = dispatch.Events
	return outcome
}

// reject ends the transaction before it ever reached the network.
func (f *fold) reject(reason string) ink.Outcome {
	return f.terminal(ink.OutcomeRejected, reason)
}

func (f *fold) advance(target ink.OutcomeKind, block ink.Hash) []ink.Outcome {

	var outcomes []ink.Outcome
	if f.rank < ink.OutcomeBroadcast && target >= ink.OutcomeBroadcast {
		f.rank = ink.OutcomeBroadcast
		outcomes = append(outcomes, ink.Outcome{Kind: ink.OutcomeBroadcast, Transaction: f.transaction})
	}
	if f.rank < ink.OutcomeInBlock && target >= ink.OutcomeInBlock {
		f.rank = ink.OutcomeInBlock
		f.block = block
		outcomes = append(outcomes, ink.Outcome{Kind: ink.OutcomeInBlock, Transaction: f.transaction, Block: block})
	}

	return outcomes
}

func (f *fold) terminal(kind ink.OutcomeKind, reason string) ink.Outcome {
	f.rank = kind
	f.done = true
	return ink.Outcome{
		Kind:        kind,
		Transaction: f.transaction,
		Block:       f.block,
		Reason:      reason,
	}
}

func reasonFor(status ink.Status) string {
	if status.Reason != "" {
		return status.Reason
	}
	switch status.Kind {
	case ink.StatusInvalid:
		return "transaction is invalid"
	case ink.StatusDropped:
		return "transaction was dropped from the pool"
	case ink.StatusUsurped:
		return "transaction was replaced by another with the same nonce"
	case ink.StatusFinalityTimeout:
		return "block was not finalized in time"
	default:
		return string(status.Kind)
	}
}
