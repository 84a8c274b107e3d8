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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/testing/mocks"
)

func replay(statuses ...ink.Status) []ink.Outcome {
	f := fold{transaction: mocks.GenericHash(0)}
	var outcomes []ink.Outcome
	for _, status := range statuses {
		emitted, finalize := f.apply(status)
		outcomes = append(outcomes, emitted...)
		if finalize {
			outcomes = append(outcomes, f.finish(ink.Dispatch{}))
		}
	}
	return outcomes
}

func kinds(outcomes []ink.Outcome) []ink.OutcomeKind {
	out := make([]ink.OutcomeKind, 0, len(outcomes))
	for _, outcome := range outcomes {
		out = append(out, outcome.Kind)
	}
	return out
}

func TestFold(t *testing.T) {
	block1 := mocks.GenericHash(1)
	block2 := mocks.GenericHash(2)

	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		got := replay(
			ink.Status{Kind: ink.StatusReady},
			ink.Status{Kind: ink.StatusBroadcast},
			ink.Status{Kind: ink.StatusInBlock, Block: block1},
			ink.Status{Kind: ink.StatusFinalized, Block: block1},
		)

		require.Len(t, got, 3)
		assert.Equal(t, []ink.OutcomeKind{ink.OutcomeBroadcast, ink.OutcomeInBlock, ink.OutcomeFinalized}, kinds(got))
		assert.Equal(t, block1, got[1].Block)
		assert.Equal(t, block1, got[2].Block)
	})

	t.Run("duplicates are emitted once", func(t *testing.T) {
		t.Parallel()

		got := replay(
			ink.Status{Kind: ink.StatusReady},
			ink.Status{Kind: ink.StatusReady},
			ink.Status{Kind: ink.StatusInBlock, Block: block1},
			ink.Status{Kind: ink.StatusInBlock, Block: block1},
			ink.Status{Kind: ink.StatusFinalized, Block: block1},
			ink.Status{Kind: ink.StatusFinalized, Block: block1},
		)

		assert.Equal(t, []ink.OutcomeKind{ink.OutcomeBroadcast, ink.OutcomeInBlock, ink.OutcomeFinalized}, kinds(got))
	})

	t.Run("finalized without inclusion synthesizes it", func(t *testing.T) {
		t.Parallel()

		got := replay(ink.Status{Kind: ink.StatusFinalized, Block: block2})

		require.Len(t, got, 3)
		assert.Equal(t, []ink.OutcomeKind{ink.OutcomeBroadcast, ink.OutcomeInBlock, ink.OutcomeFinalized}, kinds(got))
		assert.Equal(t, block2, got[1].Block)
	})

	t.Run("late statuses do not regress", func(t *testing.T) {
		t.Parallel()

		got := replay(
			ink.Status{Kind: ink.StatusInBlock, Block: block1},
			ink.Status{Kind: ink.StatusReady},
			ink.Status{Kind: ink.StatusBroadcast},
		)

		assert.Equal(t, []ink.OutcomeKind{ink.OutcomeBroadcast, ink.OutcomeInBlock}, kinds(got))
	})

	t.Run("retracted block is replaced", func(t *testing.T) {
		t.Parallel()

		got := replay(
			ink.Status{Kind: ink.StatusInBlock, Block: block1},
			ink.Status{Kind: ink.StatusRetracted, Block: block1},
			ink.Status{Kind: ink.StatusInBlock, Block: block2},
			ink.Status{Kind: ink.StatusFinalized, Block: block2},
		)

		require.Len(t, got, 3)
		assert.Equal(t, block2, got[2].Block)
	})

	t.Run("invalid before inclusion is a rejection", func(t *testing.T) {
		t.Parallel()

		got := replay(
			ink.Status{Kind: ink.StatusBroadcast},
			ink.Status{Kind: ink.StatusInvalid, Reason: "insufficient balance"},
		)

		require.Len(t, got, 2)
		assert.Equal(t, ink.OutcomeRejected, got[1].Kind)
		assert.Equal(t, "insufficient balance", got[1].Reason)
	})

	t.Run("dropped after inclusion fails finalization", func(t *testing.T) {
		t.Parallel()

		got := replay(
			ink.Status{Kind: ink.StatusInBlock, Block: block1},
			ink.Status{Kind: ink.StatusDropped},
		)

		require.Len(t, got, 3)
		assert.Equal(t, ink.OutcomeFinalizationFailed, got[2].Kind)
		assert.NotEmpty(t, got[2].Reason)
	})

	t.Run("finality timeout fails finalization", func(t *testing.T) {
		t.Parallel()

		got := replay(
			ink.Status{Kind: ink.StatusInBlock, Block: block1},
			ink.Status{Kind: ink.StatusFinalityTimeout, Block: block1},
		)

		assert.Equal(t, []ink.OutcomeKind{ink.OutcomeBroadcast, ink.OutcomeInBlock, ink.OutcomeFinalizationFailed}, kinds(got))
	})

	t.Run("nothing follows a terminal outcome", func(t *testing.T) {
		t.Parallel()

		got := replay(
			ink.Status{Kind: ink.StatusInvalid},
			ink.Status{Kind: ink.StatusInBlock, Block: block1},
			ink.Status{Kind: ink.StatusFinalized, Block: block1},
		)

		assert.Equal(t, []ink.OutcomeKind{ink.OutcomeRejected}, kinds(got))
	})

	t.Run("failed execution", func(t *testing.T) {
		t.Parallel()

		f := fold{transaction: mocks.GenericHash(0)}
		_, finalize := f.apply(ink.Status{Kind: ink.StatusFinalized, Block: block1})
		require.True(t, finalize)

		got := f.finish(ink.Dispatch{Failed: true, Reason: "ContractReverted", Events: mocks.GenericEvents})

		assert.Equal(t, ink.OutcomeFinalizationFailed, got.Kind)
		assert.Equal(t, "ContractReverted", got.Reason)
		assert.Equal(t, block1, got.Block)
		assert.Equal(t, mocks.GenericEvents, got.Events)
	})
}

// TestFold_Interleavings checks the lifecycle order for every sequence of up
// to four statuses, including duplicates and out-of-order deliveries.
func TestFold_Interleavings(t *testing.T) {
	block1 := mocks.GenericHash(1)
	block2 := mocks.GenericHash(2)

	alphabet := []ink.Status{
		{Kind: ink.StatusReady},
		{Kind: ink.StatusBroadcast},
		{Kind: ink.StatusInBlock, Block: block1},
		{Kind: ink.StatusInBlock, Block: block2},
		{Kind: ink.StatusRetracted, Block: block1},
		{Kind: ink.StatusFinalized, Block: block1},
		{Kind: ink.StatusFinalityTimeout, Block: block1},
		{Kind: ink.StatusInvalid},
		{Kind: ink.StatusDropped},
	}

	var sequences [][]ink.Status
	var build func(prefix []ink.Status, depth int)
	build = func(prefix []ink.Status, depth int) {
		sequences = append(sequences, prefix)
		if depth == 0 {
			return
		}
		for _, status := range alphabet {
			next := append(append([]ink.Status(nil), prefix...), status)
			build(next, depth-1)
		}
	}
	build(nil, 4)

	for _, sequence := range sequences {
		outcomes := replay(sequence...)

		rank := ink.OutcomeKind(0)
		included := false
		for i, outcome := range outcomes {
			if outcome.Kind != ink.OutcomeRejected {
				require.True(t, outcome.Kind > rank, "outcomes regress for %v", sequence)
				rank = outcome.Kind
			}

			switch outcome.Kind {
			case ink.OutcomeInBlock:
				included = true
			case ink.OutcomeRejected:
				require.False(t, included, "rejection after inclusion for %v", sequence)
			case ink.OutcomeFinalized, ink.OutcomeFinalizationFailed:
				require.True(t, included, "finalization before inclusion for %v", sequence)
			}

			if outcome.Terminal() {
				require.Equal(t, len(outcomes)-1, i, "outcome after terminal for %v", sequence)
			}
		}
	}
}
