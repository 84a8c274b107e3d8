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

package tracker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/ink-caller/failure"
	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/retriever"
	"github.com/optakt/ink-caller/rpc"
	"github.com/optakt/ink-caller/testing/mocks"
	"github.com/optakt/ink-caller/tracker"
)

const timeout = 5 * time.Second

func collect(t *testing.T, watch *tracker.Watch) []ink.Outcome {
	t.Helper()

	var outcomes []ink.Outcome
	deadline := time.After(timeout)
	for {
		select {
		case outcome, ok := <-watch.Outcomes():
			if !ok {
				return outcomes
			}
			outcomes = append(outcomes, outcome)
		case <-deadline:
			t.Fatal("watch did not end in time")
		}
	}
}

func kinds(outcomes []ink.Outcome) []ink.OutcomeKind {
	out := make([]ink.OutcomeKind, 0, len(outcomes))
	for _, outcome := range outcomes {
		out = append(out, outcome.Kind)
	}
	return out
}

func request() ink.SigningRequest {
	return ink.SigningRequest{
		Call:     mocks.GenericPayload,
		Signer:   mocks.GenericAddress(0),
		Origin:   ink.LocalOrigin,
		Unsigned: mocks.GenericUnsigned,
	}
}

func TestTracker_Submit(t *testing.T) {
	block := mocks.GenericHash(1)

	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		journal := mocks.BaselineJournal(t)
		var saved ink.Submission
		journal.SaveFunc = func(sub ink.Submission) error {
			saved = sub
			return nil
		}
		var deleted int32
		journal.DeleteFunc = func(ink.Hash) error {
			atomic.AddInt32(&deleted, 1)
			return nil
		}
		observer := &mocks.Observer{}

		tr := tracker.New(mocks.NoopLogger, mocks.BaselineAssembler(t), mocks.BaselineSubmitter(t), mocks.BaselineChain(t),
			tracker.WithJournal(journal),
			tracker.WithInspector(mocks.BaselineInspector(t)),
			tracker.WithObserver(observer),
		)

		watch, err := tr.Submit(context.Background(), request(), mocks.GenericSignature)
		require.NoError(t, err)

		got := collect(t, watch)

		require.Len(t, got, 3)
		assert.Equal(t, []ink.OutcomeKind{ink.OutcomeBroadcast, ink.OutcomeInBlock, ink.OutcomeFinalized}, kinds(got))
		assert.Equal(t, block, got[2].Block)
		assert.Equal(t, mocks.GenericEvents, got[2].Events)
		assert.NoError(t, watch.Err())

		assert.Equal(t, mocks.GenericHash(0), watch.Transaction())
		assert.Equal(t, mocks.GenericBytes, saved.Extrinsic)
		assert.Equal(t, uint64(43), saved.Since)
		assert.Equal(t, int32(1), atomic.LoadInt32(&deleted))
		assert.Len(t, observer.Outcomes(), 3)
	})

	t.Run("rejected on submission", func(t *testing.T) {
		t.Parallel()

		submitter := mocks.BaselineSubmitter(t)
		submitter.SubmitAndWatchFunc = func(context.Context, []byte) (ink.Stream, error) {
			return nil, failure.SubmissionRejected{Transaction: mocks.GenericHash(0), Reason: "Invalid Transaction: Transaction is outdated"}
		}

		tr := tracker.New(mocks.NoopLogger, mocks.BaselineAssembler(t), submitter, mocks.BaselineChain(t))

		watch, err := tr.Submit(context.Background(), request(), mocks.GenericSignature)
		require.NoError(t, err)

		got := collect(t, watch)

		require.Len(t, got, 1)
		assert.Equal(t, ink.OutcomeRejected, got[0].Kind)
		assert.Equal(t, "Invalid Transaction: Transaction is outdated", got[0].Reason)
	})

	t.Run("rejected after broadcast", func(t *testing.T) {
		t.Parallel()

		submitter := mocks.BaselineSubmitter(t)
		submitter.SubmitAndWatchFunc = func(context.Context, []byte) (ink.Stream, error) {
			return mocks.NewStream(
				ink.Status{Kind: ink.StatusBroadcast},
				ink.Status{Kind: ink.StatusInvalid, Reason: "insufficient balance"},
				ink.Status{Kind: ink.StatusInBlock, Block: block},
			), nil
		}

		tr := tracker.New(mocks.NoopLogger, mocks.BaselineAssembler(t), submitter, mocks.BaselineChain(t))

		watch, err := tr.Submit(context.Background(), request(), mocks.GenericSignature)
		require.NoError(t, err)

		got := collect(t, watch)

		assert.Equal(t, []ink.OutcomeKind{ink.OutcomeBroadcast, ink.OutcomeRejected}, kinds(got))
		assert.Equal(t, "insufficient balance", got[1].Reason)
	})

	t.Run("failed execution", func(t *testing.T) {
		t.Parallel()

		inspector := mocks.BaselineInspector(t)
		inspector.InspectFunc = func(_ context.Context, _ ink.Submission, got ink.Hash) (ink.Dispatch, error) {
			assert.Equal(t, block, got)
			return ink.Dispatch{Failed: true, Reason: "Module(index: 8, error: 0x0b000000)"}, nil
		}

		tr := tracker.New(mocks.NoopLogger, mocks.BaselineAssembler(t), mocks.BaselineSubmitter(t), mocks.BaselineChain(t),
			tracker.WithInspector(inspector),
		)

		watch, err := tr.Submit(context.Background(), request(), mocks.GenericSignature)
		require.NoError(t, err)

		got := collect(t, watch)

		require.Len(t, got, 3)
		assert.Equal(t, ink.OutcomeFinalizationFailed, got[2].Kind)
		assert.Equal(t, "Module(index: 8, error: 0x0b000000)", got[2].Reason)
	})

	t.Run("resumes without broadcasting again", func(t *testing.T) {
		t.Parallel()

		var submitted, resumed int32
		submitter := mocks.BaselineSubmitter(t)
		submitter.SubmitAndWatchFunc = func(context.Context, []byte) (ink.Stream, error) {
			atomic.AddInt32(&submitted, 1)
			stream := mocks.NewStream(ink.Status{Kind: ink.StatusReady})
			stream.End = failure.TransientNetwork{Endpoint: "ws://node"}
			return stream, nil
		}
		submitter.ResumeFunc = func(_ context.Context, hash ink.Hash, from uint64) (ink.Stream, error) {
			atomic.AddInt32(&resumed, 1)
			assert.Equal(t, mocks.GenericHash(0), hash)
			assert.Equal(t, uint64(43), from)
			return mocks.NewStream(
				ink.Status{Kind: ink.StatusInBlock, Block: block},
				ink.Status{Kind: ink.StatusFinalized, Block: block},
			), nil
		}

		tr := tracker.New(mocks.NoopLogger, mocks.BaselineAssembler(t), submitter, mocks.BaselineChain(t),
			tracker.WithBackoff(time.Millisecond),
		)

		watch, err := tr.Submit(context.Background(), request(), mocks.GenericSignature)
		require.NoError(t, err)

		got := collect(t, watch)

		assert.Equal(t, []ink.OutcomeKind{ink.OutcomeBroadcast, ink.OutcomeInBlock, ink.OutcomeFinalized}, kinds(got))
		assert.Equal(t, int32(1), atomic.LoadInt32(&submitted))
		assert.Equal(t, int32(1), atomic.LoadInt32(&resumed))
	})

	t.Run("connection lost during submission", func(t *testing.T) {
		t.Parallel()

		submitter := mocks.BaselineSubmitter(t)
		submitter.SubmitAndWatchFunc = func(context.Context, []byte) (ink.Stream, error) {
			return nil, failure.TransientNetwork{Endpoint: "ws://node"}
		}

		tr := tracker.New(mocks.NoopLogger, mocks.BaselineAssembler(t), submitter, mocks.BaselineChain(t))

		watch, err := tr.Submit(context.Background(), request(), mocks.GenericSignature)
		require.NoError(t, err)

		got := collect(t, watch)

		assert.Equal(t, []ink.OutcomeKind{ink.OutcomeBroadcast, ink.OutcomeInBlock, ink.OutcomeFinalized}, kinds(got))
	})

	t.Run("gives up after retries", func(t *testing.T) {
		t.Parallel()

		submitter := mocks.BaselineSubmitter(t)
		submitter.SubmitAndWatchFunc = func(context.Context, []byte) (ink.Stream, error) {
			stream := mocks.NewStream(ink.Status{Kind: ink.StatusReady})
			stream.End = failure.TransientNetwork{}
			return stream, nil
		}
		submitter.ResumeFunc = func(context.Context, ink.Hash, uint64) (ink.Stream, error) {
			return nil, failure.TransientNetwork{}
		}

		tr := tracker.New(mocks.NoopLogger, mocks.BaselineAssembler(t), submitter, mocks.BaselineChain(t),
			tracker.WithRetries(2),
			tracker.WithBackoff(time.Millisecond),
		)

		watch, err := tr.Submit(context.Background(), request(), mocks.GenericSignature)
		require.NoError(t, err)

		got := collect(t, watch)

		assert.Equal(t, []ink.OutcomeKind{ink.OutcomeBroadcast}, kinds(got))
		assert.True(t, errors.As(watch.Err(), &failure.TransientNetwork{}))
	})

	t.Run("close releases the stream", func(t *testing.T) {
		t.Parallel()

		stream := mocks.NewStream(ink.Status{Kind: ink.StatusReady})
		stream.Hold = true
		submitter := mocks.BaselineSubmitter(t)
		submitter.SubmitAndWatchFunc = func(context.Context, []byte) (ink.Stream, error) {
			return stream, nil
		}

		tr := tracker.New(mocks.NoopLogger, mocks.BaselineAssembler(t), submitter, mocks.BaselineChain(t))

		watch, err := tr.Submit(context.Background(), request(), mocks.GenericSignature)
		require.NoError(t, err)

		first := <-watch.Outcomes()
		watch.Close()

		assert.Equal(t, ink.OutcomeBroadcast, first.Kind)
		select {
		case <-stream.Closed:
		case <-time.After(timeout):
			t.Fatal("stream was not released")
		}
		_, ok := <-watch.Outcomes()
		assert.False(t, ok)
	})

	t.Run("handles journal failure", func(t *testing.T) {
		t.Parallel()

		journal := mocks.BaselineJournal(t)
		journal.SaveFunc = func(ink.Submission) error {
			return mocks.GenericError
		}
		var submitted int32
		submitter := mocks.BaselineSubmitter(t)
		submitter.SubmitAndWatchFunc = func(context.Context, []byte) (ink.Stream, error) {
			atomic.AddInt32(&submitted, 1)
			return mocks.NewStream(), nil
		}

		tr := tracker.New(mocks.NoopLogger, mocks.BaselineAssembler(t), submitter, mocks.BaselineChain(t),
			tracker.WithJournal(journal),
		)

		_, err := tr.Submit(context.Background(), request(), mocks.GenericSignature)

		assert.Error(t, err)
		assert.Zero(t, atomic.LoadInt32(&submitted))
	})

	t.Run("handles submission failure", func(t *testing.T) {
		t.Parallel()

		submitter := mocks.BaselineSubmitter(t)
		submitter.SubmitAndWatchFunc = func(context.Context, []byte) (ink.Stream, error) {
			return nil, mocks.GenericError
		}

		tr := tracker.New(mocks.NoopLogger, mocks.BaselineAssembler(t), submitter, mocks.BaselineChain(t))

		_, err := tr.Submit(context.Background(), request(), mocks.GenericSignature)

		assert.ErrorIs(t, err, mocks.GenericError)
	})
}

// lateStream delivers a single status once released, whether or not the
// watch is still interested in it.
type lateStream struct {
	entered chan struct{}
	release chan struct{}
	status  ink.Status
	once    int32
}

func (l *lateStream) Next(ctx context.Context) (ink.Status, error) {
	if atomic.CompareAndSwapInt32(&l.once, 0, 1) {
		close(l.entered)
		<-l.release
		return l.status, nil
	}
	<-ctx.Done()
	return ink.Status{}, ctx.Err()
}

func (l *lateStream) Close() {}

func TestTracker_Wait(t *testing.T) {
	t.Run("waits for journal writes of canceled watches", func(t *testing.T) {
		t.Parallel()

		stream := &lateStream{
			entered: make(chan struct{}),
			release: make(chan struct{}),
			status:  ink.Status{Kind: ink.StatusInBlock, Block: mocks.GenericHash(1)},
		}
		submitter := mocks.BaselineSubmitter(t)
		submitter.ResumeFunc = func(context.Context, ink.Hash, uint64) (ink.Stream, error) {
			return stream, nil
		}
		var written int32
		journal := mocks.BaselineJournal(t)
		journal.UpdateFunc = func(ink.Hash, ink.OutcomeKind) error {
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&written, 1)
			return nil
		}

		tr := tracker.New(mocks.NoopLogger, mocks.BaselineAssembler(t), submitter, mocks.BaselineChain(t),
			tracker.WithJournal(journal),
		)

		ctx, cancel := context.WithCancel(context.Background())
		tr.Resume(ctx, ink.Submission{Hash: mocks.GenericHash(3), Since: 10, Last: ink.OutcomeBroadcast})

		<-stream.entered
		cancel()
		close(stream.release)
		tr.Wait()

		assert.Equal(t, int32(1), atomic.LoadInt32(&written))
	})

	t.Run("returns without watches", func(t *testing.T) {
		t.Parallel()

		tr := tracker.New(mocks.NoopLogger, mocks.BaselineAssembler(t), mocks.BaselineSubmitter(t), mocks.BaselineChain(t))

		tr.Wait()
	})
}

func TestTracker_Resume(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		tr := tracker.New(mocks.NoopLogger, mocks.BaselineAssembler(t), mocks.BaselineSubmitter(t), mocks.BaselineChain(t))

		sub := ink.Submission{
			Hash:  mocks.GenericHash(3),
			Since: 10,
			Last:  ink.OutcomeBroadcast,
		}
		watch := tr.Resume(context.Background(), sub)

		got := collect(t, watch)

		assert.Equal(t, []ink.OutcomeKind{ink.OutcomeInBlock, ink.OutcomeFinalized}, kinds(got))
		assert.Equal(t, mocks.GenericHash(3), got[0].Transaction)
	})
}

func TestTracker_Inspection(t *testing.T) {
	block := mocks.GenericHash(1)
	hash := ink.Blake256(mocks.GenericBytes)

	assembler := mocks.BaselineAssembler(t)
	assembler.AssembleFunc = func(ink.Unsigned, ink.Address, ink.Signature) ([]byte, ink.Hash) {
		return mocks.GenericBytes, hash
	}
	record := func(index uint32, name string, reason string) ink.EventRecord {
		event := ink.Event{Pallet: "System", Name: name, Error: reason}
		return ink.EventRecord{Phase: ink.PhaseApplyExtrinsic, Extrinsic: index, Event: event}
	}

	t.Run("execution failure recorded in block", func(t *testing.T) {
		t.Parallel()

		node := mocks.BaselineNode(t)
		node.BlockFunc = func(_ context.Context, hash ink.Hash) (ink.Block, error) {
			assert.Equal(t, block, hash)
			return ink.Block{Extrinsics: [][]byte{[]byte(`other`), mocks.GenericBytes}}, nil
		}
		node.EventsFunc = func(context.Context, ink.Hash) ([]ink.EventRecord, error) {
			records := []ink.EventRecord{
				record(0, "ExtrinsicSuccess", ""),
				record(1, "ExtrinsicFailed", "Contracts.ContractTrapped"),
			}
			return records, nil
		}
		// A replay of the call on the parent state succeeds, which must not
		// decide the outcome.
		node.ContractCallFunc = func(context.Context, rpc.ContractRequest, *ink.Hash) (ink.ExecResult, error) {
			return ink.ExecResult{Data: []byte{0x00, 0x00}}, nil
		}

		inspector, err := retriever.New(mocks.NoopLogger, mocks.GenericParams, node, mocks.BaselineEncoder(t))
		require.NoError(t, err)

		tr := tracker.New(mocks.NoopLogger, assembler, mocks.BaselineSubmitter(t), mocks.BaselineChain(t),
			tracker.WithInspector(inspector),
		)

		watch, err := tr.Submit(context.Background(), request(), mocks.GenericSignature)
		require.NoError(t, err)

		got := collect(t, watch)

		require.NotEmpty(t, got)
		last := got[len(got)-1]
		assert.Equal(t, ink.OutcomeFinalizationFailed, last.Kind)
		assert.Equal(t, "Contracts.ContractTrapped", last.Reason)
		assert.Equal(t, block, last.Block)
		require.Len(t, last.Events, 1)
		assert.Equal(t, "ExtrinsicFailed", last.Events[0].Name)
		assert.Equal(t, hash, watch.Transaction())
	})

	t.Run("execution success recorded in block", func(t *testing.T) {
		t.Parallel()

		node := mocks.BaselineNode(t)
		node.BlockFunc = func(context.Context, ink.Hash) (ink.Block, error) {
			return ink.Block{Extrinsics: [][]byte{mocks.GenericBytes}}, nil
		}
		node.EventsFunc = func(context.Context, ink.Hash) ([]ink.EventRecord, error) {
			return []ink.EventRecord{record(0, "ExtrinsicSuccess", "")}, nil
		}
		// A replay on the parent state would revert, as the transfer already
		// spent the balance.
		node.ContractCallFunc = func(context.Context, rpc.ContractRequest, *ink.Hash) (ink.ExecResult, error) {
			return ink.ExecResult{Reverted: true, Data: []byte{0x01, 0x00}}, nil
		}

		inspector, err := retriever.New(mocks.NoopLogger, mocks.GenericParams, node, mocks.BaselineEncoder(t))
		require.NoError(t, err)

		tr := tracker.New(mocks.NoopLogger, assembler, mocks.BaselineSubmitter(t), mocks.BaselineChain(t),
			tracker.WithInspector(inspector),
		)

		watch, err := tr.Submit(context.Background(), request(), mocks.GenericSignature)
		require.NoError(t, err)

		got := collect(t, watch)

		require.NotEmpty(t, got)
		last := got[len(got)-1]
		assert.Equal(t, ink.OutcomeFinalized, last.Kind)
		assert.Empty(t, last.Reason)
		require.Len(t, last.Events, 1)
		assert.Equal(t, "ExtrinsicSuccess", last.Events[0].Name)
	})
}
