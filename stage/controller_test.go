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

package stage_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/ink-caller/contract/metadata"
	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/retriever"
	"github.com/optakt/ink-caller/stage"
	"github.com/optakt/ink-caller/testing/mocks"
	"github.com/optakt/ink-caller/tracker"
)

const (
	timeout = 5 * time.Second
	tick    = 10 * time.Millisecond
)

type fixture struct {
	lister    *mocks.Lister
	encoder   *mocks.Encoder
	preparer  *mocks.Preparer
	signer    *mocks.Signer
	submitter *mocks.Submitter
	querier   *mocks.Querier
	observer  *mocks.Observer
}

func baselineFixture(t *testing.T) *fixture {
	t.Helper()

	f := fixture{
		lister:    mocks.BaselineLister(t),
		encoder:   mocks.BaselineEncoder(t),
		preparer:  mocks.BaselinePreparer(t),
		signer:    mocks.BaselineSigner(t),
		submitter: mocks.BaselineSubmitter(t),
		querier:   mocks.BaselineQuerier(t),
		observer:  &mocks.Observer{},
	}

	return &f
}

// start runs a controller on the fixture until the test ends.
func (f *fixture) start(t *testing.T, options ...stage.Option) *stage.Controller {
	t.Helper()

	tr := tracker.New(
		mocks.NoopLogger,
		mocks.BaselineAssembler(t),
		f.submitter,
		mocks.BaselineChain(t),
		tracker.WithInspector(mocks.BaselineInspector(t)),
		tracker.WithObserver(f.observer),
		tracker.WithBackoff(time.Millisecond),
	)

	c := stage.NewController(mocks.NoopLogger, f.lister, f.encoder, f.preparer, f.signer, tr, f.querier, options...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = c.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(timeout):
			t.Error("controller did not stop in time")
		}
	})

	return c
}

func waitFor(t *testing.T, c *stage.Controller, check func(state stage.State) bool) stage.State {
	t.Helper()

	require.Eventually(t, func() bool {
		return check(c.State())
	}, timeout, tick)

	return c.State()
}

func inStage(s stage.Stage) func(stage.State) bool {
	return func(state stage.State) bool {
		return state.Stage == s
	}
}

// ready brings the controller to the display of the first account's balance.
func ready(t *testing.T, c *stage.Controller) {
	t.Helper()

	c.Post(stage.ContractChanged{Contract: contract})
	c.Post(stage.AccountsRequested{})
	waitFor(t, c, inStage(stage.AwaitingAccountSelection))

	c.Post(stage.AccountChosen{Index: 0})
	waitFor(t, c, inStage(stage.DisplayingResult))
}

func TestController_LocalTransfer(t *testing.T) {
	f := baselineFixture(t)

	var method string
	var args []interface{}
	f.encoder.EncodeFunc = func(m string, a ...interface{}) ([]byte, error) {
		method = m
		args = a
		return mocks.GenericSelector[:], nil
	}
	var origin ink.Origin
	f.signer.SignFunc = func(_ context.Context, req ink.SigningRequest) (ink.Signature, error) {
		origin = req.Origin
		return mocks.GenericSignature, nil
	}
	f.lister.AccountsFunc = func(context.Context) ([]ink.Account, error) {
		account := mocks.GenericAccount(0)
		account.Origin = ink.LocalOrigin
		return []ink.Account{account}, nil
	}

	c := f.start(t)
	ready(t, c)

	c.Post(stage.TransferRequested{To: receiver, Amount: amount})
	state := waitFor(t, c, func(state stage.State) bool {
		return state.Stage == stage.DisplayingResult && state.Outcome != nil
	})

	assert.Equal(t, ink.OutcomeFinalized, state.Outcome.Kind)
	assert.Equal(t, mocks.GenericHash(1), state.Outcome.Block)
	assert.Equal(t, mocks.GenericEvents, state.Outcome.Events)
	require.NotNil(t, state.Balance)
	assert.Equal(t, mocks.GenericBalance, *state.Balance)
	assert.Empty(t, state.Error)

	assert.Equal(t, metadata.Transfer, method)
	require.Len(t, args, 3)
	assert.Equal(t, receiver, args[0])
	assert.Equal(t, amount, args[1])
	assert.Equal(t, ink.LocalOrigin, origin)
}

func TestController_Rejected(t *testing.T) {
	f := baselineFixture(t)
	f.submitter.SubmitAndWatchFunc = func(context.Context, []byte) (ink.Stream, error) {
		return mocks.NewStream(
			ink.Status{Kind: ink.StatusBroadcast},
			ink.Status{Kind: ink.StatusInvalid, Reason: "insufficient balance"},
			ink.Status{Kind: ink.StatusInBlock, Block: mocks.GenericHash(1)},
			ink.Status{Kind: ink.StatusFinalized, Block: mocks.GenericHash(1)},
		), nil
	}

	c := f.start(t)
	ready(t, c)

	c.Post(stage.TransferRequested{To: receiver, Amount: amount})
	state := waitFor(t, c, inStage(stage.Error))

	assert.Equal(t, "insufficient balance", state.Error)
	require.NotNil(t, state.Outcome)
	assert.Equal(t, ink.OutcomeRejected, state.Outcome.Kind)

	assert.Never(t, func() bool {
		return c.State().Stage != stage.Error
	}, 100*time.Millisecond, tick)

	outcomes := f.observer.Outcomes()
	require.Len(t, outcomes, 2)
	assert.Equal(t, ink.OutcomeBroadcast, outcomes[0].Kind)
	assert.Equal(t, ink.OutcomeRejected, outcomes[1].Kind)

	c.Post(stage.Reset{})
	waitFor(t, c, inStage(stage.EnteringContract))
}

func TestController_AccountChangeDuringSigning(t *testing.T) {
	f := baselineFixture(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	canceled := make(chan struct{})
	f.signer.SignFunc = func(ctx context.Context, req ink.SigningRequest) (ink.Signature, error) {
		close(entered)
		<-release
		if ctx.Err() != nil {
			close(canceled)
		}
		return mocks.GenericSignature, nil
	}
	var submitted uint32
	f.submitter.SubmitAndWatchFunc = func(context.Context, []byte) (ink.Stream, error) {
		atomic.AddUint32(&submitted, 1)
		return mocks.NewStream(), nil
	}

	observer := &mocks.StageObserver{}
	c := f.start(t, stage.WithObserver(observer))
	ready(t, c)

	c.Post(stage.TransferRequested{To: receiver, Amount: amount})
	select {
	case <-entered:
	case <-time.After(timeout):
		t.Fatal("signer was not called")
	}
	assert.Equal(t, stage.Signing, c.State().Stage)

	second := mocks.GenericAccount(1)
	c.Post(stage.AccountChosen{Index: 1})
	state := waitFor(t, c, func(state stage.State) bool {
		return state.Stage == stage.DisplayingResult && state.Selected != nil && state.Selected.Address == second.Address
	})
	assert.Nil(t, state.Outcome)

	close(release)
	select {
	case <-canceled:
	case <-time.After(timeout):
		t.Fatal("signing was not canceled")
	}

	assert.Never(t, func() bool {
		return atomic.LoadUint32(&submitted) > 0 || c.State().Stage != stage.DisplayingResult
	}, 100*time.Millisecond, tick)
	assert.NotContains(t, observer.Applied(), stage.SignatureObtained{}.Name())
}

func TestController_SigningDeclined(t *testing.T) {
	f := baselineFixture(t)
	f.signer.SignFunc = func(context.Context, ink.SigningRequest) (ink.Signature, error) {
		return ink.Signature{}, mocks.GenericError
	}

	c := f.start(t)
	ready(t, c)

	c.Post(stage.TransferRequested{To: receiver, Amount: amount})
	state := waitFor(t, c, inStage(stage.Error))

	assert.Contains(t, state.Error, mocks.GenericError.Error())
	assert.Empty(t, f.observer.Outcomes())
}

func TestController_AccountListFailure(t *testing.T) {
	f := baselineFixture(t)
	f.lister.AccountsFunc = func(context.Context) ([]ink.Account, error) {
		return nil, mocks.GenericError
	}

	c := f.start(t)
	c.Post(stage.ContractChanged{Contract: contract})
	c.Post(stage.AccountsRequested{})
	state := waitFor(t, c, inStage(stage.Error))

	assert.Equal(t, mocks.GenericError.Error(), state.Error)
}

func TestController_Balance(t *testing.T) {
	f := baselineFixture(t)

	var calls uint32
	f.querier.SnapshotFunc = func(_ context.Context, _ ink.Address, owner ink.Address) (retriever.Snapshot, error) {
		atomic.AddUint32(&calls, 1)
		return snapshot(owner), nil
	}

	c := f.start(t)
	ready(t, c)

	c.Post(stage.BalanceRequested{})
	require.Eventually(t, func() bool {
		return atomic.LoadUint32(&calls) == 2 && c.State().Stage == stage.DisplayingResult
	}, timeout, tick)

	state := c.State()
	require.NotNil(t, state.Balance)
	require.NotNil(t, state.Supply)
	assert.Equal(t, ink.NewBalance(100), *state.Balance)
	assert.Equal(t, ink.NewBalance(1000), *state.Supply)
}
