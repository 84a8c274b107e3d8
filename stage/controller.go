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

package stage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/optakt/ink-caller/contract/metadata"
	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/transactor"
)

// Controller drives the state machine. Events are queued and applied one at
// a time by a single goroutine; the commands they produce run concurrently
// and feed their results back as events.
type Controller struct {
	log       zerolog.Logger
	cfg       Config
	lister    Lister
	encoder   Encoder
	preparer  Preparer
	signer    Signer
	submitter Submitter
	querier   Querier

	machine *Machine
	events  *ink.Queue
	wg      sync.WaitGroup

	// Only the event loop touches the pending operation.
	op     context.Context
	cancel context.CancelFunc

	mutex sync.RWMutex
	state State
}

// NewController creates a controller for a new state machine.
func NewController(log zerolog.Logger, lister Lister, encoder Encoder, preparer Preparer, signer Signer, submitter Submitter, querier Querier, options ...Option) *Controller {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	machine := NewMachine()
	c := Controller{
		log:       log.With().Str("component", "controller").Logger(),
		cfg:       cfg,
		lister:    lister,
		encoder:   encoder,
		preparer:  preparer,
		signer:    signer,
		submitter: submitter,
		querier:   querier,
		machine:   machine,
		events:    ink.NewQueue(),
		cancel:    func() {},
		state:     machine.State(),
	}

	return &c
}

// Post queues an event. It never blocks.
func (c *Controller) Post(ev Event) {
	c.events.Push(ev)
}

// State returns the state after the latest processed event.
func (c *Controller) State() State {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.state.copy()
}

// Run processes events until the context is canceled. Pending operations are
// abandoned and waited for before it returns.
func (c *Controller) Run(ctx context.Context) error {

	defer c.wg.Wait()
	defer func() { c.cancel() }()

	for {
		item, ok := c.events.Pop()
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-c.events.Signal():
				continue
			}
		}

		ev := item.(Event)
		applied, commands := c.machine.Apply(ev)

		state := c.machine.State()
		c.mutex.Lock()
		c.state = state
		c.mutex.Unlock()

		if c.cfg.Observer != nil {
			c.cfg.Observer.Event(ev.Name(), applied)
		}

		if !applied {
			c.log.Debug().Str("event", ev.Name()).Str("stage", state.Stage.String()).Msg("ignoring event")
			continue
		}

		c.log.Debug().Str("event", ev.Name()).Str("stage", state.Stage.String()).Msg("event applied")
		if state.Stage == Error {
			c.log.Warn().Str("error", state.Error).Msg("call flow failed")
		}

		for _, command := range commands {
			c.execute(ctx, command)
		}
	}
}

func (c *Controller) execute(ctx context.Context, command Command) {

	switch cmd := command.(type) {

	case Cancel:
		c.cancel()
		c.op = nil
		c.cancel = func() {}

	case ListAccounts:
		c.spawn(ctx, func(ctx context.Context) Event {
			accounts, err := c.lister.Accounts(ctx)
			if err != nil {
				return ErrorOccurred{Tag: cmd.Tag, Message: err.Error()}
			}
			return AccountsReceived{Tag: cmd.Tag, Accounts: accounts}
		})

	case QueryBalance:
		c.spawn(ctx, func(ctx context.Context) Event {
			snapshot, err := c.querier.Snapshot(ctx, cmd.Contract, cmd.Owner)
			if err != nil {
				return ErrorOccurred{Tag: cmd.Tag, Message: err.Error()}
			}
			return BalanceReceived{Tag: cmd.Tag, Snapshot: snapshot}
		})

	case Sign:
		c.cancel()
		opCtx, cancel := context.WithCancel(ctx)
		c.op = opCtx
		c.cancel = cancel
		c.spawn(opCtx, func(ctx context.Context) Event {
			req, sig, err := c.sign(ctx, cmd)
			if err != nil {
				return ErrorOccurred{Tag: cmd.Tag, Message: err.Error()}
			}
			return SignatureObtained{Tag: cmd.Tag, Request: req, Signature: sig}
		})

	case Submit:
		// The submission shares the context of its signature, so that
		// canceling the operation also stops the watch.
		opCtx := c.op
		if opCtx == nil {
			opCtx = ctx
		}
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.submit(opCtx, cmd)
		}()
	}
}

// spawn runs the operation in its own goroutine and posts its result, unless
// the operation was canceled.
func (c *Controller) spawn(ctx context.Context, op func(ctx context.Context) Event) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ev := op(ctx)
		if ctx.Err() != nil {
			return
		}
		c.Post(ev)
	}()
}

func (c *Controller) sign(ctx context.Context, cmd Sign) (ink.SigningRequest, ink.Signature, error) {

	data, err := c.encoder.Encode(metadata.Transfer, cmd.To, cmd.Amount, []byte{})
	if err != nil {
		return ink.SigningRequest{}, ink.Signature{}, fmt.Errorf("could not encode transfer: %w", err)
	}

	payload, err := transactor.Build(cmd.Contract, ink.Balance{}, c.cfg.Budget, c.cfg.DepositLimit, data)
	if err != nil {
		return ink.SigningRequest{}, ink.Signature{}, fmt.Errorf("could not build call: %w", err)
	}

	unsigned, err := c.preparer.Prepare(ctx, payload, cmd.Account.Address)
	if err != nil {
		return ink.SigningRequest{}, ink.Signature{}, fmt.Errorf("could not prepare transaction: %w", err)
	}

	req := ink.SigningRequest{
		Call:     payload,
		Signer:   cmd.Account.Address,
		Type:     cmd.Account.Type,
		Origin:   cmd.Account.Origin,
		Unsigned: unsigned,
	}

	sig, err := c.signer.Sign(ctx, req)
	if err != nil {
		return ink.SigningRequest{}, ink.Signature{}, fmt.Errorf("could not sign transfer: %w", err)
	}

	return req, sig, nil
}

func (c *Controller) submit(ctx context.Context, cmd Submit) {

	watch, err := c.submitter.Submit(ctx, cmd.Request, cmd.Signature)
	if err != nil {
		if ctx.Err() == nil {
			c.Post(ErrorOccurred{Tag: cmd.Tag, Message: err.Error()})
		}
		return
	}
	defer watch.Close()

	for outcome := range watch.Outcomes() {
		c.Post(OutcomeReceived{Tag: cmd.Tag, Outcome: outcome})
	}

	err = watch.Err()
	if err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
		c.Post(ErrorOccurred{Tag: cmd.Tag, Message: err.Error()})
	}
}
