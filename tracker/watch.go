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
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/optakt/ink-caller/failure"
	"github.com/optakt/ink-caller/models/ink"
)

// Watch is the local observation of one submitted transaction. Its outcomes
// channel is closed after the terminal outcome, or earlier if the watch is
// closed or fails.
type Watch struct {
	tracker  *Tracker
	log      zerolog.Logger
	sub      ink.Submission
	fold     fold
	ctx      context.Context
	cancel   context.CancelFunc
	outcomes chan ink.Outcome
	done     chan struct{}
	err      error
}

func newWatch(parent context.Context, t *Tracker, log zerolog.Logger, sub ink.Submission) *Watch {

	ctx, cancel := context.WithCancel(parent)
	w := Watch{
		tracker:  t,
		log:      log,
		sub:      sub,
		fold:     fold{transaction: sub.Hash},
		ctx:      ctx,
		cancel:   cancel,
		outcomes: make(chan ink.Outcome, t.cfg.Buffer),
		done:     make(chan struct{}),
	}

	return &w
}

// Transaction returns the hash of the watched transaction.
func (w *Watch) Transaction() ink.Hash {
	return w.sub.Hash
}

// Submission returns the watched submission.
func (w *Watch) Submission() ink.Submission {
	return w.sub
}

// Outcomes returns the channel on which the outcomes are delivered, in
// lifecycle order.
func (w *Watch) Outcomes() <-chan ink.Outcome {
	return w.outcomes
}

// Close stops the local observation and releases the network subscription.
// It does not affect the transaction itself.
func (w *Watch) Close() {
	w.cancel()
	<-w.done
}

// Err waits for the watch to end and returns why it ended before a terminal
// outcome, if it did.
func (w *Watch) Err() error {
	<-w.done
	return w.err
}

func (w *Watch) run(stream ink.Stream) {
	defer close(w.done)
	defer close(w.outcomes)
	defer w.cancel()

	cfg := w.tracker.cfg
	failures := uint(0)
	for {

		if stream == nil {
			if failures > cfg.Retries {
				w.err = failure.TransientNetwork{
					Description: failure.NewDescription("could not resume transaction watch",
						failure.WithHash("transaction", w.sub.Hash),
						failure.WithInt("attempts", int(failures)),
					),
				}
				w.log.Error().Err(w.err).Msg("giving up transaction watch")
				return
			}

			if failures > 0 {
				wait := cfg.Backoff << (failures - 1)
				select {
				case <-w.ctx.Done():
					return
				case <-time.After(wait):
				}
			}

			var err error
			stream, err = w.tracker.submitter.Resume(w.ctx, w.sub.Hash, w.sub.Since)
			if w.ctx.Err() != nil {
				return
			}
			if err != nil {
				failures++
				w.log.Warn().Err(err).Uint("failures", failures).Msg("could not resume transaction watch")
				continue
			}
		}

		status, err := stream.Next(w.ctx)
		if err != nil {
			stream.Close()
			stream = nil
			if w.ctx.Err() != nil {
				return
			}
			failures++
			w.log.Warn().Err(err).Uint("failures", failures).Msg("transaction watch interrupted, resuming")
			continue
		}
		failures = 0

		done := w.handle(status)
		if done {
			stream.Close()
			return
		}
	}
}

func (w *Watch) handle(status ink.Status) bool {

	outcomes, finalize := w.fold.apply(status)
	if len(outcomes) == 0 && !finalize {
		w.log.Debug().Str("status", string(status.Kind)).Msg("ignoring transaction status")
	}

	for _, outcome := range outcomes {
		ok := w.emit(outcome)
		if !ok {
			return true
		}
	}

	if finalize {
		dispatch := w.inspect()
		ok := w.emit(w.fold.finish(dispatch))
		if !ok {
			return true
		}
	}

	return w.fold.done
}

func (w *Watch) inspect() ink.Dispatch {

	inspector := w.tracker.cfg.Inspector
	if inspector == nil {
		return ink.Dispatch{}
	}

	dispatch, err := inspector.Inspect(w.ctx, w.sub, w.fold.block)
	if err != nil {
		w.log.Warn().Err(err).Str("block", w.fold.block.String()).Msg("could not inspect transaction execution")
		return ink.Dispatch{}
	}

	return dispatch
}

// finish ends a watch whose transaction was rejected on submission.
func (w *Watch) finish(reason string) {
	defer close(w.done)
	defer close(w.outcomes)
	defer w.cancel()

	w.emit(w.fold.reject(reason))
}

func (w *Watch) emit(outcome ink.Outcome) bool {

	w.log.Info().Str("outcome", outcome.Kind.String()).Str("block", outcome.Block.String()).Str("reason", outcome.Reason).Msg("transaction outcome")

	t := w.tracker
	if t.cfg.Journal != nil {
		var err error
		if outcome.Terminal() {
			err = t.cfg.Journal.Delete(w.sub.Hash)
		} else {
			err = t.cfg.Journal.Update(w.sub.Hash, outcome.Kind)
		}
		if err != nil {
			w.log.Error().Err(err).Msg("could not update journaled submission")
		}
	}

	if t.cfg.Observer != nil {
		t.cfg.Observer.Observe(outcome, time.Since(w.sub.Submitted))
	}

	select {
	case w.outcomes <- outcome:
		return true
	case <-w.ctx.Done():
		return false
	}
}
