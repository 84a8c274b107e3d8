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
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/optakt/ink-caller/failure"
	"github.com/optakt/ink-caller/models/ink"
)

// Assembler attaches a signature to an unsigned transaction.
type Assembler interface {
	Assemble(unsigned ink.Unsigned, signer ink.Address, sig ink.Signature) ([]byte, ink.Hash)
}

// Submitter hands transactions to the network and watches them.
type Submitter interface {
	SubmitAndWatch(ctx context.Context, extrinsic []byte) (ink.Stream, error)
	Resume(ctx context.Context, hash ink.Hash, from uint64) (ink.Stream, error)
}

// Chain provides the finalized head, below which a new transaction cannot be
// included.
type Chain interface {
	FinalizedHeader(ctx context.Context) (ink.Header, error)
}

// Inspector looks up whether a transaction included in the given block
// executed successfully.
type Inspector interface {
	Inspect(ctx context.Context, sub ink.Submission, block ink.Hash) (ink.Dispatch, error)
}

// Journal records submissions that have not reached a terminal outcome.
type Journal interface {
	Save(sub ink.Submission) error
	Update(hash ink.Hash, last ink.OutcomeKind) error
	Delete(hash ink.Hash) error
}

// Observer is notified of every outcome, together with the time elapsed since
// the submission.
type Observer interface {
	Observe(outcome ink.Outcome, elapsed time.Duration)
}

// Tracker submits signed transactions and follows them through the network
// until they are finalized or fail. A dropped connection never leads to a
// second broadcast: the tracker resumes watching the same transaction by its
// hash instead.
type Tracker struct {
	log       zerolog.Logger
	assembler Assembler
	submitter Submitter
	chain     Chain
	cfg       Config
	active    sync.WaitGroup
}

// New creates a new tracker.
func New(log zerolog.Logger, assembler Assembler, submitter Submitter, chain Chain, options ...Option) *Tracker {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	t := Tracker{
		log:       log.With().Str("component", "tracker").Logger(),
		assembler: assembler,
		submitter: submitter,
		chain:     chain,
		cfg:       cfg,
	}

	return &t
}

// Submit attaches the signature to the transaction of the request, submits it
// and returns a watch over its outcomes. A refusal by the network is reported
// as a rejected outcome on the watch.
func (t *Tracker) Submit(ctx context.Context, req ink.SigningRequest, sig ink.Signature) (*Watch, error) {

	extrinsic, hash := t.assembler.Assemble(req.Unsigned, req.Signer, sig)

	finalized, err := t.chain.FinalizedHeader(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get finalized header: %w", err)
	}

	sub := ink.Submission{
		Hash:      hash,
		Extrinsic: extrinsic,
		Signer:    req.Signer,
		Call:      req.Call,
		Since:     finalized.Number + 1,
		Submitted: time.Now().UTC(),
	}

	// The journal entry has to exist before the network may know about the
	// transaction, so that a crash right after broadcast still resumes it.
	if t.cfg.Journal != nil {
		err = t.cfg.Journal.Save(sub)
		if err != nil {
			return nil, fmt.Errorf("could not journal submission: %w", err)
		}
	}

	log := t.log.With().Str("transaction", hash.String()).Logger()
	watch := newWatch(ctx, t, log, sub)

	stream, err := t.submitter.SubmitAndWatch(watch.ctx, extrinsic)
	var rejected failure.SubmissionRejected
	var transient failure.TransientNetwork
	switch {

	case err == nil:
		log.Info().Str("signer", req.Signer.String()).Msg("transaction submitted")
		t.launch(func() { watch.run(stream) })

	case errors.As(err, &rejected):
		log.Warn().Str("reason", rejected.Reason).Msg("transaction rejected")
		t.launch(func() { watch.finish(rejected.Reason) })

	case errors.As(err, &transient):
		// The transaction may or may not have reached the node, so it is
		// looked for instead of being sent again.
		log.Warn().Err(err).Msg("connection lost during submission, resuming watch")
		t.launch(func() { watch.run(nil) })

	default:
		watch.cancel()
		t.forget(hash)
		return nil, fmt.Errorf("could not submit transaction: %w", err)
	}

	return watch, nil
}

// Resume watches a transaction that was submitted earlier, for example by a
// previous run of the process.
func (t *Tracker) Resume(ctx context.Context, sub ink.Submission) *Watch {

	log := t.log.With().Str("transaction", sub.Hash.String()).Logger()
	log.Info().Uint64("since", sub.Since).Msg("resuming transaction watch")

	watch := newWatch(ctx, t, log, sub)
	watch.fold.rank = sub.Last
	if sub.Last == ink.OutcomeInBlock {
		// The including block is unknown after a restart, so the inclusion is
		// reported again once it is found.
		watch.fold.rank = ink.OutcomeBroadcast
	}

	t.launch(func() { watch.run(nil) })

	return watch
}

// Wait blocks until every watch of the tracker has ended. Watches only end
// early when their context is canceled, so callers cancel them first. After
// Wait returns, the tracker no longer writes to the journal.
func (t *Tracker) Wait() {
	t.active.Wait()
}

func (t *Tracker) launch(run func()) {
	t.active.Add(1)
	go func() {
		defer t.active.Done()
		run()
	}()
}

func (t *Tracker) forget(hash ink.Hash) {
	if t.cfg.Journal == nil {
		return
	}
	err := t.cfg.Journal.Delete(hash)
	if err != nil {
		t.log.Error().Err(err).Str("transaction", hash.String()).Msg("could not delete journaled submission")
	}
}
