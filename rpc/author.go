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

package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/optakt/ink-caller/failure"
	"github.com/optakt/ink-caller/models/ink"
)

const releaseTimeout = 5 * time.Second

// SubmitAndWatch submits a signed extrinsic and watches its status. A node
// refusal is returned as a SubmissionRejected error carrying the node's
// message.
func (c *Client) SubmitAndWatch(ctx context.Context, extrinsic []byte) (ink.Stream, error) {

	sub, err := c.Subscribe(ctx, "author_submitAndWatchExtrinsic", "author_unwatchExtrinsic", encodeHex(extrinsic))
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return nil, failure.SubmissionRejected{
			Description: failure.NewDescription("node refused extrinsic",
				failure.WithInt("code", rpcErr.Code),
			),
			Transaction: ink.Blake256(extrinsic),
			Reason:      rpcErr.Reason(),
		}
	}
	if err != nil {
		return nil, err
	}

	return &statusStream{client: c, sub: sub}, nil
}

type statusStream struct {
	client *Client
	sub    *Subscription
}

func (s *statusStream) Next(ctx context.Context) (ink.Status, error) {
	raw, err := s.sub.Next(ctx)
	if errors.Is(err, errUnsubscribed) {
		return ink.Status{}, io.EOF
	}
	if err != nil {
		return ink.Status{}, err
	}
	return parseStatus(raw)
}

func (s *statusStream) Close() {
	s.client.release(s.sub)
}

// Resume watches an already submitted transaction by scanning the finalized
// blocks, starting with the given block number, for its hash. It never
// submits the transaction again. The stream reports the including block as
// in-block and finalized at once, or the transaction as dropped once the
// configured window of blocks was scanned without finding it.
func (c *Client) Resume(ctx context.Context, hash ink.Hash, from uint64) (ink.Stream, error) {

	sub, err := c.Subscribe(ctx, "chain_subscribeFinalizedHeads", "chain_unsubscribeFinalizedHeads")
	if err != nil {
		return nil, fmt.Errorf("could not subscribe to finalized heads: %w", err)
	}

	r := resumeStream{
		client:      c,
		sub:         sub,
		transaction: hash,
		from:        from,
		next:        from,
		window:      c.cfg.Window,
	}

	return &r, nil
}

type resumeStream struct {
	client      *Client
	sub         *Subscription
	transaction ink.Hash
	from        uint64
	next        uint64
	window      uint64
	pending     []ink.Status
	done        bool
}

func (r *resumeStream) Next(ctx context.Context) (ink.Status, error) {
	for {
		if len(r.pending) > 0 {
			status := r.pending[0]
			r.pending = r.pending[1:]
			return status, nil
		}
		if r.done {
			return ink.Status{}, io.EOF
		}

		raw, err := r.sub.Next(ctx)
		if errors.Is(err, errUnsubscribed) {
			return ink.Status{}, io.EOF
		}
		if err != nil {
			return ink.Status{}, err
		}

		var h header
		err = json.Unmarshal(raw, &h)
		if err != nil {
			return ink.Status{}, fmt.Errorf("could not decode finalized header: %w", err)
		}
		head, err := parseNumber(h.Number)
		if err != nil {
			return ink.Status{}, err
		}

		err = r.scan(ctx, head)
		if err != nil {
			return ink.Status{}, err
		}
	}
}

func (r *resumeStream) scan(ctx context.Context, head uint64) error {
	for ; r.next <= head; r.next++ {

		if r.next-r.from >= r.window {
			r.pending = append(r.pending, ink.Status{Kind: ink.StatusDropped})
			r.done = true
			return nil
		}

		hash, err := r.client.BlockHash(ctx, r.next)
		if err != nil {
			return err
		}
		block, err := r.client.Block(ctx, hash)
		if err != nil {
			return err
		}

		_, found := block.Locate(r.transaction)
		if !found {
			continue
		}

		r.pending = append(r.pending,
			ink.Status{Kind: ink.StatusInBlock, Block: hash},
			ink.Status{Kind: ink.StatusFinalized, Block: hash},
		)
		r.done = true
		return nil
	}

	return nil
}

func (r *resumeStream) Close() {
	r.client.release(r.sub)
}

// release unsubscribes on the node. A failure leaves the subscription open on
// the node until the connection closes, which is only worth a debug message.
func (c *Client) release(sub *Subscription) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	err := sub.Unsubscribe(ctx)
	if err != nil {
		c.log.Debug().Err(err).Str("subscription", sub.id).Str("method", sub.unsubscribe).Msg("could not release subscription on node")
	}
}
