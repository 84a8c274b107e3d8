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
	"sync"

	"github.com/optakt/ink-caller/models/ink"
)

var errUnsubscribed = errors.New("subscription released")

// Subscription receives the notifications of one node subscription.
// Notifications are buffered without bound, so a slow consumer never blocks
// the connection.
type Subscription struct {
	client      *Client
	id          string
	unsubscribe string
	queue       *ink.Queue

	failed   chan struct{}
	err      error
	failOnce sync.Once
	release  sync.Once
}

// Next returns the next notification. After the subscription failed or was
// released, the buffered notifications are still returned before the error.
func (s *Subscription) Next(ctx context.Context) (json.RawMessage, error) {
	for {
		item, ok := s.queue.Pop()
		if ok {
			return item.(json.RawMessage), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.queue.Signal():
		case <-s.failed:
			item, ok := s.queue.Pop()
			if ok {
				return item.(json.RawMessage), nil
			}
			return nil, s.err
		}
	}
}

// Unsubscribe releases the subscription locally and on the node. It can be
// called more than once.
func (s *Subscription) Unsubscribe(ctx context.Context) error {

	var err error
	s.release.Do(func() {

		s.client.mutex.Lock()
		id := s.id
		_, active := s.client.subs[id]
		delete(s.client.subs, id)
		s.client.mutex.Unlock()

		s.fail(errUnsubscribed)

		if !active {
			return
		}

		err = s.client.Call(ctx, nil, s.unsubscribe, id)
	})

	return err
}

func (s *Subscription) fail(err error) {
	s.failOnce.Do(func() {
		s.err = err
		close(s.failed)
	})
}
