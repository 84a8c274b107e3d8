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
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/optakt/ink-caller/failure"
	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/registry"
)

var errClosed = errors.New("client closed")

// Client is a JSON-RPC 2.0 client for a Substrate node, connected over a
// websocket. It is safe for concurrent use. A dropped connection fails all
// pending requests and subscriptions with a TransientNetwork error and is
// redialed on the next request.
type Client struct {
	log    zerolog.Logger
	url    string
	dialer *websocket.Dialer
	cfg    Config

	mutex   sync.Mutex
	conn    *websocket.Conn
	nextID  uint64
	pending map[uint64]*call
	subs    map[string]*Subscription
	genesis *ink.Hash
	runtime map[uint32]*registry.Metadata
	closed  bool

	write sync.Mutex
}

type call struct {
	response chan *message
	sub      *Subscription
}

// Dial connects to the node at the given websocket URL.
func Dial(ctx context.Context, log zerolog.Logger, url string, options ...Option) (*Client, error) {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	c := Client{
		log:     log.With().Str("component", "rpc").Logger(),
		url:     url,
		dialer:  websocket.DefaultDialer,
		cfg:     cfg,
		pending: make(map[uint64]*call),
		subs:    make(map[string]*Subscription),
		runtime: make(map[uint32]*registry.Metadata),
	}

	_, err := c.connection(ctx)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// Call executes the given method and decodes its result into the value
// pointed to by result, unless result is nil. Node errors are returned as
// *Error values.
func (c *Client) Call(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	return c.request(ctx, nil, result, method, params...)
}

// Subscribe starts a subscription with the given method. The returned
// subscription is released with its Unsubscribe method, which calls the given
// unsubscribe method on the node.
func (c *Client) Subscribe(ctx context.Context, subscribe string, unsubscribe string, params ...interface{}) (*Subscription, error) {

	sub := Subscription{
		client:      c,
		unsubscribe: unsubscribe,
		queue:       ink.NewQueue(),
		failed:      make(chan struct{}),
	}

	err := c.request(ctx, &sub, nil, subscribe, params...)
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

// Close closes the connection. Pending requests and subscriptions fail.
func (c *Client) Close() error {

	c.mutex.Lock()
	c.closed = true
	conn := c.conn
	c.mutex.Unlock()

	if conn == nil {
		return nil
	}

	c.write.Lock()
	err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.write.Unlock()

	c.drop(conn, errClosed)

	if err != nil {
		return fmt.Errorf("could not send close message: %w", err)
	}

	return nil
}

func (c *Client) request(ctx context.Context, sub *Subscription, result interface{}, method string, params ...interface{}) error {

	conn, err := c.connection(ctx)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	c.nextID++
	id := c.nextID
	pending := call{
		response: make(chan *message, 1),
		sub:      sub,
	}
	c.pending[id] = &pending
	c.mutex.Unlock()

	defer func() {
		c.mutex.Lock()
		delete(c.pending, id)
		c.mutex.Unlock()
	}()

	if params == nil {
		params = []interface{}{}
	}
	req := request{
		Version: version,
		ID:      id,
		Method:  method,
		Params:  params,
	}

	c.write.Lock()
	err = conn.WriteJSON(req)
	c.write.Unlock()
	if err != nil {
		c.drop(conn, err)
		return failure.TransientNetwork{
			Description: failure.NewDescription("could not send request",
				failure.WithString("method", method),
				failure.WithErr(err),
			),
			Endpoint: c.url,
		}
	}

	select {

	case <-ctx.Done():
		return ctx.Err()

	case msg, ok := <-pending.response:
		if !ok {
			return failure.TransientNetwork{
				Description: failure.NewDescription("connection lost before response",
					failure.WithString("method", method),
				),
				Endpoint: c.url,
			}
		}
		if msg.Error != nil {
			return msg.Error
		}
		if result == nil {
			return nil
		}
		err = json.Unmarshal(msg.Result, result)
		if err != nil {
			return fmt.Errorf("could not decode %s result: %w", method, err)
		}
		return nil
	}
}

func (c *Client) connection(ctx context.Context) (*websocket.Conn, error) {

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return nil, errClosed
	}
	if c.conn != nil {
		return c.conn, nil
	}

	var err error
	backoff := c.cfg.Backoff
	for attempt := uint(0); attempt <= c.cfg.Retries; attempt++ {

		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		var conn *websocket.Conn
		conn, _, err = c.dialer.DialContext(ctx, c.url, nil)
		if err != nil {
			c.log.Warn().Err(err).Str("url", c.url).Uint("attempt", attempt).Msg("could not connect to node")
			continue
		}

		c.conn = conn
		go c.read(conn)

		c.log.Debug().Str("url", c.url).Uint("attempt", attempt).Msg("connected to node")

		return conn, nil
	}

	return nil, failure.TransientNetwork{
		Description: failure.NewDescription("could not connect to node",
			failure.WithErr(err),
			failure.WithInt("attempts", int(c.cfg.Retries)+1),
		),
		Endpoint: c.url,
	}
}

func (c *Client) read(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.drop(conn, err)
			return
		}

		var msg message
		err = json.Unmarshal(data, &msg)
		if err != nil {
			c.log.Warn().Err(err).Msg("could not decode message from node")
			continue
		}

		c.dispatch(&msg)
	}
}

func (c *Client) dispatch(msg *message) {

	c.mutex.Lock()
	defer c.mutex.Unlock()

	switch {

	case msg.ID != nil:
		pending, ok := c.pending[*msg.ID]
		if !ok {
			c.log.Debug().Uint64("id", *msg.ID).Msg("dropping response without pending request")
			return
		}
		delete(c.pending, *msg.ID)

		// Subscriptions are registered before any further message is read, so
		// that no notification can arrive for an unknown subscription.
		if pending.sub != nil && msg.Error == nil {
			pending.sub.id = subscriptionID(msg.Result)
			c.subs[pending.sub.id] = pending.sub
		}

		pending.response <- msg

	case msg.Params != nil:
		id := subscriptionID(msg.Params.Subscription)
		sub, ok := c.subs[id]
		if !ok {
			c.log.Debug().Str("subscription", id).Str("method", msg.Method).Msg("dropping notification for unknown subscription")
			return
		}
		sub.queue.Push(msg.Params.Result)
	}
}

func (c *Client) drop(conn *websocket.Conn, err error) {

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.conn != conn {
		return
	}

	c.conn = nil
	_ = conn.Close()

	lost := failure.TransientNetwork{
		Description: failure.NewDescription("connection to node lost", failure.WithErr(err)),
		Endpoint:    c.url,
	}

	for id, pending := range c.pending {
		close(pending.response)
		delete(c.pending, id)
	}
	for id, sub := range c.subs {
		sub.fail(lost)
		delete(c.subs, id)
	}

	if !c.closed {
		c.log.Warn().Err(err).Str("url", c.url).Msg("connection to node lost")
	}
}
