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

package agent

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/optakt/ink-caller/failure"
	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/rpc"
)

// codeRejected is the error code of a request that the user declined.
const codeRejected = 4001

// Caller executes JSON-RPC calls on the agent.
type Caller interface {
	Call(ctx context.Context, result interface{}, method string, params ...interface{}) error
}

// Client talks to an external signing agent, such as a wallet extension
// bridged over a websocket. It lists the accounts held by the agent and
// forwards signing requests to it.
type Client struct {
	log    zerolog.Logger
	name   string
	prefix uint16
	caller Caller
}

// New creates a client for the agent with the given name, which becomes the
// origin of all accounts it lists.
func New(log zerolog.Logger, name string, prefix uint16, caller Caller) *Client {

	c := Client{
		log:    log.With().Str("component", "agent").Str("agent", name).Logger(),
		name:   name,
		prefix: prefix,
		caller: caller,
	}

	return &c
}

// Name returns the name of the agent.
func (c *Client) Name() string {
	return c.name
}

// Accounts returns the accounts held by the agent, in the agent's order.
func (c *Client) Accounts(ctx context.Context) ([]ink.Account, error) {

	var accounts []account
	err := c.caller.Call(ctx, &accounts, "signer_accounts")
	if err != nil {
		return nil, c.convert(err, ink.Address{})
	}

	converted := make([]ink.Account, 0, len(accounts))
	for _, acc := range accounts {
		address, _, err := ink.ParseAddress(acc.Address)
		if err != nil {
			c.log.Warn().Err(err).Str("address", acc.Address).Msg("skipping account with invalid address")
			continue
		}
		converted = append(converted, ink.Account{
			Address: address,
			Name:    acc.Name,
			Source:  acc.Source,
			Type:    acc.Type,
			Origin:  ink.AgentOrigin(c.name),
		})
	}

	return converted, nil
}

// SignPayload asks the agent to sign the unsigned transaction of the request
// and returns the scheme-tagged signature exactly as the agent sent it.
func (c *Client) SignPayload(ctx context.Context, req ink.SigningRequest) ([]byte, error) {

	id := uuid.New().String()
	payload := convertPayload(id, c.prefix, req)

	c.log.Debug().Str("request", id).Str("signer", req.Signer.String()).Msg("requesting signature from agent")

	var sig signature
	err := c.caller.Call(ctx, &sig, "signer_signPayload", payload)
	if err != nil {
		return nil, c.convert(err, req.Signer)
	}

	if sig.ID != "" && sig.ID != id {
		return nil, fmt.Errorf("agent answered another request (request: %s, answer: %s)", id, sig.ID)
	}

	raw, err := decodeHex(sig.Signature)
	if err != nil {
		return nil, fmt.Errorf("could not decode agent signature: %w", err)
	}

	c.log.Debug().Str("request", id).Int("length", len(raw)).Msg("signature received from agent")

	return raw, nil
}

func (c *Client) convert(err error, address ink.Address) error {

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var rpcErr *rpc.Error
	if errors.As(err, &rpcErr) {
		text := "agent declined request"
		if rpcErr.Code != codeRejected {
			text = "agent failed request"
		}
		return failure.AgentDeclined{
			Description: failure.NewDescription(text,
				failure.WithInt("code", rpcErr.Code),
				failure.WithString("reason", rpcErr.Reason()),
			),
			Agent:   c.name,
			Address: address,
		}
	}

	return failure.AgentUnavailable{
		Description: failure.NewDescription("could not reach agent",
			failure.WithErr(err),
		),
		Agent: c.name,
	}
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}
