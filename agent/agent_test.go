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

package agent_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/ink-caller/agent"
	"github.com/optakt/ink-caller/failure"
	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/rpc"
	"github.com/optakt/ink-caller/testing/mocks"
)

const (
	agentName = "polkadot-js"
	alice     = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	bob       = "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"
)

// respond decodes the given JSON into the result of a call.
func respond(result interface{}, payload string) error {
	return json.Unmarshal([]byte(payload), result)
}

func TestClient_Accounts(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		caller := mocks.BaselineCaller(t)
		caller.CallFunc = func(_ context.Context, result interface{}, method string, _ ...interface{}) error {
			assert.Equal(t, "signer_accounts", method)
			return respond(result, `[
				{"address": "`+alice+`", "name": "Alice", "source": "polkadot-js", "type": "sr25519"},
				{"address": "invalid", "name": "Broken"},
				{"address": "`+bob+`", "name": "Bob", "source": "polkadot-js", "type": "ed25519"}
			]`)
		}
		client := agent.New(mocks.NoopLogger, agentName, ink.DefaultPrefix, caller)

		accounts, err := client.Accounts(context.Background())

		require.NoError(t, err)
		require.Len(t, accounts, 2)
		assert.Equal(t, "Alice", accounts[0].Name)
		assert.Equal(t, alice, accounts[0].Address.String())
		assert.Equal(t, ink.AgentOrigin(agentName), accounts[0].Origin)
		assert.Equal(t, "Bob", accounts[1].Name)
		assert.Equal(t, "ed25519", accounts[1].Type)
	})

	t.Run("handles unreachable agent", func(t *testing.T) {
		t.Parallel()

		caller := mocks.BaselineCaller(t)
		caller.CallFunc = func(context.Context, interface{}, string, ...interface{}) error {
			return failure.TransientNetwork{Endpoint: "ws://localhost:9955"}
		}
		client := agent.New(mocks.NoopLogger, agentName, ink.DefaultPrefix, caller)

		_, err := client.Accounts(context.Background())

		var unavailable failure.AgentUnavailable
		require.True(t, errors.As(err, &unavailable))
		assert.Equal(t, agentName, unavailable.Agent)
	})
}

func TestClient_SignPayload(t *testing.T) {
	signer, _, err := ink.ParseAddress(alice)
	require.NoError(t, err)

	req := ink.SigningRequest{
		Signer:   signer,
		Origin:   ink.AgentOrigin(agentName),
		Unsigned: mocks.GenericUnsigned,
	}

	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		caller := mocks.BaselineCaller(t)
		caller.CallFunc = func(_ context.Context, result interface{}, method string, params ...interface{}) error {
			require.Equal(t, "signer_signPayload", method)
			require.Len(t, params, 1)

			payload, ok := params[0].(agent.Payload)
			require.True(t, ok)
			assert.Equal(t, alice, payload.Address)
			assert.Equal(t, "0x080600", payload.Method)
			assert.Equal(t, "0x00", payload.Era)
			assert.Equal(t, "0x00000007", payload.Nonce)
			assert.Equal(t, "0x00000064", payload.SpecVersion)
			assert.Equal(t, "0x00000001", payload.TransactionVersion)
			assert.Equal(t, mocks.GenericUnsigned.Genesis.Hex(), payload.GenesisHash)
			assert.Equal(t, uint(4), payload.Version)
			assert.NotEmpty(t, payload.ID)

			return respond(result, `{"id": "`+payload.ID+`", "signature": "0x00`+zeros(64)+`"}`)
		}
		client := agent.New(mocks.NoopLogger, agentName, ink.DefaultPrefix, caller)

		raw, err := client.SignPayload(context.Background(), req)

		require.NoError(t, err)
		assert.Len(t, raw, 65)
	})

	t.Run("handles user rejection", func(t *testing.T) {
		t.Parallel()

		caller := mocks.BaselineCaller(t)
		caller.CallFunc = func(context.Context, interface{}, string, ...interface{}) error {
			return &rpc.Error{Code: 4001, Message: "Cancelled"}
		}
		client := agent.New(mocks.NoopLogger, agentName, ink.DefaultPrefix, caller)

		_, err := client.SignPayload(context.Background(), req)

		var declined failure.AgentDeclined
		require.True(t, errors.As(err, &declined))
		assert.Equal(t, signer, declined.Address)
		assert.Equal(t, agentName, declined.Agent)
	})

	t.Run("handles answer to another request", func(t *testing.T) {
		t.Parallel()

		caller := mocks.BaselineCaller(t)
		caller.CallFunc = func(_ context.Context, result interface{}, _ string, _ ...interface{}) error {
			return respond(result, `{"id": "other", "signature": "0x00"}`)
		}
		client := agent.New(mocks.NoopLogger, agentName, ink.DefaultPrefix, caller)

		_, err := client.SignPayload(context.Background(), req)

		assert.Error(t, err)
	})

	t.Run("handles malformed hex", func(t *testing.T) {
		t.Parallel()

		caller := mocks.BaselineCaller(t)
		caller.CallFunc = func(_ context.Context, result interface{}, _ string, _ ...interface{}) error {
			return respond(result, `{"signature": "0xzz"}`)
		}
		client := agent.New(mocks.NoopLogger, agentName, ink.DefaultPrefix, caller)

		_, err := client.SignPayload(context.Background(), req)

		assert.Error(t, err)
	})

	t.Run("passes cancellation on", func(t *testing.T) {
		t.Parallel()

		caller := mocks.BaselineCaller(t)
		caller.CallFunc = func(ctx context.Context, _ interface{}, _ string, _ ...interface{}) error {
			<-ctx.Done()
			return ctx.Err()
		}
		client := agent.New(mocks.NoopLogger, agentName, ink.DefaultPrefix, caller)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := client.SignPayload(ctx, req)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func zeros(n int) string {
	out := make([]byte, 2*n)
	for i := range out {
		out[i] = '0'
	}
	return string(out)
}
