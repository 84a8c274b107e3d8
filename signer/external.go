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

package signer

import (
	"context"
	"errors"
	"fmt"

	"github.com/optakt/ink-caller/failure"
	"github.com/optakt/ink-caller/models/ink"
)

// Agent is an out-of-process signing agent. It serializes the request into
// its own wire format and returns the raw, scheme-tagged signature.
type Agent interface {
	SignPayload(ctx context.Context, req ink.SigningRequest) ([]byte, error)
}

// External delegates signing to an untrusted agent and verifies every
// signature it returns before handing it out.
type External struct {
	agent Agent
	cfg   Config
}

// NewExternal creates a signer that uses the given agent.
func NewExternal(agent Agent, options ...Option) *External {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	e := External{
		agent: agent,
		cfg:   cfg,
	}

	return &e
}

// Sign requests a signature from the agent and waits until the agent answers,
// the timeout expires or the context is canceled.
func (e *External) Sign(ctx context.Context, req ink.SigningRequest) (ink.Signature, error) {

	if req.Origin.Kind != ink.OriginAgent {
		return ink.Signature{}, fmt.Errorf("request origin is not an agent (origin: %s)", req.Origin)
	}

	wait := ctx
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		wait, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	raw, err := e.agent.SignPayload(wait, req)
	if ctx.Err() != nil {
		return ink.Signature{}, fmt.Errorf("signing request abandoned: %w", ctx.Err())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ink.Signature{}, failure.AgentUnavailable{
			Description: failure.NewDescription("agent did not answer in time",
				failure.WithString("timeout", e.cfg.Timeout.String()),
			),
			Agent: req.Origin.Agent,
		}
	}
	if err != nil {
		return ink.Signature{}, fmt.Errorf("could not get signature from agent: %w", err)
	}

	sig, err := ink.DecodeSignature(raw)
	if err != nil {
		return ink.Signature{}, failure.InvalidSignature{
			Description: failure.NewDescription("agent returned malformed signature",
				failure.WithErr(err),
				failure.WithString("agent", req.Origin.Agent),
			),
			Address: req.Signer,
		}
	}

	// Agents may report an empty or non-substrate key type, which says nothing
	// about the scheme.
	declared, err := ink.ParseScheme(req.Type)
	if err == nil && declared != sig.Scheme {
		return ink.Signature{}, failure.InvalidSignature{
			Description: failure.NewDescription("agent signed with a scheme other than the declared key type",
				failure.WithString("declared", declared.String()),
				failure.WithString("agent", req.Origin.Agent),
			),
			Address: req.Signer,
			Scheme:  sig.Scheme,
		}
	}

	err = Verify(req.Signer, req.Unsigned.Message(), sig)
	if err != nil {
		return ink.Signature{}, err
	}

	return sig, nil
}
