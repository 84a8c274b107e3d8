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
	"fmt"

	"github.com/rs/zerolog"

	"github.com/optakt/ink-caller/models/ink"
)

// Lister lists the accounts held by an agent.
type Lister interface {
	Accounts(ctx context.Context) ([]ink.Account, error)
}

// Directory lists every account that a signer is configured for: the local
// account first, followed by the accounts of the agent. Either may be nil.
type Directory struct {
	log   zerolog.Logger
	local *Local
	agent Lister
}

// NewDirectory creates a directory of the local and agent accounts.
func NewDirectory(log zerolog.Logger, local *Local, agent Lister) *Directory {
	d := Directory{
		log:   log.With().Str("component", "directory").Logger(),
		local: local,
		agent: agent,
	}
	return &d
}

// Accounts returns the available accounts. When the agent fails, the local
// account is still listed; without local account, the agent's error is
// returned.
func (d *Directory) Accounts(ctx context.Context) ([]ink.Account, error) {

	var accounts []ink.Account
	if d.local != nil {
		accounts = append(accounts, d.local.Account())
	}

	if d.agent == nil {
		return accounts, nil
	}

	listed, err := d.agent.Accounts(ctx)
	if err != nil && len(accounts) == 0 {
		return nil, fmt.Errorf("could not list agent accounts: %w", err)
	}
	if err != nil {
		d.log.Warn().Err(err).Msg("could not list agent accounts, using local account only")
		return accounts, nil
	}

	return append(accounts, listed...), nil
}
