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

package mocks

import (
	"context"
	"testing"

	"github.com/optakt/ink-caller/models/ink"
)

type Agent struct {
	SignPayloadFunc func(ctx context.Context, req ink.SigningRequest) ([]byte, error)
	AccountsFunc    func(ctx context.Context) ([]ink.Account, error)
}

func BaselineAgent(t *testing.T) *Agent {
	t.Helper()

	a := Agent{
		SignPayloadFunc: func(context.Context, ink.SigningRequest) ([]byte, error) {
			return GenericSignature.Multi(), nil
		},
		AccountsFunc: func(context.Context) ([]ink.Account, error) {
			return GenericAccounts(2), nil
		},
	}

	return &a
}

func (a *Agent) SignPayload(ctx context.Context, req ink.SigningRequest) ([]byte, error) {
	return a.SignPayloadFunc(ctx, req)
}

func (a *Agent) Accounts(ctx context.Context) ([]ink.Account, error) {
	return a.AccountsFunc(ctx)
}

type Signer struct {
	SignFunc func(ctx context.Context, req ink.SigningRequest) (ink.Signature, error)
}

func BaselineSigner(t *testing.T) *Signer {
	t.Helper()

	s := Signer{
		SignFunc: func(context.Context, ink.SigningRequest) (ink.Signature, error) {
			return GenericSignature, nil
		},
	}

	return &s
}

func (s *Signer) Sign(ctx context.Context, req ink.SigningRequest) (ink.Signature, error) {
	return s.SignFunc(ctx, req)
}
