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

	"github.com/optakt/ink-caller/models/ink"
)

// Switch picks the signer matching how the acting account was obtained. The
// choice is made once per request; a failed signature is never retried with
// the other signer.
type Switch struct {
	local    Signer
	external Signer
}

// NewSwitch creates a switch between a local and an external signer. Either
// may be nil if the corresponding origin is not configured.
func NewSwitch(local Signer, external Signer) *Switch {
	s := Switch{
		local:    local,
		external: external,
	}
	return &s
}

// Sign forwards the request to the signer of its origin.
func (s *Switch) Sign(ctx context.Context, req ink.SigningRequest) (ink.Signature, error) {

	var signer Signer
	switch req.Origin.Kind {
	case ink.OriginLocal:
		signer = s.local
	case ink.OriginAgent:
		signer = s.external
	}
	if signer == nil {
		return ink.Signature{}, fmt.Errorf("no signer for origin (%s)", req.Origin)
	}

	return signer.Sign(ctx, req)
}
