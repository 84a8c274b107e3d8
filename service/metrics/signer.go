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

package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/optakt/ink-caller/failure"
	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/signer"
)

// Signer measures the signatures produced by the wrapped signer.
type Signer struct {
	signer  signer.Signer
	metrics *Metrics
}

// NewSigner wraps the signer.
func NewSigner(signer signer.Signer, metrics *Metrics) *Signer {
	s := Signer{
		signer:  signer,
		metrics: metrics,
	}
	return &s
}

// Sign forwards the request and records its duration and result.
func (s *Signer) Sign(ctx context.Context, req ink.SigningRequest) (ink.Signature, error) {
	start := time.Now()
	sig, err := s.signer.Sign(ctx, req)
	s.metrics.signature(req.Origin, result(err), time.Since(start))
	return sig, err
}

func result(err error) string {
	var declined failure.AgentDeclined
	var unavailable failure.AgentUnavailable
	var invalid failure.InvalidSignature
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &declined):
		return "declined"
	case errors.As(err, &unavailable):
		return "unavailable"
	case errors.As(err, &invalid):
		return "invalid"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
