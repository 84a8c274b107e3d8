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

package stage

import (
	"context"

	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/retriever"
	"github.com/optakt/ink-caller/tracker"
)

// Lister lists the accounts that can act as sender.
type Lister interface {
	Accounts(ctx context.Context) ([]ink.Account, error)
}

// Encoder encodes contract messages.
type Encoder interface {
	Encode(method string, args ...interface{}) ([]byte, error)
}

// Preparer creates the unsigned transaction for a call.
type Preparer interface {
	Prepare(ctx context.Context, payload ink.CallPayload, signer ink.Address) (ink.Unsigned, error)
}

// Signer signs transactions with the signer matching the request's origin.
type Signer interface {
	Sign(ctx context.Context, req ink.SigningRequest) (ink.Signature, error)
}

// Submitter submits signed transactions and watches their outcomes.
type Submitter interface {
	Submit(ctx context.Context, req ink.SigningRequest, sig ink.Signature) (*tracker.Watch, error)
}

// Querier reads token state.
type Querier interface {
	Snapshot(ctx context.Context, contract ink.Address, owner ink.Address) (retriever.Snapshot, error)
}

// Observer is notified of every event processed by the controller.
type Observer interface {
	Event(name string, applied bool)
}
