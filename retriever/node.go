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

package retriever

import (
	"context"

	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/rpc"
)

// Node runs read-only queries against the chain state.
type Node interface {
	BestHeader(ctx context.Context) (ink.Header, error)
	Block(ctx context.Context, hash ink.Hash) (ink.Block, error)
	Events(ctx context.Context, hash ink.Hash) ([]ink.EventRecord, error)
	AccountInfo(ctx context.Context, address ink.Address) (ink.AccountInfo, error)
	ContractCall(ctx context.Context, req rpc.ContractRequest, at *ink.Hash) (ink.ExecResult, error)
}

// Encoder encodes contract messages.
type Encoder interface {
	Encode(method string, args ...interface{}) ([]byte, error)
}
