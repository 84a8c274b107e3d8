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

package transactor

import (
	"context"

	"github.com/optakt/ink-caller/models/ink"
)

// Chain provides the chain state that a transaction commits to.
type Chain interface {
	GenesisHash(ctx context.Context) (ink.Hash, error)
	RuntimeVersion(ctx context.Context) (ink.RuntimeVersion, error)
	NextIndex(ctx context.Context, address ink.Address) (uint64, error)
	FinalizedHeader(ctx context.Context) (ink.Header, error)
}
