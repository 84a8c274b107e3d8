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

package ink

import (
	"context"
)

// Stream is a finite sequence of status notifications for one watched
// transaction. Next fails with a TransientNetwork error when the underlying
// connection drops.
type Stream interface {
	Next(ctx context.Context) (Status, error)
	Close()
}

// Block is a block with its opaque, length-prefixed extrinsics.
type Block struct {
	Header     Header
	Extrinsics [][]byte
}

// Locate returns the index of the extrinsic with the given hash.
func (b Block) Locate(hash Hash) (int, bool) {
	for i, extrinsic := range b.Extrinsics {
		if Blake256(extrinsic) == hash {
			return i, true
		}
	}
	return 0, false
}

// ExecResult is the outcome of a contract call dry-run.
type ExecResult struct {
	GasConsumed   Weight
	GasRequired   Weight
	DepositCharge bool
	Deposit       Balance
	Debug         string
	DispatchError []byte
	Reverted      bool
	Data          []byte
}

// Failed reports whether the call did not complete successfully.
func (r ExecResult) Failed() bool {
	return r.DispatchError != nil || r.Reverted
}
