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
	"github.com/optakt/ink-caller/models/ink"
)

// Command is an operation that the state machine asks its controller to run.
// The results are fed back as events carrying the command's tag.
type Command interface {
	Name() string
}

// ListAccounts lists the available accounts.
type ListAccounts struct {
	Tag uint64
}

// QueryBalance reads the token supply and the balance of the owner.
type QueryBalance struct {
	Tag      uint64
	Contract ink.Address
	Owner    ink.Address
}

// Sign builds a transfer from the account and gets it signed.
type Sign struct {
	Tag      uint64
	Account  ink.Account
	Contract ink.Address
	To       ink.Address
	Amount   ink.Balance
}

// Submit submits a signed transfer and reports its outcomes.
type Submit struct {
	Tag       uint64
	Request   ink.SigningRequest
	Signature ink.Signature
}

// Cancel abandons the pending signature or submission watch.
type Cancel struct{}

func (ListAccounts) Name() string { return "list_accounts" }
func (QueryBalance) Name() string { return "query_balance" }
func (Sign) Name() string         { return "sign" }
func (Submit) Name() string       { return "submit" }
func (Cancel) Name() string       { return "cancel" }
