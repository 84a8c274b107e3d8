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
	"github.com/optakt/ink-caller/retriever"
)

// Event is an input of the state machine. Events carrying a tag are results
// of a command; they only apply if their tag is the one of the latest
// command.
type Event interface {
	Name() string
}

// ContractChanged sets the token contract to call.
type ContractChanged struct {
	Contract ink.Address
}

// AccountsRequested asks for the list of available accounts.
type AccountsRequested struct{}

// AccountsReceived delivers the list of available accounts.
type AccountsReceived struct {
	Tag      uint64
	Accounts []ink.Account
}

// AccountChosen selects the acting account by its index in the list.
type AccountChosen struct {
	Index int
}

// TransferRequested asks for a token transfer from the selected account.
type TransferRequested struct {
	To     ink.Address
	Amount ink.Balance
}

// SignatureObtained delivers the signature of a transfer.
type SignatureObtained struct {
	Tag       uint64
	Request   ink.SigningRequest
	Signature ink.Signature
}

// OutcomeReceived delivers one outcome of the submitted transfer.
type OutcomeReceived struct {
	Tag     uint64
	Outcome ink.Outcome
}

// BalanceRequested asks for a refresh of the displayed balance.
type BalanceRequested struct{}

// BalanceReceived delivers the balance and supply of the token.
type BalanceReceived struct {
	Tag      uint64
	Snapshot retriever.Snapshot
}

// ErrorOccurred reports a failed command.
type ErrorOccurred struct {
	Tag     uint64
	Message string
}

// Reset leaves the error stage.
type Reset struct{}

func (ContractChanged) Name() string   { return "contract_changed" }
func (AccountsRequested) Name() string { return "accounts_requested" }
func (AccountsReceived) Name() string  { return "accounts_received" }
func (AccountChosen) Name() string     { return "account_chosen" }
func (TransferRequested) Name() string { return "transfer_requested" }
func (SignatureObtained) Name() string { return "signature_obtained" }
func (OutcomeReceived) Name() string   { return "outcome_received" }
func (BalanceRequested) Name() string  { return "balance_requested" }
func (BalanceReceived) Name() string   { return "balance_received" }
func (ErrorOccurred) Name() string     { return "error_occurred" }
func (Reset) Name() string             { return "reset" }
