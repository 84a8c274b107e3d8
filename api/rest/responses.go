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

package rest

import (
	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/stage"
)

// StateResponse is the observable state of the call flow.
type StateResponse struct {
	Stage    string            `json:"stage"`
	Contract string            `json:"contract,omitempty"`
	Accounts []AccountResponse `json:"accounts"`
	Selected *AccountResponse  `json:"selected,omitempty"`
	Outcome  *ink.Outcome      `json:"outcome,omitempty"`
	Balance  *ink.Balance      `json:"balance,omitempty"`
	Supply   *ink.Balance      `json:"supply,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// AccountResponse is an account that can act as sender.
type AccountResponse struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
	Source  string `json:"source,omitempty"`
	Type    string `json:"type,omitempty"`
	Origin  string `json:"origin"`
}

func stateResponse(state stage.State, prefix uint16) StateResponse {

	res := StateResponse{
		Stage:    state.Stage.String(),
		Accounts: make([]AccountResponse, 0, len(state.Accounts)),
		Outcome:  state.Outcome,
		Balance:  state.Balance,
		Supply:   state.Supply,
		Error:    state.Error,
	}
	if !state.Contract.IsZero() {
		res.Contract = state.Contract.SS58(prefix)
	}
	for _, account := range state.Accounts {
		res.Accounts = append(res.Accounts, accountResponse(account, prefix))
	}
	if state.Selected != nil {
		selected := accountResponse(*state.Selected, prefix)
		res.Selected = &selected
	}

	return res
}

func accountResponse(account ink.Account, prefix uint16) AccountResponse {
	return AccountResponse{
		Address: account.Address.SS58(prefix),
		Name:    account.Name,
		Source:  account.Source,
		Type:    account.Type,
		Origin:  account.Origin.String(),
	}
}
