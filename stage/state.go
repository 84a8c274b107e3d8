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

// State is the observable state of the call flow.
type State struct {
	Stage    Stage         `json:"stage"`
	Contract ink.Address   `json:"contract,omitempty"`
	Accounts []ink.Account `json:"accounts"`
	Selected *ink.Account  `json:"selected,omitempty"`
	Outcome  *ink.Outcome  `json:"outcome,omitempty"`
	Balance  *ink.Balance  `json:"balance,omitempty"`
	Supply   *ink.Balance  `json:"supply,omitempty"`
	Error    string        `json:"error,omitempty"`
}

func (s State) copy() State {
	c := s
	c.Accounts = append([]ink.Account(nil), s.Accounts...)
	if s.Selected != nil {
		selected := *s.Selected
		c.Selected = &selected
	}
	if s.Outcome != nil {
		outcome := *s.Outcome
		outcome.Events = append([]ink.Event(nil), s.Outcome.Events...)
		c.Outcome = &outcome
	}
	if s.Balance != nil {
		balance := *s.Balance
		c.Balance = &balance
	}
	if s.Supply != nil {
		supply := *s.Supply
		c.Supply = &supply
	}
	return c
}
