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

package metadata

import (
	"github.com/optakt/ink-caller/models/ink"
)

// Labels of the PSP22 fungible token standard.
const (
	TotalSupply       = "PSP22::total_supply"
	BalanceOf         = "PSP22::balance_of"
	Allowance         = "PSP22::allowance"
	Transfer          = "PSP22::transfer"
	TransferFrom      = "PSP22::transfer_from"
	Approve           = "PSP22::approve"
	IncreaseAllowance = "PSP22::increase_allowance"
	DecreaseAllowance = "PSP22::decrease_allowance"
	Mint              = "PSP22Mintable::mint"
)

// PSP22 returns the metadata of a PSP22 token contract.
func PSP22() *Metadata {
	return New(
		message(TotalSupply, false, TypeBalance),
		message(BalanceOf, false, TypeBalance,
			Arg{Label: "owner", Type: TypeAccountID},
		),
		message(Allowance, false, TypeBalance,
			Arg{Label: "owner", Type: TypeAccountID},
			Arg{Label: "spender", Type: TypeAccountID},
		),
		message(Transfer, true, "",
			Arg{Label: "to", Type: TypeAccountID},
			Arg{Label: "value", Type: TypeBalance},
			Arg{Label: "data", Type: TypeBytes},
		),
		message(TransferFrom, true, "",
			Arg{Label: "from", Type: TypeAccountID},
			Arg{Label: "to", Type: TypeAccountID},
			Arg{Label: "value", Type: TypeBalance},
			Arg{Label: "data", Type: TypeBytes},
		),
		message(Approve, true, "",
			Arg{Label: "spender", Type: TypeAccountID},
			Arg{Label: "value", Type: TypeBalance},
		),
		message(IncreaseAllowance, true, "",
			Arg{Label: "spender", Type: TypeAccountID},
			Arg{Label: "delta_value", Type: TypeBalance},
		),
		message(DecreaseAllowance, true, "",
			Arg{Label: "spender", Type: TypeAccountID},
			Arg{Label: "delta_value", Type: TypeBalance},
		),
		message(Mint, true, "",
			Arg{Label: "account", Type: TypeAccountID},
			Arg{Label: "amount", Type: TypeBalance},
		),
	)
}

func message(label string, mutates bool, returns string, args ...Arg) Message {
	if args == nil {
		args = []Arg{}
	}
	m := Message{
		Label:    label,
		Selector: ink.SelectorFor(label),
		Args:     args,
		Mutates:  mutates,
		Returns:  returns,
	}
	return m
}
