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
	"github.com/optakt/ink-caller/failure"
	"github.com/optakt/ink-caller/models/ink"
)

// Build wraps contract call data into a call payload. It fails with an
// OutOfRange error if the value or the deposit limit do not fit into the
// ledger's 128-bit balances. The weight budget is taken as given.
func Build(contract ink.Address, value ink.Balance, budget ink.Weight, deposit *ink.Balance, data []byte) (ink.CallPayload, error) {

	if contract.IsZero() {
		return ink.CallPayload{}, failure.InvalidAddress{
			Description: failure.NewDescription("contract address must not be zero"),
			Address:     contract.String(),
		}
	}

	if !value.Fits() {
		return ink.CallPayload{}, failure.OutOfRange{
			Description: failure.NewDescription("transferred value exceeds 128 bits"),
			Field:       "value",
			Value:       value.String(),
		}
	}

	var limit *ink.Balance
	if deposit != nil {
		if !deposit.Fits() {
			return ink.CallPayload{}, failure.OutOfRange{
				Description: failure.NewDescription("storage deposit limit exceeds 128 bits"),
				Field:       "deposit_limit",
				Value:       deposit.String(),
			}
		}
		d := *deposit
		limit = &d
	}

	// The payload owns its data so later changes to the caller's slice can't
	// alter it.
	owned := make([]byte, len(data))
	copy(owned, data)

	payload := ink.CallPayload{
		Contract:     contract,
		Value:        value,
		Budget:       budget,
		DepositLimit: limit,
		Data:         owned,
	}

	return payload, nil
}
