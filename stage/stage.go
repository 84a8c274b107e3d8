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

// Stage is the position of the call flow, as presented to the user.
type Stage uint8

// Call stages. Error is left only through a reset.
const (
	EnteringContract Stage = iota + 1
	EnteringAccount
	AwaitingAccountSelection
	Signing
	Submitting
	AwaitingBalance
	DisplayingResult
	Error
)

// Stages lists all stages in flow order.
var Stages = []Stage{
	EnteringContract,
	EnteringAccount,
	AwaitingAccountSelection,
	Signing,
	Submitting,
	AwaitingBalance,
	DisplayingResult,
	Error,
}

func (s Stage) String() string {
	switch s {
	case EnteringContract:
		return "entering_contract"
	case EnteringAccount:
		return "entering_account"
	case AwaitingAccountSelection:
		return "awaiting_account_selection"
	case Signing:
		return "signing"
	case Submitting:
		return "submitting"
	case AwaitingBalance:
		return "awaiting_balance"
	case DisplayingResult:
		return "displaying_result"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// busy reports whether the stage waits for a signature or a submission.
func (s Stage) busy() bool {
	return s == Signing || s == Submitting
}
