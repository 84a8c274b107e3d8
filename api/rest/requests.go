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

// ContractRequest selects the token contract.
type ContractRequest struct {
	Contract string `json:"contract" validate:"required,ss58"`
}

// SelectRequest selects the acting account by its index in the account list.
type SelectRequest struct {
	Index *int `json:"index" validate:"required,gte=0"`
}

// TransferRequest asks for a transfer of tokens from the selected account.
type TransferRequest struct {
	To     string `json:"to" validate:"required,ss58"`
	Amount string `json:"amount" validate:"required,numeric"`
}
