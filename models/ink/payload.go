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

// Weight is the resource budget of a contract call: compute time in
// picoseconds and the size of the storage proof in bytes.
type Weight struct {
	RefTime   uint64 `json:"ref_time"`
	ProofSize uint64 `json:"proof_size"`
}

// CallPayload is a complete contract call, ready to be wrapped into an
// extrinsic. It is built once per attempt and never modified afterwards.
type CallPayload struct {
	Contract     Address
	Value        Balance
	Budget       Weight
	DepositLimit *Balance
	Data         []byte
}
