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
	"time"
)

// AccountInfo is the native state of an account.
type AccountInfo struct {
	Nonce    uint32  `json:"nonce"`
	Free     Balance `json:"free"`
	Reserved Balance `json:"reserved"`
}

// Submission is a signed transaction that was handed to the network.
type Submission struct {
	Hash      Hash        `cbor:"1,keyasint"`
	Extrinsic []byte      `cbor:"2,keyasint"`
	Signer    Address     `cbor:"3,keyasint"`
	Call      CallPayload `cbor:"4,keyasint"`
	Since     uint64      `cbor:"5,keyasint"`
	Submitted time.Time   `cbor:"6,keyasint"`
	Last      OutcomeKind `cbor:"7,keyasint"`
}
