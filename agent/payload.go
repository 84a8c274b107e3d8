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

package agent

import (
	"encoding/hex"
	"fmt"

	"github.com/optakt/ink-caller/models/ink"
)

// signedExtensions lists the extensions of the contracts runtime, in the
// order in which their data is appended to the signing payload.
var signedExtensions = []string{
	"CheckNonZeroSender",
	"CheckSpecVersion",
	"CheckTxVersion",
	"CheckGenesis",
	"CheckMortality",
	"CheckNonce",
	"CheckWeight",
	"ChargeTransactionPayment",
}

// Payload is the signing payload in the JSON form understood by wallet
// extensions. All numbers are hex-encoded.
type Payload struct {
	ID                 string   `json:"id"`
	Address            string   `json:"address"`
	BlockHash          string   `json:"blockHash"`
	BlockNumber        string   `json:"blockNumber"`
	Era                string   `json:"era"`
	GenesisHash        string   `json:"genesisHash"`
	Method             string   `json:"method"`
	Nonce              string   `json:"nonce"`
	SignedExtensions   []string `json:"signedExtensions"`
	SpecVersion        string   `json:"specVersion"`
	Tip                string   `json:"tip"`
	TransactionVersion string   `json:"transactionVersion"`
	Version            uint     `json:"version"`
	WithSignedTx       bool     `json:"withSignedTransaction"`
}

type signature struct {
	ID        string `json:"id"`
	Signature string `json:"signature"`
}

type account struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Source  string `json:"source"`
	Type    string `json:"type"`
}

func convertPayload(id string, prefix uint16, req ink.SigningRequest) Payload {

	u := req.Unsigned

	p := Payload{
		ID:                 id,
		Address:            req.Signer.SS58(prefix),
		BlockHash:          u.Checkpoint.Hex(),
		BlockNumber:        hexNumber(u.BlockNumber),
		Era:                hexBytes(u.Era),
		GenesisHash:        u.Genesis.Hex(),
		Method:             hexBytes(u.Method),
		Nonce:              hexNumber(u.Nonce),
		SignedExtensions:   signedExtensions,
		SpecVersion:        hexNumber(uint64(u.SpecVersion)),
		Tip:                "0x" + fmt.Sprintf("%032x", u.Tip.Big()),
		TransactionVersion: hexNumber(uint64(u.TxVersion)),
		Version:            4,
	}

	return p
}

func hexNumber(n uint64) string {
	return fmt.Sprintf("0x%08x", n)
}

func hexBytes(data []byte) string {
	return "0x" + hex.EncodeToString(data)
}
