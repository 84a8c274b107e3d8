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
	"fmt"
	"sort"
)

// DefaultPrefix is the generic Substrate SS58 prefix.
const DefaultPrefix = 42

// Network names.
const (
	Development     = "development"
	RococoContracts = "rococo-contracts"
	AlephTestnet    = "aleph-testnet"
)

// CallIndex is the dispatch index of `call` within the contracts pallet.
const CallIndex = 6

// Default weight budgets.
var (
	DefaultTransactionWeight = Weight{RefTime: 9_375_000_000, ProofSize: 524_288}
	DefaultQueryWeight       = Weight{RefTime: 11_344_007_254, ProofSize: 131_072}
)

// Params are the network-specific parameters needed to build and present
// contract calls.
type Params struct {
	Network      string
	Prefix       uint16
	Pallet       uint8
	Call         uint8
	Transaction  Weight
	Query        Weight
	MetadataHash bool
}

var params = map[string]Params{
	Development: {
		Network:     Development,
		Prefix:      DefaultPrefix,
		Pallet:      8,
		Call:        CallIndex,
		Transaction: DefaultTransactionWeight,
		Query:       DefaultQueryWeight,
	},
	RococoContracts: {
		Network:     RococoContracts,
		Prefix:      DefaultPrefix,
		Pallet:      70,
		Call:        CallIndex,
		Transaction: DefaultTransactionWeight,
		Query:       DefaultQueryWeight,
	},
	AlephTestnet: {
		Network:     AlephTestnet,
		Prefix:      DefaultPrefix,
		Pallet:      16,
		Call:        CallIndex,
		Transaction: DefaultTransactionWeight,
		Query:       DefaultQueryWeight,
	},
}

// ParamsFor returns the parameters of the named network.
func ParamsFor(network string) (Params, error) {
	p, ok := params[network]
	if !ok {
		return Params{}, fmt.Errorf("unknown network (%s), known: %v", network, Networks())
	}
	return p, nil
}

// Networks lists the known network names.
func Networks() []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
