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

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/optakt/ink-caller/contract/encoder"
	"github.com/optakt/ink-caller/contract/metadata"
	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/retriever"
	"github.com/optakt/ink-caller/rpc"
)

const (
	success = 0
	failure = 1
)

func main() {
	os.Exit(run())
}

func run() int {

	// Command line parameter initialization.
	var (
		flagContract string
		flagLevel    string
		flagNetwork  string
		flagOwner    string
		flagRPC      string
		flagSpender  string
		flagTimeout  time.Duration
	)

	pflag.StringVarP(&flagContract, "contract", "c", "5FbxgE9CZgib7p4oWi34Tx5vqLHsXKNGEWnfMn6pMT7VzwTx", "token contract address")
	pflag.StringVarP(&flagLevel, "level", "l", "info", "log output level")
	pflag.StringVarP(&flagNetwork, "network", "n", ink.Development, fmt.Sprintf("network of the ledger (%s)", strings.Join(ink.Networks(), ", ")))
	pflag.StringVarP(&flagOwner, "owner", "o", "", "account whose balance to query (only total supply when left empty)")
	pflag.StringVarP(&flagRPC, "rpc", "r", "ws://127.0.0.1:9944", "websocket address of the ledger node")
	pflag.StringVar(&flagSpender, "spender", "", "spender whose allowance from the owner to query")
	pflag.DurationVarP(&flagTimeout, "timeout", "t", 30*time.Second, "maximum duration of the queries")

	pflag.Parse()

	// Logger initialization.
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	level, err := zerolog.ParseLevel(flagLevel)
	if err != nil {
		log.Error().Str("level", flagLevel).Err(err).Msg("could not parse log level")
		return failure
	}
	log = log.Level(level)

	params, err := ink.ParamsFor(flagNetwork)
	if err != nil {
		log.Error().Str("network", flagNetwork).Err(err).Msg("could not get network parameters")
		return failure
	}
	contract, _, err := ink.ParseAddress(flagContract)
	if err != nil {
		log.Error().Str("contract", flagContract).Err(err).Msg("could not parse contract address")
		return failure
	}

	ctx, cancel := context.WithTimeout(context.Background(), flagTimeout)
	defer cancel()

	node, err := rpc.Dial(ctx, log, flagRPC, rpc.WithPrefix(params.Prefix))
	if err != nil {
		log.Error().Str("rpc", flagRPC).Err(err).Msg("could not connect to ledger node")
		return failure
	}
	defer node.Close()

	read, err := retriever.New(log, params, node, encoder.New(metadata.PSP22()))
	if err != nil {
		log.Error().Err(err).Msg("could not initialize retriever")
		return failure
	}

	if flagOwner == "" {
		supply, err := read.TotalSupply(ctx, contract)
		if err != nil {
			log.Error().Err(err).Msg("could not query total supply")
			return failure
		}
		fmt.Printf("total supply: %s\n", supply)
		return success
	}

	owner, _, err := ink.ParseAddress(flagOwner)
	if err != nil {
		log.Error().Str("owner", flagOwner).Err(err).Msg("could not parse owner address")
		return failure
	}
	snapshot, err := read.Snapshot(ctx, contract, owner)
	if err != nil {
		log.Error().Err(err).Msg("could not query token state")
		return failure
	}
	fmt.Printf("block:        %d (%s)\n", snapshot.Number, snapshot.Block.Hex())
	fmt.Printf("total supply: %s\n", snapshot.Supply)
	fmt.Printf("balance:      %s\n", snapshot.Balance)

	if flagSpender != "" {
		spender, _, err := ink.ParseAddress(flagSpender)
		if err != nil {
			log.Error().Str("spender", flagSpender).Err(err).Msg("could not parse spender address")
			return failure
		}
		allowance, err := read.Allowance(ctx, contract, owner, spender)
		if err != nil {
			log.Error().Err(err).Msg("could not query allowance")
			return failure
		}
		fmt.Printf("allowance:    %s\n", allowance)
	}

	account, err := read.Account(ctx, owner)
	if err != nil {
		log.Warn().Err(err).Msg("could not query native account")
		return success
	}
	fmt.Printf("native free:  %s (nonce %d)\n", account.Free, account.Nonce)

	return success
}
