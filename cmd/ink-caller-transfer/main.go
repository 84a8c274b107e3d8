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
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/optakt/ink-caller/contract/encoder"
	"github.com/optakt/ink-caller/contract/metadata"
	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/retriever"
	"github.com/optakt/ink-caller/rpc"
	"github.com/optakt/ink-caller/signer"
	"github.com/optakt/ink-caller/tracker"
	"github.com/optakt/ink-caller/transactor"
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
		flagAmount    string
		flagContract  string
		flagLevel     string
		flagNetwork   string
		flagProofSize uint64
		flagRefTime   uint64
		flagRPC       string
		flagScheme    string
		flagSeed      string
		flagTo        string
	)

	pflag.StringVarP(&flagAmount, "amount", "v", "", "amount of tokens to transfer")
	pflag.StringVarP(&flagContract, "contract", "c", "5FbxgE9CZgib7p4oWi34Tx5vqLHsXKNGEWnfMn6pMT7VzwTx", "token contract address")
	pflag.StringVarP(&flagLevel, "level", "l", "info", "log output level")
	pflag.StringVarP(&flagNetwork, "network", "n", ink.Development, fmt.Sprintf("network of the ledger (%s)", strings.Join(ink.Networks(), ", ")))
	pflag.Uint64Var(&flagProofSize, "proof-size", 0, "proof size budget of the transfer (default: network parameter)")
	pflag.Uint64Var(&flagRefTime, "ref-time", 0, "reference time budget of the transfer (default: network parameter)")
	pflag.StringVarP(&flagRPC, "rpc", "r", "ws://127.0.0.1:9944", "websocket address of the ledger node")
	pflag.StringVar(&flagScheme, "scheme", "sr25519", "signature scheme of the local key")
	pflag.StringVarP(&flagSeed, "seed", "s", "", "hex-encoded seed of the sending key")
	pflag.StringVarP(&flagTo, "to", "t", "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY", "recipient address")

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

	// Validate the arguments before touching the network.
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
	to, _, err := ink.ParseAddress(flagTo)
	if err != nil {
		log.Error().Str("to", flagTo).Err(err).Msg("could not parse recipient address")
		return failure
	}
	amount, err := ink.ParseBalance(flagAmount)
	if err != nil {
		log.Error().Str("amount", flagAmount).Err(err).Msg("could not parse amount")
		return failure
	}
	scheme, err := ink.ParseScheme(flagScheme)
	if err != nil {
		log.Error().Str("scheme", flagScheme).Err(err).Msg("could not parse signature scheme")
		return failure
	}
	seed, err := hex.DecodeString(strings.TrimPrefix(flagSeed, "0x"))
	if err != nil {
		log.Error().Err(err).Msg("could not decode seed")
		return failure
	}
	local, err := signer.NewLocal(scheme, seed)
	if err != nil {
		log.Error().Err(err).Msg("could not initialize local key")
		return failure
	}
	budget := params.Transaction
	if flagRefTime != 0 {
		budget.RefTime = flagRefTime
	}
	if flagProofSize != 0 {
		budget.ProofSize = flagProofSize
	}

	// The transfer is abandoned on interrupt; the transaction may still be
	// included if it was already submitted.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	node, err := rpc.Dial(ctx, log, flagRPC, rpc.WithPrefix(params.Prefix))
	if err != nil {
		log.Error().Str("rpc", flagRPC).Err(err).Msg("could not connect to ledger node")
		return failure
	}
	defer node.Close()

	enc := encoder.New(metadata.PSP22())
	build := transactor.New(params, node)
	read, err := retriever.New(log, params, node, enc)
	if err != nil {
		log.Error().Err(err).Msg("could not initialize retriever")
		return failure
	}
	track := tracker.New(log, build, node, node, tracker.WithInspector(read))

	data, err := enc.Encode(metadata.Transfer, to, amount, []byte{})
	if err != nil {
		log.Error().Err(err).Msg("could not encode transfer")
		return failure
	}
	payload, err := transactor.Build(contract, ink.NewBalance(0), budget, nil, data)
	if err != nil {
		log.Error().Err(err).Msg("could not build call")
		return failure
	}
	unsigned, err := build.Prepare(ctx, payload, local.Address())
	if err != nil {
		log.Error().Err(err).Msg("could not prepare transaction")
		return failure
	}
	req := ink.SigningRequest{
		Call:     payload,
		Signer:   local.Address(),
		Type:     local.Scheme().String(),
		Origin:   ink.LocalOrigin,
		Unsigned: unsigned,
	}
	sig, err := local.Sign(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("could not sign transaction")
		return failure
	}

	watch, err := track.Submit(ctx, req, sig)
	if err != nil {
		log.Error().Err(err).Msg("could not submit transaction")
		return failure
	}
	defer watch.Close()

	fmt.Printf("transaction %s submitted from %s\n", watch.Transaction().Hex(), local.Address().SS58(params.Prefix))
	var last ink.Outcome
	for outcome := range watch.Outcomes() {
		fmt.Println(outcome)
		last = outcome
	}
	err = watch.Err()
	if err != nil {
		log.Error().Err(err).Msg("transaction watch failed")
		return failure
	}
	if last.Kind != ink.OutcomeFinalized {
		return failure
	}

	balance, err := read.Balance(ctx, contract, local.Address())
	if err != nil {
		log.Warn().Err(err).Msg("could not query balance after transfer")
		return success
	}
	fmt.Printf("remaining balance: %s\n", balance)

	return success
}
