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
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/optakt/ink-caller/agent"
	"github.com/optakt/ink-caller/api/rest"
	"github.com/optakt/ink-caller/codec/zbor"
	"github.com/optakt/ink-caller/contract/encoder"
	"github.com/optakt/ink-caller/contract/metadata"
	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/retriever"
	"github.com/optakt/ink-caller/rpc"
	"github.com/optakt/ink-caller/service/journal"
	"github.com/optakt/ink-caller/service/metrics"
	"github.com/optakt/ink-caller/signer"
	"github.com/optakt/ink-caller/stage"
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

	// Signal catching for clean shutdown.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	// Command line parameter initialization.
	var (
		flagAgent        string
		flagAgentName    string
		flagAgentTimeout time.Duration
		flagCache        int64
		flagContract     string
		flagJournal      string
		flagLevel        string
		flagMetadata     string
		flagMetrics      string
		flagNetwork      string
		flagPort         uint16
		flagProofSize    uint64
		flagRefTime      uint64
		flagRPC          string
		flagScheme       string
		flagSeed         string
	)

	pflag.StringVarP(&flagAgent, "agent", "a", "", "websocket address of the external signing agent")
	pflag.StringVar(&flagAgentName, "agent-name", "polkadot-js", "name of the external signing agent")
	pflag.DurationVar(&flagAgentTimeout, "agent-timeout", signer.DefaultConfig.Timeout, "maximum wait for the signing agent")
	pflag.Int64Var(&flagCache, "cache", retriever.DefaultConfig.CacheSize, "maximum size of the query cache in bytes")
	pflag.StringVarP(&flagContract, "contract", "c", "5FbxgE9CZgib7p4oWi34Tx5vqLHsXKNGEWnfMn6pMT7VzwTx", "initial token contract address")
	pflag.StringVarP(&flagJournal, "journal", "j", "journal", "database directory for the submission journal")
	pflag.StringVarP(&flagLevel, "level", "l", "info", "log output level")
	pflag.StringVar(&flagMetadata, "metadata", "", "ink! metadata file of the token contract (default: built-in PSP22)")
	pflag.StringVarP(&flagMetrics, "metrics", "m", "", "address on which to expose metrics (no metrics are exposed when left empty)")
	pflag.StringVarP(&flagNetwork, "network", "n", ink.Development, fmt.Sprintf("network of the ledger (%s)", strings.Join(ink.Networks(), ", ")))
	pflag.Uint16VarP(&flagPort, "port", "p", 8080, "port to serve the REST API on")
	pflag.Uint64Var(&flagProofSize, "proof-size", 0, "proof size budget of transfers (default: network parameter)")
	pflag.Uint64Var(&flagRefTime, "ref-time", 0, "reference time budget of transfers (default: network parameter)")
	pflag.StringVarP(&flagRPC, "rpc", "r", "ws://127.0.0.1:9944", "websocket address of the ledger node")
	pflag.StringVar(&flagScheme, "scheme", "sr25519", "signature scheme of the local key")
	pflag.StringVarP(&flagSeed, "seed", "s", "", "hex-encoded seed of the local key (no local account when left empty)")

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
	budget := params.Transaction
	if flagRefTime != 0 {
		budget.RefTime = flagRefTime
	}
	if flagProofSize != 0 {
		budget.ProofSize = flagProofSize
	}

	schema, err := loadSchema(flagMetadata)
	if err != nil {
		log.Error().Str("metadata", flagMetadata).Err(err).Msg("could not load contract metadata")
		return failure
	}

	// Metrics are collected on a dedicated registry, so that only the metrics
	// of this binary are exposed.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	measure := metrics.New(registry)

	// Initialize the submission journal.
	db, err := badger.Open(ink.DefaultOptions(flagJournal))
	if err != nil {
		log.Error().Str("journal", flagJournal).Err(err).Msg("could not open journal database")
		return failure
	}
	defer db.Close()
	record := journal.New(log, db, metrics.NewCodec(zbor.NewCodec(), measure))

	// Connect to the ledger node.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	node, err := rpc.Dial(ctx, log, flagRPC, rpc.WithPrefix(params.Prefix))
	if err != nil {
		log.Error().Str("rpc", flagRPC).Err(err).Msg("could not connect to ledger node")
		return failure
	}
	defer node.Close()

	// The network table only provides defaults for the index of the contract
	// call, which depends on the runtime.
	pallet, call, err := callIndex(ctx, node)
	if err != nil {
		log.Warn().Err(err).Uint8("pallet", params.Pallet).Uint8("call", params.Call).Msg("could not read call index from runtime metadata, using network defaults")
	} else {
		params.Pallet = pallet
		params.Call = call
	}

	// Initialize the signers. Without seed, there is no local account; without
	// agent address, there are no agent accounts.
	var local *signer.Local
	var localSigner signer.Signer
	if flagSeed != "" {
		local, err = localKey(flagScheme, flagSeed)
		if err != nil {
			log.Error().Err(err).Msg("could not initialize local key")
			return failure
		}
		localSigner = local
		log.Info().Str("address", local.Address().SS58(params.Prefix)).Msg("local key loaded")
	}
	var lister signer.Lister
	var externalSigner signer.Signer
	if flagAgent != "" {
		conn, err := rpc.Dial(ctx, log, flagAgent)
		if err != nil {
			log.Error().Str("agent", flagAgent).Err(err).Msg("could not connect to signing agent")
			return failure
		}
		defer conn.Close()
		client := agent.New(log, flagAgentName, params.Prefix, conn)
		lister = client
		externalSigner = signer.NewExternal(client, signer.WithTimeout(flagAgentTimeout))
	}
	if localSigner == nil && externalSigner == nil {
		log.Error().Msg("neither local key nor signing agent configured")
		return failure
	}
	sign := metrics.NewSigner(signer.NewSwitch(localSigner, externalSigner), measure)
	directory := signer.NewDirectory(log, local, lister)

	// Initialize the call pipeline.
	enc := encoder.New(schema)
	build := transactor.New(params, node)
	read, err := retriever.New(log, params, node, enc, retriever.WithCacheSize(flagCache))
	if err != nil {
		log.Error().Err(err).Msg("could not initialize retriever")
		return failure
	}
	track := tracker.New(log, build, node, node,
		tracker.WithInspector(read),
		tracker.WithJournal(record),
		tracker.WithObserver(measure),
	)
	controller := stage.NewController(log, directory, enc, build, sign, track, read,
		stage.WithBudget(budget),
		stage.WithObserver(measure),
	)

	// Initialize the API server.
	server := rest.NewServer(log, rest.NewController(controller, params.Prefix))
	var metricsServer *metrics.Server
	if flagMetrics != "" {
		metricsServer = metrics.NewServer(log, flagMetrics, registry)
	}

	if flagContract != "" {
		contract, _, err := ink.ParseAddress(flagContract)
		if err != nil {
			log.Error().Str("contract", flagContract).Err(err).Msg("could not parse contract address")
			return failure
		}
		controller.Post(stage.ContractChanged{Contract: contract})
	}

	// Resume watching the transactions that were submitted before the last
	// shutdown. They are never submitted again.
	pending, err := record.Pending()
	if err != nil {
		log.Warn().Err(err).Msg("could not read all journaled submissions")
	}
	var followers sync.WaitGroup
	for _, sub := range pending {
		followers.Add(1)
		go func(watch *tracker.Watch) {
			defer followers.Done()
			follow(log, watch)
		}(track.Resume(ctx, sub))
	}

	// This section launches the main executing components in their own
	// goroutine, so they can run concurrently. Afterwards, we wait for an
	// interrupt signal in order to proceed with the next section.
	done := make(chan struct{})
	failed := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		log.Info().Msg("ink! caller controller starting")
		err := controller.Run(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("ink! caller controller failed")
			close(failed)
		} else {
			close(done)
		}
		log.Info().Msg("ink! caller controller stopped")
	}()

	// The watches update the journal and use the node connection until they
	// end, so they have to stop before the deferred closing of both.
	defer func() {
		cancel()
		<-stopped
		track.Wait()
		followers.Wait()
	}()

	go func() {
		log.Info().Uint16("port", flagPort).Msg("ink! caller API starting")
		err := server.Start(fmt.Sprint(":", flagPort))
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn().Err(err).Msg("ink! caller API failed")
			close(failed)
		}
		log.Info().Msg("ink! caller API stopped")
	}()
	if metricsServer != nil {
		go func() {
			err := metricsServer.Start()
			if err != nil {
				log.Warn().Err(err).Msg("metrics server failed")
			}
		}()
	}

	select {
	case <-sig:
		log.Info().Msg("ink! caller stopping")
	case <-done:
		log.Info().Msg("ink! caller done")
	case <-failed:
		log.Warn().Msg("ink! caller aborted")
		return failure
	}
	go func() {
		<-sig
		log.Warn().Msg("forcing exit")
		os.Exit(1)
	}()

	// The following code starts a shut down with a certain timeout and makes
	// sure that the main executing components are shutting down within the
	// allocated shutdown time. Otherwise, we will force the shutdown and log
	// an error. We then wait for shutdown on each component to complete.
	shutdown, stop := context.WithTimeout(context.Background(), 30*time.Second)
	defer stop()

	var errs error
	err = server.Shutdown(shutdown)
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("could not shut down API: %w", err))
	}
	if metricsServer != nil {
		err = metricsServer.Stop(shutdown)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("could not shut down metrics server: %w", err))
		}
	}
	cancel()
	if errs != nil {
		log.Error().Err(errs).Msg("could not shut down cleanly")
		return failure
	}

	return success
}

func loadSchema(path string) (encoder.Schema, error) {
	if path == "" {
		return metadata.PSP22(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open metadata file: %w", err)
	}
	defer file.Close()
	return metadata.Load(file)
}

func localKey(scheme string, seed string) (*signer.Local, error) {
	s, err := ink.ParseScheme(scheme)
	if err != nil {
		return nil, fmt.Errorf("could not parse scheme: %w", err)
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(seed, "0x"))
	if err != nil {
		return nil, fmt.Errorf("could not decode seed: %w", err)
	}
	return signer.NewLocal(s, raw)
}

// follow drains the outcomes of a resumed submission.
func follow(log zerolog.Logger, watch *tracker.Watch) {
	defer watch.Close()
	for outcome := range watch.Outcomes() {
		log.Info().Str("transaction", watch.Transaction().Hex()).Str("outcome", outcome.String()).Msg("resumed submission progressed")
	}
	err := watch.Err()
	if err != nil {
		log.Warn().Str("transaction", watch.Transaction().Hex()).Err(err).Msg("resumed submission lost")
	}
}

func callIndex(ctx context.Context, node *rpc.Client) (uint8, uint8, error) {

	best, err := node.BestHeader(ctx)
	if err != nil {
		return 0, 0, err
	}
	runtime, err := node.Metadata(ctx, best.Hash)
	if err != nil {
		return 0, 0, err
	}

	return runtime.CallIndex("Contracts", "call")
}
