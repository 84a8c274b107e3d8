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

package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/optakt/ink-caller/models/ink"
)

// parseStatus decodes a transaction status notification. Statuses without
// data are plain strings; the others are single-key objects such as
// `{"inBlock": "0x..."}`.
func parseStatus(raw json.RawMessage) (ink.Status, error) {

	var name string
	err := json.Unmarshal(raw, &name)
	if err == nil {
		return ink.Status{Kind: ink.StatusKind(name)}, nil
	}

	var fields map[string]json.RawMessage
	err = json.Unmarshal(raw, &fields)
	if err != nil {
		return ink.Status{}, fmt.Errorf("could not decode transaction status: %w", err)
	}
	if _, ok := fields["event"]; ok {
		return parseEvent(raw)
	}
	if len(fields) != 1 {
		return ink.Status{}, fmt.Errorf("invalid transaction status (%s)", raw)
	}

	var status ink.Status
	for key, value := range fields {
		status.Kind = ink.StatusKind(key)
		var hash ink.Hash
		err = json.Unmarshal(value, &hash)
		if err == nil {
			status.Block = hash
		}
	}

	return status, nil
}

// transactionEvent is the status format of the newer `transactionWatch_v1`
// subscription.
type transactionEvent struct {
	Event string `json:"event"`
	Block *struct {
		Hash ink.Hash `json:"hash"`
	} `json:"block"`
	Error string `json:"error"`
}

var eventKinds = map[string]ink.StatusKind{
	"validated":              ink.StatusReady,
	"broadcasted":            ink.StatusBroadcast,
	"bestChainBlockIncluded": ink.StatusInBlock,
	"finalized":              ink.StatusFinalized,
	"invalid":                ink.StatusInvalid,
	"error":                  ink.StatusInvalid,
	"dropped":                ink.StatusDropped,
}

func parseEvent(raw json.RawMessage) (ink.Status, error) {

	var event transactionEvent
	err := json.Unmarshal(raw, &event)
	if err != nil {
		return ink.Status{}, fmt.Errorf("could not decode transaction event: %w", err)
	}

	kind, ok := eventKinds[event.Event]
	if !ok {
		return ink.Status{Kind: ink.StatusKind(event.Event)}, nil
	}

	status := ink.Status{
		Kind:   kind,
		Reason: event.Error,
	}
	if event.Block != nil {
		status.Block = event.Block.Hash
	}

	// A best block inclusion without block means the block was retracted.
	if kind == ink.StatusInBlock && event.Block == nil {
		status.Kind = ink.StatusRetracted
	}

	return status, nil
}
