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

// StatusKind is a transaction status notification sent by the ledger for a
// watched extrinsic.
type StatusKind string

// Transaction pool status notifications.
const (
	StatusFuture          StatusKind = "future"
	StatusReady           StatusKind = "ready"
	StatusBroadcast       StatusKind = "broadcast"
	StatusInBlock         StatusKind = "inBlock"
	StatusRetracted       StatusKind = "retracted"
	StatusFinalityTimeout StatusKind = "finalityTimeout"
	StatusFinalized       StatusKind = "finalized"
	StatusUsurped         StatusKind = "usurped"
	StatusDropped         StatusKind = "dropped"
	StatusInvalid         StatusKind = "invalid"
)

// Status is one notification of a transaction watch. Block is set for the
// kinds that refer to a block; Reason is set when the node explains why a
// transaction was invalid or dropped.
type Status struct {
	Kind   StatusKind
	Block  Hash
	Reason string
}

// Event is an event deposited while the extrinsic was applied. Contract and
// Data are set for events emitted by a contract; Error is set for failed
// extrinsics.
type Event struct {
	Pallet   string   `json:"pallet"`
	Name     string   `json:"name"`
	Contract *Address `json:"contract,omitempty"`
	Data     []byte   `json:"data,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// String returns the qualified name of the event, e.g. `System.ExtrinsicSuccess`.
func (e Event) String() string {
	return e.Pallet + "." + e.Name
}

// Phase is the part of block execution during which an event was deposited.
type Phase uint8

// Block execution phases.
const (
	PhaseApplyExtrinsic Phase = iota
	PhaseFinalization
	PhaseInitialization
)

// EventRecord is an event stored in the block state. Extrinsic is the index
// of the extrinsic within its block and is only meaningful when the event was
// deposited while applying an extrinsic.
type EventRecord struct {
	Phase     Phase
	Extrinsic uint32
	Event     Event
}

// Dispatch is the execution result of an extrinsic included in a block.
type Dispatch struct {
	Failed bool
	Reason string
	Events []Event
}

// RuntimeVersion holds the versions that signatures commit to.
type RuntimeVersion struct {
	SpecName    string `json:"specName"`
	SpecVersion uint32 `json:"specVersion"`
	TxVersion   uint32 `json:"transactionVersion"`
}

// Header is a block header reduced to what the client needs.
type Header struct {
	Number uint64
	Hash   Hash
	Parent Hash
}
