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
)

// OutcomeKind is a stage of a submission's lifecycle as seen by the client.
type OutcomeKind uint8

// Submission outcomes, in lifecycle order. Rejected, Finalized and
// FinalizationFailed are terminal.
const (
	OutcomeRejected OutcomeKind = iota + 1
	OutcomeBroadcast
	OutcomeInBlock
	OutcomeFinalized
	OutcomeFinalizationFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeRejected:
		return "rejected"
	case OutcomeBroadcast:
		return "broadcast"
	case OutcomeInBlock:
		return "in_block"
	case OutcomeFinalized:
		return "finalized"
	case OutcomeFinalizationFailed:
		return "finalization_failed"
	default:
		return "unknown"
	}
}

// Outcome is one step of a submission's lifecycle.
type Outcome struct {
	Kind        OutcomeKind `json:"kind"`
	Transaction Hash        `json:"transaction"`
	Block       Hash        `json:"block,omitempty"`
	Reason      string      `json:"reason,omitempty"`
	Events      []Event     `json:"events,omitempty"`
}

// Terminal reports whether no further outcome can follow.
func (o Outcome) Terminal() bool {
	switch o.Kind {
	case OutcomeRejected, OutcomeFinalized, OutcomeFinalizationFailed:
		return true
	default:
		return false
	}
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeRejected, OutcomeFinalizationFailed:
		return fmt.Sprintf("%s (%s)", o.Kind, o.Reason)
	case OutcomeInBlock, OutcomeFinalized:
		return fmt.Sprintf("%s (block: %s)", o.Kind, o.Block)
	default:
		return o.Kind.String()
	}
}

func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
