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

package retriever

import (
	"context"
	"errors"
	"fmt"

	"github.com/optakt/ink-caller/models/ink"
)

// ErrNoOutcome is returned when the block recorded neither success nor
// failure for the extrinsic of a submission.
var ErrNoOutcome = errors.New("no execution outcome recorded")

// Inspect reads the execution result of a finalized submission from the
// events that its block recorded for its extrinsic. All events of the
// extrinsic are attached to the result.
func (r *Retriever) Inspect(ctx context.Context, sub ink.Submission, block ink.Hash) (ink.Dispatch, error) {

	b, err := r.node.Block(ctx, block)
	if err != nil {
		return ink.Dispatch{}, fmt.Errorf("could not get including block: %w", err)
	}
	index, ok := b.Locate(sub.Hash)
	if !ok {
		return ink.Dispatch{}, fmt.Errorf("transaction not found in block (transaction: %s, block: %s)", sub.Hash, block)
	}

	records, err := r.node.Events(ctx, block)
	if err != nil {
		return ink.Dispatch{}, fmt.Errorf("could not get block events: %w", err)
	}

	var dispatch ink.Dispatch
	decided := false
	for _, record := range records {
		if record.Phase != ink.PhaseApplyExtrinsic || record.Extrinsic != uint32(index) {
			continue
		}

		event := record.Event
		dispatch.Events = append(dispatch.Events, event)
		if event.Pallet != "System" {
			continue
		}

		switch event.Name {
		case "ExtrinsicSuccess":
			decided = true
		case "ExtrinsicFailed":
			decided = true
			dispatch.Failed = true
			dispatch.Reason = event.Error
			if dispatch.Reason == "" {
				dispatch.Reason = "extrinsic failed"
			}
		}
	}
	if !decided {
		return ink.Dispatch{}, fmt.Errorf("%w (transaction: %s, index: %d)", ErrNoOutcome, sub.Hash, index)
	}

	r.log.Debug().
		Str("transaction", sub.Hash.String()).
		Str("block", block.String()).
		Int("index", index).
		Int("events", len(dispatch.Events)).
		Bool("failed", dispatch.Failed).
		Msg("submission execution inspected")

	return dispatch, nil
}
