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
	"context"
	"fmt"

	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/registry"
)

// Metadata returns the runtime metadata that applies at the given block.
// Metadata is cached by runtime specification version.
func (c *Client) Metadata(ctx context.Context, block ink.Hash) (*registry.Metadata, error) {

	version, err := c.runtimeVersion(ctx, block.Hex())
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	cached, ok := c.runtime[version.SpecVersion]
	c.mutex.Unlock()
	if ok {
		return cached, nil
	}

	var encoded string
	err = c.Call(ctx, &encoded, "state_getMetadata", block.Hex())
	if err != nil {
		return nil, fmt.Errorf("could not get metadata (block: %s): %w", block, err)
	}
	data, err := decodeHex(encoded)
	if err != nil {
		return nil, fmt.Errorf("could not decode metadata hex: %w", err)
	}
	metadata, err := registry.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("could not decode metadata (spec_version: %d): %w", version.SpecVersion, err)
	}

	c.mutex.Lock()
	c.runtime[version.SpecVersion] = metadata
	c.mutex.Unlock()

	c.log.Debug().
		Str("spec_name", version.SpecName).
		Uint32("spec_version", version.SpecVersion).
		Msg("runtime metadata loaded")

	return metadata, nil
}

// Events returns the events deposited in the given block.
func (c *Client) Events(ctx context.Context, block ink.Hash) ([]ink.EventRecord, error) {

	metadata, err := c.Metadata(ctx, block)
	if err != nil {
		return nil, err
	}

	var value *string
	err = c.Call(ctx, &value, "state_getStorage", encodeHex(eventsKey()), block.Hex())
	if err != nil {
		return nil, fmt.Errorf("could not get events storage (block: %s): %w", block, err)
	}
	if value == nil {
		return nil, nil
	}

	data, err := decodeHex(*value)
	if err != nil {
		return nil, fmt.Errorf("could not decode events storage: %w", err)
	}
	records, err := metadata.Events(data)
	if err != nil {
		return nil, fmt.Errorf("could not decode events (block: %s): %w", block, err)
	}

	return records, nil
}

// eventsKey returns the storage key of `System.Events`, which is a plain
// entry.
func eventsKey() []byte {
	key := make([]byte, 0, 32)
	key = append(key, twox128([]byte("System"))...)
	key = append(key, twox128([]byte("Events"))...)
	return key
}
