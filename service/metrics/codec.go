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

package metrics

import (
	"fmt"
)

// Encoder is a codec that separates encoding from compression.
type Encoder interface {
	Encode(value interface{}) ([]byte, error)
	Compress(data []byte) ([]byte, error)
	Unmarshal(compressed []byte, value interface{}) error
}

// Codec records the size of the journal records going through the wrapped
// codec.
type Codec struct {
	Encoder
	metrics *Metrics
}

// NewCodec wraps the codec.
func NewCodec(codec Encoder, metrics *Metrics) *Codec {
	c := Codec{
		Encoder: codec,
		metrics: metrics,
	}
	return &c
}

func (c *Codec) Marshal(value interface{}) ([]byte, error) {
	data, err := c.Encode(value)
	if err != nil {
		return nil, fmt.Errorf("could not encode value: %w", err)
	}
	compressed, err := c.Compress(data)
	if err != nil {
		return nil, fmt.Errorf("could not compress data: %w", err)
	}
	c.metrics.record(len(data), len(compressed))
	return compressed, nil
}
