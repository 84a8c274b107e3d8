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

package ink_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/ink-caller/models/ink"
)

const (
	maxU128     = "340282366920938463463374607431768211455"
	maxU128Plus = "340282366920938463463374607431768211456"
)

func TestParseBalance(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		b, err := ink.ParseBalance("1000000000000")

		require.NoError(t, err)
		assert.Equal(t, uint64(1_000_000_000_000), b.Uint64())
		assert.True(t, b.Fits())
	})

	t.Run("exact maximum fits", func(t *testing.T) {
		t.Parallel()

		b, err := ink.ParseBalance(maxU128)

		require.NoError(t, err)
		assert.True(t, b.Fits())
		assert.Zero(t, b.Cmp(ink.MaxBalance))
		assert.Equal(t, maxU128, b.String())
	})

	t.Run("maximum plus one does not fit", func(t *testing.T) {
		t.Parallel()

		b, err := ink.ParseBalance(maxU128Plus)

		require.NoError(t, err)
		assert.False(t, b.Fits())
		assert.Equal(t, b, ink.MaxBalance.Add(ink.NewBalance(1)))
	})

	t.Run("handles negative amount", func(t *testing.T) {
		t.Parallel()

		_, err := ink.ParseBalance("-1")

		assert.Error(t, err)
	})

	t.Run("handles garbage", func(t *testing.T) {
		t.Parallel()

		_, err := ink.ParseBalance("12abc")

		assert.Error(t, err)
	})

	t.Run("handles more than 256 bits", func(t *testing.T) {
		t.Parallel()

		_, err := ink.ParseBalance("1" + maxU128 + maxU128)

		assert.Error(t, err)
	})
}

func TestBalance_JSON(t *testing.T) {
	b := ink.NewBalance(42)

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, `"42"`, string(data))

	var decoded ink.Balance
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, b, decoded)

	err = json.Unmarshal([]byte(`42`), &decoded)
	assert.Error(t, err)
}
