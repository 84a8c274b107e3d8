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
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/optakt/ink-caller/models/ink"
)

func TestMortalEra(t *testing.T) {
	assert.Equal(t, []byte{0xa5, 0x02}, ink.MortalEra(42, 64))
	assert.Equal(t, ink.MortalEra(106, 64), ink.MortalEra(42, 64))
	assert.Equal(t, ink.MortalEra(42, 64), ink.MortalEra(42, 33))
}

func TestUnsigned_Message(t *testing.T) {
	unsigned := ink.Unsigned{
		Method:      []byte{0x08, 0x06},
		Era:         ink.ImmortalEra,
		Nonce:       1,
		Tip:         ink.NewBalance(0),
		SpecVersion: 100,
		TxVersion:   1,
		Genesis:     ink.Hash{0x01},
		Checkpoint:  ink.Hash{0x01},
	}

	t.Run("short payload is signed as is", func(t *testing.T) {
		t.Parallel()

		msg := unsigned.Message()

		assert.Equal(t, []byte{0x00, 0x04, 0x00}, unsigned.Extra())
		assert.Len(t, msg, 2+3+4+4+32+32)
		assert.Equal(t, []byte{0x08, 0x06, 0x00, 0x04, 0x00, 100, 0, 0, 0, 1, 0, 0, 0, 0x01}, msg[:14])
	})

	t.Run("long payload is hashed", func(t *testing.T) {
		t.Parallel()

		long := unsigned
		long.Method = bytes.Repeat([]byte{0xff}, ink.MaxSigningPayload)

		msg := long.Message()

		assert.Len(t, msg, 32)
	})

	t.Run("metadata hash mode is appended", func(t *testing.T) {
		t.Parallel()

		withHash := unsigned
		withHash.MetadataHash = true

		assert.Equal(t, []byte{0x00, 0x04, 0x00, 0x00}, withHash.Extra())
		assert.Len(t, withHash.Message(), len(unsigned.Message())+2)
	})
}

func TestOutcome_Terminal(t *testing.T) {
	assert.True(t, ink.Outcome{Kind: ink.OutcomeRejected}.Terminal())
	assert.True(t, ink.Outcome{Kind: ink.OutcomeFinalized}.Terminal())
	assert.True(t, ink.Outcome{Kind: ink.OutcomeFinalizationFailed}.Terminal())
	assert.False(t, ink.Outcome{Kind: ink.OutcomeBroadcast}.Terminal())
	assert.False(t, ink.Outcome{Kind: ink.OutcomeInBlock}.Terminal())
}

func TestParamsFor(t *testing.T) {
	params, err := ink.ParamsFor(ink.Development)
	assert.NoError(t, err)
	assert.Equal(t, uint8(ink.CallIndex), params.Call)
	assert.Equal(t, ink.DefaultTransactionWeight, params.Transaction)

	_, err = ink.ParamsFor("mainnet")
	assert.Error(t, err)
	assert.Contains(t, ink.Networks(), ink.AlephTestnet)
}
