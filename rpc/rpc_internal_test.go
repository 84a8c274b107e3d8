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
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/ink-caller/codec/scale"
	"github.com/optakt/ink-caller/models/ink"
)

const alice = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"

func TestAccountKey(t *testing.T) {
	address, _, err := ink.ParseAddress(alice)
	require.NoError(t, err)

	want := "26aa394eea5630e07c48ae0c9558cef7" +
		"b99d880ec681799c0cf30e8886371da9" +
		"de1e86a9a8c739864cf3cc5ec2bea59f" +
		"d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"

	assert.Equal(t, want, hex.EncodeToString(accountKey(address)))
}

func TestDecodeAccountInfo(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		enc := scale.NewEncoder()
		enc.U32(7)
		enc.U32(0)
		enc.U32(1)
		enc.U32(0)
		enc.U128(uint256.NewInt(1_000_000))
		enc.U128(uint256.NewInt(500))
		enc.U128(uint256.NewInt(0))
		enc.U128(uint256.NewInt(0))

		info, err := decodeAccountInfo(enc.Bytes())

		require.NoError(t, err)
		assert.Equal(t, uint32(7), info.Nonce)
		assert.Equal(t, uint64(1_000_000), info.Free.Uint64())
		assert.Equal(t, uint64(500), info.Reserved.Uint64())
	})

	t.Run("handles truncated data", func(t *testing.T) {
		t.Parallel()

		_, err := decodeAccountInfo([]byte{7, 0, 0, 0, 1})

		assert.ErrorIs(t, err, scale.ErrUnexpectedEnd)
	})
}

func TestParseStatus(t *testing.T) {
	block := ink.Blake256([]byte("block"))

	tests := []struct {
		name string
		raw  string
		want ink.Status
	}{
		{
			name: "ready",
			raw:  `"ready"`,
			want: ink.Status{Kind: ink.StatusReady},
		},
		{
			name: "broadcast with peers",
			raw:  `{"broadcast":["12D3KooW"]}`,
			want: ink.Status{Kind: ink.StatusBroadcast},
		},
		{
			name: "in block",
			raw:  `{"inBlock":"` + block.Hex() + `"}`,
			want: ink.Status{Kind: ink.StatusInBlock, Block: block},
		},
		{
			name: "finalized",
			raw:  `{"finalized":"` + block.Hex() + `"}`,
			want: ink.Status{Kind: ink.StatusFinalized, Block: block},
		},
		{
			name: "invalid",
			raw:  `"invalid"`,
			want: ink.Status{Kind: ink.StatusInvalid},
		},
		{
			name: "event included",
			raw:  `{"event":"bestChainBlockIncluded","block":{"hash":"` + block.Hex() + `","index":1}}`,
			want: ink.Status{Kind: ink.StatusInBlock, Block: block},
		},
		{
			name: "event retracted",
			raw:  `{"event":"bestChainBlockIncluded","block":null}`,
			want: ink.Status{Kind: ink.StatusRetracted},
		},
		{
			name: "event invalid with reason",
			raw:  `{"event":"invalid","error":"Inability to pay some fees"}`,
			want: ink.Status{Kind: ink.StatusInvalid, Reason: "Inability to pay some fees"},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseStatus(json.RawMessage(test.raw))

			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}

	t.Run("handles ambiguous object", func(t *testing.T) {
		t.Parallel()

		_, err := parseStatus(json.RawMessage(`{"inBlock":"0x00","finalized":"0x00"}`))

		assert.Error(t, err)
	})

	t.Run("handles garbage", func(t *testing.T) {
		t.Parallel()

		_, err := parseStatus(json.RawMessage(`42`))

		assert.Error(t, err)
	})
}

func TestError_Reason(t *testing.T) {
	t.Run("message only", func(t *testing.T) {
		t.Parallel()

		err := &Error{Code: 1010, Message: "Invalid Transaction"}

		assert.Equal(t, "Invalid Transaction", err.Reason())
	})

	t.Run("message with data", func(t *testing.T) {
		t.Parallel()

		err := &Error{Code: 1010, Message: "Invalid Transaction", Data: json.RawMessage(`"Inability to pay some fees (e.g. account balance too low)"`)}

		assert.Equal(t, "Invalid Transaction: Inability to pay some fees (e.g. account balance too low)", err.Reason())
		assert.Contains(t, err.Error(), "1010")
	})
}
