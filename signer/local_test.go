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

package signer_test

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/ink-caller/failure"
	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/signer"
	"github.com/optakt/ink-caller/testing/mocks"
)

// Public key of the all-zero ed25519 seed.
const zeroSeedAddress = "0x3b6a27bcceb6a42d62a3a8d02a6f0d73653215771de243a63ac048a18b59da29"

func TestNewLocal(t *testing.T) {
	t.Run("ed25519 address is the public key", func(t *testing.T) {
		t.Parallel()

		local, err := signer.NewLocal(ink.SchemeEd25519, make([]byte, signer.SeedLength))

		require.NoError(t, err)
		assert.Equal(t, zeroSeedAddress, local.Address().Hex())
		assert.Equal(t, ink.SchemeEd25519, local.Scheme())
		assert.Equal(t, ink.LocalOrigin, local.Account().Origin)
		assert.Equal(t, local.Address(), local.Account().Address)
	})

	t.Run("handles invalid seed length", func(t *testing.T) {
		t.Parallel()

		_, err := signer.NewLocal(ink.SchemeEd25519, make([]byte, 31))

		assert.Error(t, err)
	})

	t.Run("handles unknown scheme", func(t *testing.T) {
		t.Parallel()

		_, err := signer.NewLocal(ink.Scheme(9), make([]byte, signer.SeedLength))

		assert.Error(t, err)
	})
}

func TestLocal_Sign(t *testing.T) {
	seed := bytes.Repeat([]byte{0x01}, signer.SeedLength)

	request := func(address ink.Address) ink.SigningRequest {
		return ink.SigningRequest{
			Call:     mocks.GenericPayload,
			Signer:   address,
			Origin:   ink.LocalOrigin,
			Unsigned: mocks.GenericUnsigned,
		}
	}

	t.Run("ed25519 signature verifies against fixed key and payload", func(t *testing.T) {
		t.Parallel()

		local, err := signer.NewLocal(ink.SchemeEd25519, make([]byte, signer.SeedLength))
		require.NoError(t, err)

		req := request(local.Address())
		sig, err := local.Sign(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, ink.SchemeEd25519, sig.Scheme)
		assert.Len(t, sig.Data, ink.Ed25519SignatureLength)
		address := local.Address()
		assert.True(t, ed25519.Verify(ed25519.PublicKey(address[:]), req.Unsigned.Message(), sig.Data))
		assert.NoError(t, signer.Verify(local.Address(), req.Unsigned.Message(), sig))

		again, err := local.Sign(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, sig, again)
	})

	t.Run("ecdsa signature verifies through recovery", func(t *testing.T) {
		t.Parallel()

		local, err := signer.NewLocal(ink.SchemeEcdsa, seed)
		require.NoError(t, err)

		req := request(local.Address())
		sig, err := local.Sign(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, ink.SchemeEcdsa, sig.Scheme)
		assert.Len(t, sig.Data, ink.EcdsaSignatureLength)
		assert.NoError(t, signer.Verify(local.Address(), req.Unsigned.Message(), sig))
	})

	t.Run("sr25519 signature verifies", func(t *testing.T) {
		t.Parallel()

		local, err := signer.NewLocal(ink.SchemeSr25519, seed)
		require.NoError(t, err)

		req := request(local.Address())
		sig, err := local.Sign(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, ink.SchemeSr25519, sig.Scheme)
		assert.NoError(t, signer.Verify(local.Address(), req.Unsigned.Message(), sig))
	})

	t.Run("handles signer mismatch", func(t *testing.T) {
		t.Parallel()

		local, err := signer.NewLocal(ink.SchemeEd25519, seed)
		require.NoError(t, err)

		_, err = local.Sign(context.Background(), request(mocks.GenericAddress(0)))

		assert.Error(t, err)
	})

	t.Run("handles empty call", func(t *testing.T) {
		t.Parallel()

		local, err := signer.NewLocal(ink.SchemeEd25519, seed)
		require.NoError(t, err)

		req := request(local.Address())
		req.Unsigned.Method = nil

		_, err = local.Sign(context.Background(), req)

		assert.Error(t, err)
	})
}

func TestVerify(t *testing.T) {
	local, err := signer.NewLocal(ink.SchemeEd25519, make([]byte, signer.SeedLength))
	require.NoError(t, err)
	message := []byte("payload")

	sig, err := local.Sign(context.Background(), ink.SigningRequest{
		Signer:   local.Address(),
		Unsigned: ink.Unsigned{Method: message, Era: ink.ImmortalEra},
	})
	require.NoError(t, err)
	signed := ink.Unsigned{Method: message, Era: ink.ImmortalEra}.Message()

	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, signer.Verify(local.Address(), signed, sig))
	})

	t.Run("handles wrong address", func(t *testing.T) {
		t.Parallel()

		err := signer.Verify(mocks.GenericAddress(0), signed, sig)

		var invalid failure.InvalidSignature
		assert.True(t, errors.As(err, &invalid))
	})

	t.Run("handles tampered message", func(t *testing.T) {
		t.Parallel()

		err := signer.Verify(local.Address(), []byte("other"), sig)

		var invalid failure.InvalidSignature
		assert.True(t, errors.As(err, &invalid))
	})

	t.Run("handles wrong length", func(t *testing.T) {
		t.Parallel()

		short := ink.Signature{Scheme: ink.SchemeEd25519, Data: sig.Data[:10]}

		err := signer.Verify(local.Address(), signed, short)

		var invalid failure.InvalidSignature
		assert.True(t, errors.As(err, &invalid))
	})

	t.Run("handles unknown scheme", func(t *testing.T) {
		t.Parallel()

		unknown := ink.Signature{Scheme: ink.Scheme(7), Data: sig.Data}

		err := signer.Verify(local.Address(), signed, unknown)

		var invalid failure.InvalidSignature
		assert.True(t, errors.As(err, &invalid))
	})
}
