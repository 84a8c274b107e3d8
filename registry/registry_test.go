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

package registry_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/registry"
	"github.com/optakt/ink-caller/testing/helpers"
	"github.com/optakt/ink-caller/testing/mocks"
)

func TestDecode(t *testing.T) {

	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		m, err := registry.Decode(helpers.Metadata())
		require.NoError(t, err)

		system, err := m.Pallet("System")
		require.NoError(t, err)
		assert.Equal(t, uint8(helpers.SystemIndex), system.Index)
		assert.Nil(t, system.Calls)
		require.NotNil(t, system.Event)
		assert.Len(t, system.Storage, 2)

		entry, err := m.Entry("System", "Events")
		require.NoError(t, err)
		assert.True(t, entry.Plain)
		assert.Equal(t, uint32(17), entry.Value)

		typ, err := m.Type(3)
		require.NoError(t, err)
		assert.Equal(t, registry.KindComposite, typ.Kind)
		assert.Equal(t, []string{"sp_core", "crypto", "AccountId32"}, typ.Path)
	})

	t.Run("invalid magic number", func(t *testing.T) {
		t.Parallel()

		data := helpers.Metadata()
		data[0] = 'x'

		_, err := registry.Decode(data)

		assert.Error(t, err)
	})

	t.Run("unsupported version", func(t *testing.T) {
		t.Parallel()

		data := helpers.Metadata()
		data[4] = 13

		_, err := registry.Decode(data)

		assert.Error(t, err)
	})

	t.Run("truncated metadata", func(t *testing.T) {
		t.Parallel()

		data := helpers.Metadata()

		_, err := registry.Decode(data[:len(data)/2])

		assert.Error(t, err)
	})
}

func TestMetadata_CallIndex(t *testing.T) {
	m, err := registry.Decode(helpers.Metadata())
	require.NoError(t, err)

	t.Run("nominal case", func(t *testing.T) {
		pallet, call, err := m.CallIndex("Contracts", "call")

		require.NoError(t, err)
		assert.Equal(t, uint8(helpers.ContractsIndex), pallet)
		assert.Equal(t, uint8(helpers.CallIndex), call)
	})

	t.Run("unknown call", func(t *testing.T) {
		_, _, err := m.CallIndex("Contracts", "upload_code")

		assert.True(t, errors.Is(err, registry.ErrNotFound))
	})

	t.Run("pallet without calls", func(t *testing.T) {
		_, _, err := m.CallIndex("System", "remark")

		assert.True(t, errors.Is(err, registry.ErrNotFound))
	})

	t.Run("unknown pallet", func(t *testing.T) {
		_, _, err := m.CallIndex("Balances", "transfer")

		assert.True(t, errors.Is(err, registry.ErrNotFound))
	})
}

func TestMetadata_ModuleError(t *testing.T) {
	m, err := registry.Decode(helpers.Metadata())
	require.NoError(t, err)

	name, err := m.ModuleError(helpers.ContractsIndex, helpers.ContractTrapped)
	require.NoError(t, err)
	assert.Equal(t, "Contracts.ContractTrapped", name)

	_, err = m.ModuleError(helpers.ContractsIndex, 99)
	assert.True(t, errors.Is(err, registry.ErrNotFound))

	_, err = m.ModuleError(helpers.SystemIndex, 0)
	assert.True(t, errors.Is(err, registry.ErrNotFound))
}

func TestMetadata_Events(t *testing.T) {
	m, err := registry.Decode(helpers.Metadata())
	require.NoError(t, err)

	contract := mocks.GenericAddress(1)

	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		data := helpers.Events(
			helpers.SuccessRecord(0),
			helpers.EmittedRecord(1, contract, []byte{0x01, 0x02}),
			helpers.FailedRecord(2, helpers.ContractsIndex, helpers.ContractTrapped),
			helpers.FinalizationRecord(mocks.GenericAddress(0), contract),
		)

		records, err := m.Events(data)

		require.NoError(t, err)
		require.Len(t, records, 4)

		assert.Equal(t, ink.PhaseApplyExtrinsic, records[0].Phase)
		assert.Equal(t, uint32(0), records[0].Extrinsic)
		assert.Equal(t, "System.ExtrinsicSuccess", records[0].Event.String())
		assert.NotEmpty(t, records[0].Event.Data)

		assert.Equal(t, uint32(1), records[1].Extrinsic)
		assert.Equal(t, "Contracts", records[1].Event.Pallet)
		assert.Equal(t, "ContractEmitted", records[1].Event.Name)
		require.NotNil(t, records[1].Event.Contract)
		assert.Equal(t, contract, *records[1].Event.Contract)
		assert.Equal(t, []byte{0x01, 0x02}, records[1].Event.Data)

		assert.Equal(t, uint32(2), records[2].Extrinsic)
		assert.Equal(t, "ExtrinsicFailed", records[2].Event.Name)
		assert.Equal(t, "Contracts.ContractTrapped", records[2].Event.Error)

		assert.Equal(t, ink.PhaseFinalization, records[3].Phase)
		assert.Equal(t, "Called", records[3].Event.Name)
		assert.Nil(t, records[3].Event.Contract)
	})

	t.Run("no events", func(t *testing.T) {
		t.Parallel()

		records, err := m.Events(helpers.Events())

		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("unknown module error", func(t *testing.T) {
		t.Parallel()

		records, err := m.Events(helpers.Events(helpers.FailedRecord(0, 42, 1)))

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Module(index: 42, error: 1)", records[0].Event.Error)
	})

	t.Run("unknown pallet event", func(t *testing.T) {
		t.Parallel()

		data := helpers.Events([]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x05, 0x00, 0x00})

		_, err := m.Events(data)

		assert.Error(t, err)
	})

	t.Run("truncated events", func(t *testing.T) {
		t.Parallel()

		data := helpers.Events(helpers.EmittedRecord(1, contract, []byte{0x01, 0x02}))

		_, err := m.Events(data[:len(data)-4])

		assert.Error(t, err)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		t.Parallel()

		data := helpers.Events(helpers.SuccessRecord(0))

		_, err := m.Events(append(data, 0x00))

		assert.Error(t, err)
	})
}
