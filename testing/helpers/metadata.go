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

package helpers

import (
	"github.com/optakt/ink-caller/codec/scale"
	"github.com/optakt/ink-caller/models/ink"
)

// Pallet and variant indices of the runtime described by Metadata.
const (
	SystemIndex     = 0
	ContractsIndex  = 8
	CallIndex       = 6
	OutOfGas        = 4
	ContractTrapped = 11
)

type field struct {
	name string
	ty   uint32
}

type variant struct {
	name   string
	index  uint8
	fields []field
}

// Metadata returns encoded version 14 metadata of a minimal runtime with a
// `System` pallet that stores events and a `Contracts` pallet with calls,
// events and errors.
func Metadata() []byte {

	e := scale.NewEncoder()
	e.Raw([]byte("meta"))
	e.U8(14)

	e.Compact(22)
	primitive(e, 0, 3)  // u8
	primitive(e, 1, 5)  // u32
	array(e, 2, 32, 0)  // [u8; 32]
	composite(e, 3, []string{"sp_core", "crypto", "AccountId32"}, field{ty: 2})
	sequence(e, 4, 0) // Vec<u8>
	composite(e, 5, []string{"primitive_types", "H256"}, field{ty: 2})
	sequence(e, 6, 5)
	enum(e, 7, []string{"frame_system", "Phase"},
		variant{name: "ApplyExtrinsic", index: 0, fields: []field{{ty: 1}}},
		variant{name: "Finalization", index: 1},
		variant{name: "Initialization", index: 2},
	)
	array(e, 8, 4, 0)
	composite(e, 9, []string{"sp_runtime", "ModuleError"}, field{name: "index", ty: 0}, field{name: "error", ty: 8})
	enum(e, 10, []string{"sp_runtime", "DispatchError"},
		variant{name: "Other", index: 0},
		variant{name: "CannotLookup", index: 1},
		variant{name: "BadOrigin", index: 2},
		variant{name: "Module", index: 3, fields: []field{{ty: 9}}},
		variant{name: "Token", index: 7, fields: []field{{ty: 21}}},
	)
	primitive(e, 11, 6) // u64
	composite(e, 12, []string{"frame_support", "weights", "DispatchInfo"}, field{name: "weight", ty: 11}, field{name: "class", ty: 0})
	enum(e, 13, []string{"frame_system", "pallet", "Event"},
		variant{name: "ExtrinsicSuccess", index: 0, fields: []field{{name: "dispatch_info", ty: 12}}},
		variant{name: "ExtrinsicFailed", index: 1, fields: []field{{name: "dispatch_error", ty: 10}, {name: "dispatch_info", ty: 12}}},
	)
	enum(e, 14, []string{"pallet_contracts", "pallet", "Event"},
		variant{name: "ContractEmitted", index: 3, fields: []field{{name: "contract", ty: 3}, {name: "data", ty: 4}}},
		variant{name: "Called", index: 6, fields: []field{{name: "caller", ty: 3}, {name: "contract", ty: 3}}},
	)
	enum(e, 15, []string{"node_runtime", "Event"},
		variant{name: "System", index: SystemIndex, fields: []field{{ty: 13}}},
		variant{name: "Contracts", index: ContractsIndex, fields: []field{{ty: 14}}},
	)
	composite(e, 16, []string{"frame_system", "EventRecord"}, field{name: "phase", ty: 7}, field{name: "event", ty: 15}, field{name: "topics", ty: 6})
	sequence(e, 17, 16)
	enum(e, 18, []string{"pallet_contracts", "pallet", "Call"},
		variant{name: "call", index: CallIndex, fields: []field{{name: "dest", ty: 3}, {name: "value", ty: 20}, {name: "data", ty: 4}}},
		variant{name: "instantiate", index: 8},
	)
	enum(e, 19, []string{"pallet_contracts", "pallet", "Error"},
		variant{name: "OutOfGas", index: OutOfGas},
		variant{name: "ContractTrapped", index: ContractTrapped},
	)
	compact(e, 20, 11)
	enum(e, 21, []string{"sp_runtime", "TokenError"},
		variant{name: "NoFunds", index: 0},
		variant{name: "WouldDie", index: 1},
	)

	e.Compact(2)

	// System pallet.
	e.String("System")
	e.Some()
	e.String("System")
	e.Compact(2)
	entry(e, "Number", 1)
	entry(e, "Events", 17)
	e.None()
	e.Some()
	e.Compact(13)
	e.Compact(1)
	e.String("BlockHashCount")
	e.Compact(1)
	e.Vec([]byte{0x60, 0x09, 0x00, 0x00})
	e.Compact(0)
	e.None()
	e.U8(SystemIndex)

	// Contracts pallet.
	e.String("Contracts")
	e.None()
	e.Some()
	e.Compact(18)
	e.Some()
	e.Compact(14)
	e.Compact(0)
	e.Some()
	e.Compact(19)
	e.U8(ContractsIndex)

	// Extrinsic format and runtime type.
	e.Compact(4)
	e.U8(4)
	e.Compact(0)
	e.Compact(15)

	return e.Bytes()
}

// Events encodes the given event records as the value of `System.Events`.
func Events(records ...[]byte) []byte {
	e := scale.NewEncoder()
	e.Compact(uint64(len(records)))
	for _, record := range records {
		e.Raw(record)
	}
	return e.Bytes()
}

// SuccessRecord encodes a `System.ExtrinsicSuccess` record for the extrinsic
// with the given index.
func SuccessRecord(extrinsic uint32) []byte {
	e := recordHeader(extrinsic, SystemIndex, 0)
	dispatchInfo(e)
	e.Compact(0)
	return e.Bytes()
}

// FailedRecord encodes a `System.ExtrinsicFailed` record with a module error.
func FailedRecord(extrinsic uint32, pallet uint8, code uint8) []byte {
	e := recordHeader(extrinsic, SystemIndex, 1)
	e.U8(3)
	e.U8(pallet)
	e.Raw([]byte{code, 0, 0, 0})
	dispatchInfo(e)
	e.Compact(0)
	return e.Bytes()
}

// EmittedRecord encodes a `Contracts.ContractEmitted` record.
func EmittedRecord(extrinsic uint32, contract ink.Address, data []byte) []byte {
	e := recordHeader(extrinsic, ContractsIndex, 3)
	e.Raw(contract[:])
	e.Vec(data)
	e.Compact(1)
	e.Raw(make([]byte, 32))
	return e.Bytes()
}

// FinalizationRecord encodes a `Contracts.Called` record deposited during
// block finalization.
func FinalizationRecord(caller ink.Address, contract ink.Address) []byte {
	e := scale.NewEncoder()
	e.U8(1)
	e.U8(ContractsIndex)
	e.U8(6)
	e.Raw(caller[:])
	e.Raw(contract[:])
	e.Compact(0)
	return e.Bytes()
}

func recordHeader(extrinsic uint32, pallet uint8, event uint8) *scale.Encoder {
	e := scale.NewEncoder()
	e.U8(0)
	e.U32(extrinsic)
	e.U8(pallet)
	e.U8(event)
	return e
}

func dispatchInfo(e *scale.Encoder) {
	e.U64(1_000_000)
	e.U8(0)
}

func header(e *scale.Encoder, id uint32, path []string, kind uint8) {
	e.Compact(uint64(id))
	e.Compact(uint64(len(path)))
	for _, segment := range path {
		e.String(segment)
	}
	e.Compact(0)
	e.U8(kind)
}

func fields(e *scale.Encoder, fields []field) {
	e.Compact(uint64(len(fields)))
	for _, f := range fields {
		if f.name == "" {
			e.None()
		} else {
			e.Some()
			e.String(f.name)
		}
		e.Compact(uint64(f.ty))
		e.None()
		e.Compact(0)
	}
}

func composite(e *scale.Encoder, id uint32, path []string, members ...field) {
	header(e, id, path, 0)
	fields(e, members)
	e.Compact(0)
}

func enum(e *scale.Encoder, id uint32, path []string, variants ...variant) {
	header(e, id, path, 1)
	e.Compact(uint64(len(variants)))
	for _, v := range variants {
		e.String(v.name)
		fields(e, v.fields)
		e.U8(v.index)
		e.Compact(0)
	}
	e.Compact(0)
}

func sequence(e *scale.Encoder, id uint32, elem uint32) {
	header(e, id, nil, 2)
	e.Compact(uint64(elem))
	e.Compact(0)
}

func array(e *scale.Encoder, id uint32, length uint32, elem uint32) {
	header(e, id, nil, 3)
	e.U32(length)
	e.Compact(uint64(elem))
	e.Compact(0)
}

func primitive(e *scale.Encoder, id uint32, kind uint8) {
	header(e, id, nil, 5)
	e.U8(kind)
	e.Compact(0)
}

func compact(e *scale.Encoder, id uint32, elem uint32) {
	header(e, id, nil, 6)
	e.Compact(uint64(elem))
	e.Compact(0)
}

func entry(e *scale.Encoder, name string, value uint32) {
	e.String(name)
	e.U8(0)
	e.U8(0)
	e.Compact(uint64(value))
	e.Vec([]byte{0x00})
	e.Compact(0)
}
