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

package encoder

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/optakt/ink-caller/codec/scale"
	"github.com/optakt/ink-caller/contract/metadata"
	"github.com/optakt/ink-caller/failure"
	"github.com/optakt/ink-caller/models/ink"
)

// Encoder turns a message name and its arguments into the data of a contract
// call: the message selector followed by the SCALE encoding of each argument
// in declaration order.
type Encoder struct {
	schema Schema
}

// New creates an encoder for the contract described by the given schema.
func New(schema Schema) *Encoder {
	e := Encoder{
		schema: schema,
	}
	return &e
}

// Encode encodes a call to the named message. Arguments are Go values whose
// type must match the declared parameter type exactly:
//   AccountId        ink.Address
//   Balance, u128    ink.Balance or *uint256.Int
//   u8 to u64        uint8, uint16, uint32, uint64
//   bool             bool
//   Vec<u8>          []byte
//   String           string
func (e *Encoder) Encode(method string, args ...interface{}) ([]byte, error) {

	message, err := e.schema.Message(method)
	if err != nil {
		return nil, fmt.Errorf("could not resolve message: %w", err)
	}

	if len(args) != len(message.Args) {
		return nil, failure.InvalidArgument{
			Description: failure.NewDescription("wrong number of arguments",
				failure.WithInt("have", len(args)),
				failure.WithInt("want", len(message.Args)),
			),
			Method: message.Label,
			Index:  len(args),
		}
	}

	enc := scale.NewEncoder()
	enc.Raw(message.Selector[:])
	for index, arg := range message.Args {
		err = encodeArg(enc, message.Label, index, arg, args[index])
		if err != nil {
			return nil, err
		}
	}

	return enc.Bytes(), nil
}

func encodeArg(enc *scale.Encoder, method string, index int, arg metadata.Arg, value interface{}) error {

	mismatch := func() error {
		return failure.InvalidArgument{
			Description: failure.NewDescription("argument type mismatch",
				failure.WithString("label", arg.Label),
				failure.WithString("value_type", fmt.Sprintf("%T", value)),
			),
			Method: method,
			Index:  index,
			Type:   arg.Type,
		}
	}

	switch arg.Type {

	case metadata.TypeAccountID:
		address, ok := value.(ink.Address)
		if !ok {
			return mismatch()
		}
		enc.Raw(address[:])

	case metadata.TypeBalance, metadata.TypeU128:
		var amount ink.Balance
		switch v := value.(type) {
		case ink.Balance:
			amount = v
		case *uint256.Int:
			if v == nil {
				return mismatch()
			}
			amount = ink.BalanceFromInt(v)
		default:
			return mismatch()
		}
		if !amount.Fits() {
			return failure.OutOfRange{
				Description: failure.NewDescription("argument exceeds 128 bits",
					failure.WithString("method", method),
					failure.WithInt("index", index),
				),
				Field: arg.Label,
				Value: amount.String(),
			}
		}
		enc.U128(amount.Int())

	case metadata.TypeU8:
		v, ok := value.(uint8)
		if !ok {
			return mismatch()
		}
		enc.U8(v)

	case metadata.TypeU16:
		v, ok := value.(uint16)
		if !ok {
			return mismatch()
		}
		enc.U16(v)

	case metadata.TypeU32:
		v, ok := value.(uint32)
		if !ok {
			return mismatch()
		}
		enc.U32(v)

	case metadata.TypeU64:
		v, ok := value.(uint64)
		if !ok {
			return mismatch()
		}
		enc.U64(v)

	case metadata.TypeBool:
		v, ok := value.(bool)
		if !ok {
			return mismatch()
		}
		enc.Bool(v)

	case metadata.TypeBytes:
		v, ok := value.([]byte)
		if !ok {
			return mismatch()
		}
		enc.Vec(v)

	case metadata.TypeString:
		v, ok := value.(string)
		if !ok {
			return mismatch()
		}
		enc.String(v)

	default:
		return failure.InvalidArgument{
			Description: failure.NewDescription("unsupported argument type",
				failure.WithString("label", arg.Label),
			),
			Method: method,
			Index:  index,
			Type:   arg.Type,
		}
	}

	return nil
}
