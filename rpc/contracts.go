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

	"github.com/optakt/ink-caller/codec/scale"
	"github.com/optakt/ink-caller/models/ink"
)

const (
	contractsCall = "ContractsApi_call"
	flagRevert    = 0x01
)

// ContractRequest is a dry-run of a contract call.
type ContractRequest struct {
	Origin       ink.Address
	Contract     ink.Address
	Value        ink.Balance
	GasLimit     *ink.Weight
	DepositLimit *ink.Balance
	Input        []byte
}

// ContractCall dry-runs a contract call on the state of the given block, or
// of the best block if at is nil.
func (c *Client) ContractCall(ctx context.Context, req ContractRequest, at *ink.Hash) (ink.ExecResult, error) {

	params := []interface{}{contractsCall, encodeHex(encodeContractRequest(req))}
	if at != nil {
		params = append(params, at.Hex())
	}

	var result string
	err := c.Call(ctx, &result, "state_call", params...)
	if err != nil {
		return ink.ExecResult{}, fmt.Errorf("could not call contract (contract: %s): %w", req.Contract, err)
	}

	data, err := decodeHex(result)
	if err != nil {
		return ink.ExecResult{}, fmt.Errorf("could not decode contract call result: %w", err)
	}

	return decodeExecResult(data)
}

func encodeContractRequest(req ContractRequest) []byte {

	enc := scale.NewEncoder()
	enc.Raw(req.Origin[:])
	enc.Raw(req.Contract[:])
	enc.U128(req.Value.Int())
	if req.GasLimit == nil {
		enc.None()
	} else {
		enc.Some()
		enc.Compact(req.GasLimit.RefTime)
		enc.Compact(req.GasLimit.ProofSize)
	}
	if req.DepositLimit == nil {
		enc.None()
	} else {
		enc.Some()
		enc.U128(req.DepositLimit.Int())
	}
	enc.Vec(req.Input)

	return enc.Bytes()
}

func decodeExecResult(data []byte) (ink.ExecResult, error) {

	dec := scale.NewDecoder(data)
	var result ink.ExecResult

	consumed, err := decodeWeight(dec)
	if err != nil {
		return ink.ExecResult{}, fmt.Errorf("could not decode gas consumed: %w", err)
	}
	result.GasConsumed = consumed

	required, err := decodeWeight(dec)
	if err != nil {
		return ink.ExecResult{}, fmt.Errorf("could not decode gas required: %w", err)
	}
	result.GasRequired = required

	kind, err := dec.U8()
	if err != nil {
		return ink.ExecResult{}, fmt.Errorf("could not decode storage deposit kind: %w", err)
	}
	deposit, err := dec.U128()
	if err != nil {
		return ink.ExecResult{}, fmt.Errorf("could not decode storage deposit: %w", err)
	}
	result.DepositCharge = kind == 1
	result.Deposit = ink.BalanceFromInt(deposit)

	debug, err := dec.Vec()
	if err != nil {
		return ink.ExecResult{}, fmt.Errorf("could not decode debug message: %w", err)
	}
	result.Debug = string(debug)

	ok, err := dec.U8()
	if err != nil {
		return ink.ExecResult{}, fmt.Errorf("could not decode result variant: %w", err)
	}

	switch ok {

	case 0:
		flags, err := dec.U32()
		if err != nil {
			return ink.ExecResult{}, fmt.Errorf("could not decode return flags: %w", err)
		}
		output, err := dec.Vec()
		if err != nil {
			return ink.ExecResult{}, fmt.Errorf("could not decode return data: %w", err)
		}
		result.Reverted = flags&flagRevert != 0
		result.Data = output

	case 1:
		// The dispatch error is followed by the optional events, which are
		// never requested, so the rest of the data belongs to the error.
		rest, _ := dec.Fixed(dec.Remaining())
		if len(rest) > 1 && rest[len(rest)-1] == 0 {
			rest = rest[:len(rest)-1]
		}
		if len(rest) == 0 {
			return ink.ExecResult{}, fmt.Errorf("empty dispatch error")
		}
		result.DispatchError = rest

	default:
		return ink.ExecResult{}, fmt.Errorf("invalid result variant (%d)", ok)
	}

	return result, nil
}

func decodeWeight(dec *scale.Decoder) (ink.Weight, error) {
	refTime, err := dec.Compact()
	if err != nil {
		return ink.Weight{}, err
	}
	proofSize, err := dec.Compact()
	if err != nil {
		return ink.Weight{}, err
	}
	return ink.Weight{RefTime: refTime, ProofSize: proofSize}, nil
}

var dispatchErrors = []string{
	"Other",
	"CannotLookup",
	"BadOrigin",
	"Module",
	"ConsumerRemaining",
	"NoProviders",
	"TooManyConsumers",
	"Token",
	"Arithmetic",
	"Transactional",
	"Exhausted",
	"Corruption",
	"Unavailable",
	"RootNotAllowed",
}

// DescribeDispatchError gives a readable form of an encoded dispatch error.
func DescribeDispatchError(raw []byte) string {
	if len(raw) == 0 {
		return "unknown dispatch error"
	}
	variant := int(raw[0])
	if variant >= len(dispatchErrors) {
		return fmt.Sprintf("dispatch error %s", encodeHex(raw))
	}
	name := dispatchErrors[variant]
	if name == "Module" && len(raw) >= 6 {
		return fmt.Sprintf("Module(index: %d, error: %s)", raw[1], encodeHex(raw[2:6]))
	}
	if len(raw) > 1 {
		return fmt.Sprintf("%s(%s)", name, encodeHex(raw[1:]))
	}
	return name
}
