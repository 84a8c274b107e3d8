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
	"encoding/json"
	"fmt"
	"strings"
)

const version = "2.0"

type request struct {
	Version string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type message struct {
	Version string          `json:"jsonrpc"`
	ID      *uint64         `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  *notification   `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

type notification struct {
	Subscription json.RawMessage `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}

// Error is an error response of the remote node. Its message is passed on
// unchanged.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Data) == 0 {
		return fmt.Sprintf("%s (code: %d)", e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s (code: %d)", e.Message, strings.Trim(string(e.Data), `"`), e.Code)
}

// Reason returns the most specific human-readable reason of the error.
func (e *Error) Reason() string {
	if len(e.Data) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Trim(string(e.Data), `"`))
}

func subscriptionID(raw json.RawMessage) string {
	return strings.Trim(string(raw), `"`)
}
