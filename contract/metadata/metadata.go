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

package metadata

import (
	"fmt"
	"sort"
	"strings"

	"github.com/optakt/ink-caller/failure"
	"github.com/optakt/ink-caller/models/ink"
)

// Argument types understood by the encoder.
const (
	TypeAccountID = "AccountId"
	TypeBalance   = "Balance"
	TypeU8        = "u8"
	TypeU16       = "u16"
	TypeU32       = "u32"
	TypeU64       = "u64"
	TypeU128      = "u128"
	TypeBool      = "bool"
	TypeBytes     = "Vec<u8>"
	TypeString    = "String"
)

// Arg is a declared message parameter.
type Arg struct {
	Label string `json:"label"`
	Type  string `json:"type"`
}

// Message is a callable contract message.
type Message struct {
	Label    string       `json:"label"`
	Selector ink.Selector `json:"selector"`
	Args     []Arg        `json:"args"`
	Mutates  bool         `json:"mutates"`
	Payable  bool         `json:"payable"`
	Returns  string       `json:"returns,omitempty"`
}

// Metadata is the set of messages of one contract. Messages are looked up by
// their full label, or by the part after the last `::` when only one message
// has it.
type Metadata struct {
	messages map[string]Message
	short    map[string][]string
}

// New creates metadata for the given messages.
func New(messages ...Message) *Metadata {

	m := Metadata{
		messages: make(map[string]Message, len(messages)),
		short:    make(map[string][]string, len(messages)),
	}

	for _, message := range messages {
		m.messages[message.Label] = message
		name := shortName(message.Label)
		if name != message.Label {
			m.short[name] = append(m.short[name], message.Label)
		}
	}

	return &m
}

// Message returns the message with the given name.
func (m *Metadata) Message(name string) (Message, error) {

	message, ok := m.messages[name]
	if ok {
		return message, nil
	}

	labels := m.short[name]
	switch len(labels) {
	case 0:
		return Message{}, failure.UnknownMethod{
			Description: failure.NewDescription("no message with that label in contract metadata"),
			Method:      name,
		}
	case 1:
		return m.messages[labels[0]], nil
	default:
		sort.Strings(labels)
		return Message{}, failure.UnknownMethod{
			Description: failure.NewDescription("ambiguous message name, use the full label",
				failure.WithStrings("candidates", labels...),
			),
			Method: name,
		}
	}
}

// Messages returns all messages, sorted by label.
func (m *Metadata) Messages() []Message {
	messages := make([]Message, 0, len(m.messages))
	for _, message := range m.messages {
		messages = append(messages, message)
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Label < messages[j].Label
	})
	return messages
}

func shortName(label string) string {
	idx := strings.LastIndex(label, "::")
	if idx < 0 {
		return label
	}
	return label[idx+2:]
}

func (a Arg) String() string {
	return fmt.Sprintf("%s: %s", a.Label, a.Type)
}
