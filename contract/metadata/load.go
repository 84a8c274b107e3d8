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
	"encoding/json"
	"fmt"
	"io"

	"github.com/optakt/ink-caller/models/ink"
)

type contractFile struct {
	Spec struct {
		Messages []struct {
			Label      string   `json:"label"`
			Selector   string   `json:"selector"`
			Mutates    bool     `json:"mutates"`
			Payable    bool     `json:"payable"`
			Args       []argDef `json:"args"`
			ReturnType *typeRef `json:"returnType"`
		} `json:"messages"`
	} `json:"spec"`
}

type argDef struct {
	Label string  `json:"label"`
	Type  typeRef `json:"type"`
}

type typeRef struct {
	DisplayName []string `json:"displayName"`
}

// Load reads the messages of an ink! contract metadata file, as produced by
// `cargo contract build`.
func Load(r io.Reader) (*Metadata, error) {

	var file contractFile
	err := json.NewDecoder(r).Decode(&file)
	if err != nil {
		return nil, fmt.Errorf("could not decode contract metadata: %w", err)
	}
	if len(file.Spec.Messages) == 0 {
		return nil, fmt.Errorf("contract metadata has no messages")
	}

	messages := make([]Message, 0, len(file.Spec.Messages))
	for _, def := range file.Spec.Messages {
		selector, err := ink.SelectorFromHex(def.Selector)
		if err != nil {
			return nil, fmt.Errorf("could not parse selector of %s: %w", def.Label, err)
		}
		args := make([]Arg, 0, len(def.Args))
		for _, arg := range def.Args {
			args = append(args, Arg{Label: arg.Label, Type: arg.Type.name()})
		}
		message := Message{
			Label:    def.Label,
			Selector: selector,
			Args:     args,
			Mutates:  def.Mutates,
			Payable:  def.Payable,
		}
		if def.ReturnType != nil {
			message.Returns = def.ReturnType.name()
		}
		messages = append(messages, message)
	}

	return New(messages...), nil
}

func (t typeRef) name() string {
	if len(t.DisplayName) == 0 {
		return ""
	}
	name := t.DisplayName[len(t.DisplayName)-1]
	if name == "Vec" {
		return TypeBytes
	}
	return name
}
