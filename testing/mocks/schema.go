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

package mocks

import (
	"testing"

	"github.com/optakt/ink-caller/contract/metadata"
)

type Schema struct {
	MessageFunc func(name string) (metadata.Message, error)
}

func BaselineSchema(t *testing.T) *Schema {
	t.Helper()

	s := Schema{
		MessageFunc: func(name string) (metadata.Message, error) {
			return metadata.Message{
				Label:    name,
				Selector: GenericSelector,
				Args:     []metadata.Arg{},
			}, nil
		},
	}

	return &s
}

func (s *Schema) Message(name string) (metadata.Message, error) {
	return s.MessageFunc(name)
}
