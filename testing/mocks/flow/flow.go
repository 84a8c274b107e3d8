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

// Package flow mocks the stage controller. It is kept apart from the other
// mocks so that the packages the controller depends on can import those.
package flow

import (
	"testing"

	"github.com/optakt/ink-caller/stage"
	"github.com/optakt/ink-caller/testing/mocks"
)

// Flow is a stand-in for the stage controller behind the REST API.
type Flow struct {
	PostFunc  func(ev stage.Event)
	StateFunc func() stage.State
}

func BaselineFlow(t *testing.T) *Flow {
	t.Helper()

	f := Flow{
		PostFunc: func(stage.Event) {},
		StateFunc: func() stage.State {
			selected := mocks.GenericAccount(0)
			return stage.State{
				Stage:    stage.DisplayingResult,
				Contract: mocks.GenericAddress(5),
				Accounts: mocks.GenericAccounts(2),
				Selected: &selected,
				Balance:  &mocks.GenericBalance,
			}
		},
	}

	return &f
}

func (f *Flow) Post(ev stage.Event) {
	f.PostFunc(ev)
}

func (f *Flow) State() stage.State {
	return f.StateFunc()
}
