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
	"context"
	"testing"
)

type Caller struct {
	CallFunc func(ctx context.Context, result interface{}, method string, params ...interface{}) error
}

func BaselineCaller(t *testing.T) *Caller {
	t.Helper()

	c := Caller{
		CallFunc: func(context.Context, interface{}, string, ...interface{}) error {
			return nil
		},
	}

	return &c
}

func (c *Caller) Call(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	return c.CallFunc(ctx, result, method, params...)
}
