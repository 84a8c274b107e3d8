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

package rest

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/optakt/ink-caller/models/ink"
)

func newValidator() *validator.Validate {

	v := validator.New()

	// We should never fail here, as the tag is registered once with a valid
	// function, so use panic to keep the constructor signature clean.
	err := v.RegisterValidation("ss58", validateSS58)
	if err != nil {
		panic(err)
	}

	return v
}

func validateSS58(fl validator.FieldLevel) bool {
	_, _, err := ink.ParseAddress(fl.Field().String())
	return err == nil
}

// describe turns validation errors into a message naming the failing fields.
func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msg := "invalid request:"
	for _, verr := range verrs {
		msg += fmt.Sprintf(" %s (%s)", verr.Field(), verr.Tag())
	}
	return msg
}
