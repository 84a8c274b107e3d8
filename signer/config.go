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

package signer

import (
	"time"
)

// DefaultConfig bounds the wait for an external agent to two minutes, which
// leaves a user enough time to review and approve the request.
var DefaultConfig = Config{
	Timeout: 2 * time.Minute,
}

// Config holds the options of the external agent signer.
type Config struct {
	Timeout time.Duration
}

// Option is an option of the external agent signer.
type Option func(*Config)

// WithTimeout sets the maximum wait for an agent's answer. Zero means that
// only the caller's context bounds the wait.
func WithTimeout(timeout time.Duration) Option {
	return func(cfg *Config) {
		cfg.Timeout = timeout
	}
}
