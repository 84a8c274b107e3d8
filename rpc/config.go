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
	"time"

	"github.com/optakt/ink-caller/models/ink"
)

// DefaultConfig is the default configuration of the JSON-RPC client.
var DefaultConfig = Config{
	Prefix:  ink.DefaultPrefix,
	Retries: 5,
	Backoff: 500 * time.Millisecond,
	Window:  256,
}

// Config holds the options of the JSON-RPC client.
type Config struct {
	Prefix  uint16
	Retries uint
	Backoff time.Duration
	Window  uint64
}

// Option is an option of the JSON-RPC client.
type Option func(*Config)

// WithPrefix sets the SS58 prefix used for addresses sent to the node.
func WithPrefix(prefix uint16) Option {
	return func(cfg *Config) {
		cfg.Prefix = prefix
	}
}

// WithRetries sets how many times a dropped connection is redialed before a
// request fails.
func WithRetries(retries uint) Option {
	return func(cfg *Config) {
		cfg.Retries = retries
	}
}

// WithBackoff sets the initial wait between two dial attempts. It doubles
// after every failed attempt.
func WithBackoff(backoff time.Duration) Option {
	return func(cfg *Config) {
		cfg.Backoff = backoff
	}
}

// WithWindow sets how many finalized blocks are scanned for a resumed
// transaction before it is considered dropped.
func WithWindow(window uint64) Option {
	return func(cfg *Config) {
		cfg.Window = window
	}
}
