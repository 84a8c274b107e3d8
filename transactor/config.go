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

package transactor

import (
	"github.com/optakt/ink-caller/models/ink"
)

// DefaultConfig builds immortal transactions without tip.
var DefaultConfig = Config{
	Mortal: false,
	Period: 64,
	Tip:    ink.NewBalance(0),
}

// Config holds the options of the transactor.
type Config struct {
	Mortal bool
	Period uint64
	Tip    ink.Balance
}

// Option is an option of the transactor.
type Option func(*Config)

// WithMortality makes transactions valid for the given number of blocks after
// the latest finalized block.
func WithMortality(period uint64) Option {
	return func(cfg *Config) {
		cfg.Mortal = true
		cfg.Period = period
	}
}

// WithTip sets the tip that is added to every transaction.
func WithTip(tip ink.Balance) Option {
	return func(cfg *Config) {
		cfg.Tip = tip
	}
}
