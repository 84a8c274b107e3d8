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

package stage

import (
	"github.com/optakt/ink-caller/models/ink"
)

// DefaultConfig is the default configuration of the controller.
var DefaultConfig = Config{
	Budget: ink.DefaultTransactionWeight,
}

// Config holds the options of the controller.
type Config struct {
	Budget       ink.Weight
	DepositLimit *ink.Balance
	Observer     Observer
}

// Option is an option of the controller.
type Option func(*Config)

// WithBudget sets the weight budget of transfers.
func WithBudget(budget ink.Weight) Option {
	return func(cfg *Config) {
		cfg.Budget = budget
	}
}

// WithDepositLimit sets the storage deposit limit of transfers. Without it,
// the limit is left to the ledger.
func WithDepositLimit(limit ink.Balance) Option {
	return func(cfg *Config) {
		cfg.DepositLimit = &limit
	}
}

// WithObserver sets the observer notified of every processed event.
func WithObserver(observer Observer) Option {
	return func(cfg *Config) {
		cfg.Observer = observer
	}
}
