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

package tracker

import (
	"time"
)

// DefaultConfig is the default configuration of the tracker.
var DefaultConfig = Config{
	Retries: 8,
	Backoff: time.Second,
	Buffer:  8,
}

// Config holds the options of the tracker.
type Config struct {
	Retries   uint
	Backoff   time.Duration
	Buffer    uint
	Inspector Inspector
	Journal   Journal
	Observer  Observer
}

// Option is an option of the tracker.
type Option func(*Config)

// WithRetries sets how many times a watch is resumed after the connection
// dropped, before the watch gives up.
func WithRetries(retries uint) Option {
	return func(cfg *Config) {
		cfg.Retries = retries
	}
}

// WithBackoff sets the wait before the first resume attempt. It doubles with
// every further attempt.
func WithBackoff(backoff time.Duration) Option {
	return func(cfg *Config) {
		cfg.Backoff = backoff
	}
}

// WithBuffer sets how many outcomes can be pending for a slow consumer.
func WithBuffer(buffer uint) Option {
	return func(cfg *Config) {
		cfg.Buffer = buffer
	}
}

// WithInspector sets the inspector used to tell apart successful and failed
// executions of finalized transactions. Without one, every finalized
// transaction is reported as finalized.
func WithInspector(inspector Inspector) Option {
	return func(cfg *Config) {
		cfg.Inspector = inspector
	}
}

// WithJournal sets the journal that keeps track of submissions that have not
// reached a terminal outcome.
func WithJournal(journal Journal) Option {
	return func(cfg *Config) {
		cfg.Journal = journal
	}
}

// WithObserver sets the observer notified of every outcome.
func WithObserver(observer Observer) Option {
	return func(cfg *Config) {
		cfg.Observer = observer
	}
}
