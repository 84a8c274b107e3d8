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

package retriever

import (
	"github.com/optakt/ink-caller/models/ink"
)

// DefaultConfig is the default configuration of the retriever.
var DefaultConfig = Config{
	CacheSize: 16 << 20,
}

// Config holds the options of the retriever.
type Config struct {
	CacheSize int64
	Origin    ink.Address
}

// Option is an option of the retriever.
type Option func(*Config)

// WithCacheSize sets the maximum size of the query cache, in bytes.
func WithCacheSize(size int64) Option {
	return func(cfg *Config) {
		cfg.CacheSize = size
	}
}

// WithOrigin sets the caller of the read-only queries. Queries that do not
// depend on the caller work with the default empty address.
func WithOrigin(origin ink.Address) Option {
	return func(cfg *Config) {
		cfg.Origin = origin
	}
}
