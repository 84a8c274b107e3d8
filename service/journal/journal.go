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

package journal

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/optakt/ink-caller/models/ink"
)

const prefixSubmission = 1

// Codec encodes and compresses journal records.
type Codec interface {
	Marshal(value interface{}) ([]byte, error)
	Unmarshal(compressed []byte, value interface{}) error
}

// Journal records the submissions that were handed to the network but did
// not reach a terminal outcome yet, so that they can be watched again after
// a restart.
type Journal struct {
	log   zerolog.Logger
	db    *badger.DB
	codec Codec
}

// New creates a journal on the given database.
func New(log zerolog.Logger, db *badger.DB, codec Codec) *Journal {

	j := Journal{
		log:   log.With().Str("component", "journal").Logger(),
		db:    db,
		codec: codec,
	}

	return &j
}

// Save records a submission.
func (j *Journal) Save(sub ink.Submission) error {
	err := j.db.Update(j.save(sub))
	if err != nil {
		return fmt.Errorf("could not save submission: %w", err)
	}
	j.log.Debug().Str("transaction", sub.Hash.Hex()).Msg("submission saved")
	return nil
}

// Update records the latest outcome of a submission.
func (j *Journal) Update(hash ink.Hash, last ink.OutcomeKind) error {
	err := j.db.Update(func(tx *badger.Txn) error {
		var sub ink.Submission
		err := j.retrieve(hash, &sub)(tx)
		if err != nil {
			return err
		}
		sub.Last = last
		return j.save(sub)(tx)
	})
	if err != nil {
		return fmt.Errorf("could not update submission: %w", err)
	}
	return nil
}

// Delete removes a submission. Deleting an unknown submission is a no-op.
func (j *Journal) Delete(hash ink.Hash) error {
	err := j.db.Update(func(tx *badger.Txn) error {
		return tx.Delete(encodeKey(hash))
	})
	if err != nil {
		return fmt.Errorf("could not delete submission: %w", err)
	}
	j.log.Debug().Str("transaction", hash.Hex()).Msg("submission removed")
	return nil
}

// Pending lists all recorded submissions. Records that can no longer be
// decoded are skipped and reported in the returned error, alongside the
// submissions that could be read.
func (j *Journal) Pending() ([]ink.Submission, error) {

	var subs []ink.Submission
	var errs error
	err := j.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{prefixSubmission}
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var sub ink.Submission
				err := j.codec.Unmarshal(val, &sub)
				if err != nil {
					return err
				}
				subs = append(subs, sub)
				return nil
			})
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("could not decode submission (key: %x): %w", item.Key(), err))
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not iterate submissions: %w", err)
	}

	return subs, errs
}

func (j *Journal) retrieve(hash ink.Hash, sub *ink.Submission) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		key := encodeKey(hash)
		item, err := tx.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("unknown submission (transaction: %s): %w", hash.Hex(), err)
		}
		if err != nil {
			return fmt.Errorf("could not get value (key: %x): %w", key, err)
		}

		err = item.Value(func(val []byte) error {
			return j.codec.Unmarshal(val, sub)
		})
		if err != nil {
			return fmt.Errorf("could not decode value (key: %x): %w", key, err)
		}

		return nil
	}
}

func (j *Journal) save(sub ink.Submission) func(*badger.Txn) error {
	// The value is encoded before the closure is returned, so that it does not
	// depend on the caller's copy anymore by the time the transaction runs.
	key := encodeKey(sub.Hash)
	val, err := j.codec.Marshal(sub)
	return func(tx *badger.Txn) error {
		if err != nil {
			return fmt.Errorf("could not encode value (key: %x): %w", key, err)
		}

		err := tx.Set(key, val)
		if err != nil {
			return fmt.Errorf("could not set value (key: %x): %w", key, err)
		}

		return nil
	}
}

func encodeKey(hash ink.Hash) []byte {
	key := make([]byte, 0, 1+len(hash))
	key = append(key, prefixSubmission)
	key = append(key, hash[:]...)
	return key
}
