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
	"io"
	"testing"

	"github.com/optakt/ink-caller/models/ink"
)

type Submitter struct {
	SubmitAndWatchFunc func(ctx context.Context, extrinsic []byte) (ink.Stream, error)
	ResumeFunc         func(ctx context.Context, hash ink.Hash, from uint64) (ink.Stream, error)
}

func BaselineSubmitter(t *testing.T) *Submitter {
	t.Helper()

	s := Submitter{
		SubmitAndWatchFunc: func(context.Context, []byte) (ink.Stream, error) {
			return NewStream(
				ink.Status{Kind: ink.StatusReady},
				ink.Status{Kind: ink.StatusInBlock, Block: GenericHash(1)},
				ink.Status{Kind: ink.StatusFinalized, Block: GenericHash(1)},
			), nil
		},
		ResumeFunc: func(context.Context, ink.Hash, uint64) (ink.Stream, error) {
			return NewStream(
				ink.Status{Kind: ink.StatusInBlock, Block: GenericHash(1)},
				ink.Status{Kind: ink.StatusFinalized, Block: GenericHash(1)},
			), nil
		},
	}

	return &s
}

func (s *Submitter) SubmitAndWatch(ctx context.Context, extrinsic []byte) (ink.Stream, error) {
	return s.SubmitAndWatchFunc(ctx, extrinsic)
}

func (s *Submitter) Resume(ctx context.Context, hash ink.Hash, from uint64) (ink.Stream, error) {
	return s.ResumeFunc(ctx, hash, from)
}

// Stream replays a fixed list of statuses and then fails with End, which is
// io.EOF unless set otherwise. With Hold set, it blocks after the statuses
// until the context is done.
type Stream struct {
	Statuses []ink.Status
	End      error
	Hold     bool
	Closed   chan struct{}
}

func NewStream(statuses ...ink.Status) *Stream {
	s := Stream{
		Statuses: statuses,
		End:      io.EOF,
		Closed:   make(chan struct{}),
	}
	return &s
}

func (s *Stream) Next(ctx context.Context) (ink.Status, error) {
	if len(s.Statuses) > 0 {
		status := s.Statuses[0]
		s.Statuses = s.Statuses[1:]
		return status, nil
	}
	if s.Hold {
		<-ctx.Done()
		return ink.Status{}, ctx.Err()
	}
	return ink.Status{}, s.End
}

func (s *Stream) Close() {
	select {
	case <-s.Closed:
	default:
		close(s.Closed)
	}
}
