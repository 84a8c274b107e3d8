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

package ink

import (
	"sync"

	"github.com/gammazero/deque"
)

// Queue is an unbounded FIFO queue that is safe for concurrent use. Consumers
// wait on Signal, which fires at least once after every push.
type Queue struct {
	mutex  *sync.Mutex
	deque  *deque.Deque
	signal chan struct{}
}

func NewQueue() *Queue {
	q := Queue{
		mutex:  &sync.Mutex{},
		deque:  deque.New(),
		signal: make(chan struct{}, 1),
	}
	return &q
}

func (q *Queue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return q.deque.Len()
}

func (q *Queue) Push(v interface{}) {
	q.mutex.Lock()
	q.deque.PushBack(v)
	q.mutex.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *Queue) Pop() (interface{}, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.deque.Len() == 0 {
		return nil, false
	}
	return q.deque.PopFront(), true
}

func (q *Queue) Signal() <-chan struct{} {
	return q.signal
}
