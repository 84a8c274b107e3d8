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

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/optakt/ink-caller/models/ink"
)

const namespace = "ink_caller"

// Metrics holds the collectors of the call pipeline.
type Metrics struct {
	submissions  *prometheus.CounterVec
	signatures   *prometheus.CounterVec
	signing      *prometheus.HistogramVec
	finalization prometheus.Histogram
	events       *prometheus.CounterVec
	records      *prometheus.HistogramVec
}

// New creates the collectors and registers them with the registry.
func New(registry prometheus.Registerer) *Metrics {

	factory := promauto.With(registry)

	submissionsOpts := prometheus.CounterOpts{
		Name:      "submissions_total",
		Namespace: namespace,
		Help:      "number of submission outcomes by kind",
	}
	submissions := factory.NewCounterVec(submissionsOpts, []string{"outcome"})

	signaturesOpts := prometheus.CounterOpts{
		Name:      "signatures_total",
		Namespace: namespace,
		Help:      "number of signature requests by signer origin and result",
	}
	signatures := factory.NewCounterVec(signaturesOpts, []string{"origin", "result"})

	signingOpts := prometheus.HistogramOpts{
		Name:      "signing_seconds",
		Namespace: namespace,
		Help:      "time spent waiting for signatures",
		Buckets:   []float64{0.001, 0.01, 0.1, 1, 5, 15, 30, 60, 120},
	}
	signing := factory.NewHistogramVec(signingOpts, []string{"origin"})

	finalizationOpts := prometheus.HistogramOpts{
		Name:      "finalization_seconds",
		Namespace: namespace,
		Help:      "time from submission to a terminal outcome after inclusion",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	}
	finalization := factory.NewHistogram(finalizationOpts)

	eventsOpts := prometheus.CounterOpts{
		Name:      "stage_events_total",
		Namespace: namespace,
		Help:      "number of processed call-stage events",
	}
	events := factory.NewCounterVec(eventsOpts, []string{"event", "applied"})

	recordsOpts := prometheus.HistogramOpts{
		Name:      "journal_record_bytes",
		Namespace: namespace,
		Help:      "size of journal records before and after compression",
		Buckets:   prometheus.ExponentialBuckets(64, 2, 8),
	}
	records := factory.NewHistogramVec(recordsOpts, []string{"form"})

	m := Metrics{
		submissions:  submissions,
		signatures:   signatures,
		signing:      signing,
		finalization: finalization,
		events:       events,
		records:      records,
	}

	return &m
}

// Observe counts a submission outcome.
func (m *Metrics) Observe(outcome ink.Outcome, elapsed time.Duration) {
	m.submissions.WithLabelValues(outcome.Kind.String()).Inc()
	if outcome.Kind == ink.OutcomeFinalized || outcome.Kind == ink.OutcomeFinalizationFailed {
		m.finalization.Observe(elapsed.Seconds())
	}
}

// Event counts a processed call-stage event.
func (m *Metrics) Event(name string, applied bool) {
	label := "false"
	if applied {
		label = "true"
	}
	m.events.WithLabelValues(name, label).Inc()
}

func (m *Metrics) signature(origin ink.Origin, result string, elapsed time.Duration) {
	m.signatures.WithLabelValues(origin.String(), result).Inc()
	m.signing.WithLabelValues(origin.String()).Observe(elapsed.Seconds())
}

func (m *Metrics) record(raw int, compressed int) {
	m.records.WithLabelValues("raw").Observe(float64(raw))
	m.records.WithLabelValues("compressed").Observe(float64(compressed))
}
