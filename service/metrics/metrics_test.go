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

package metrics_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/ink-caller/codec/zbor"
	"github.com/optakt/ink-caller/failure"
	"github.com/optakt/ink-caller/models/ink"
	"github.com/optakt/ink-caller/service/metrics"
	"github.com/optakt/ink-caller/testing/mocks"
)

func TestMetrics_Observe(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	m.Observe(ink.Outcome{Kind: ink.OutcomeBroadcast}, time.Second)
	m.Observe(ink.Outcome{Kind: ink.OutcomeInBlock}, 2*time.Second)
	m.Observe(ink.Outcome{Kind: ink.OutcomeFinalized}, 6*time.Second)
	m.Observe(ink.Outcome{Kind: ink.OutcomeRejected}, time.Second)

	families, err := registry.Gather()
	require.NoError(t, err)

	counts := make(map[string]float64)
	var finalizations uint64
	for _, family := range families {
		switch family.GetName() {
		case "ink_caller_submissions_total":
			for _, metric := range family.GetMetric() {
				counts[metric.GetLabel()[0].GetValue()] = metric.GetCounter().GetValue()
			}
		case "ink_caller_finalization_seconds":
			finalizations = family.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}

	assert.Equal(t, map[string]float64{"broadcast": 1, "in_block": 1, "finalized": 1, "rejected": 1}, counts)
	assert.Equal(t, uint64(1), finalizations)
}

func TestMetrics_Event(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	m.Event("transfer_requested", true)
	m.Event("transfer_requested", true)
	m.Event("signature_obtained", false)

	count, err := testutil.GatherAndCount(registry, "ink_caller_stage_events_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSigner(t *testing.T) {
	t.Run("nominal case", func(t *testing.T) {
		t.Parallel()

		registry := prometheus.NewRegistry()
		m := metrics.New(registry)
		s := metrics.NewSigner(mocks.BaselineSigner(t), m)

		sig, err := s.Sign(context.Background(), ink.SigningRequest{Origin: ink.LocalOrigin})
		require.NoError(t, err)
		assert.Equal(t, mocks.GenericSignature, sig)

		count, err := testutil.GatherAndCount(registry, "ink_caller_signatures_total", "ink_caller_signing_seconds")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("declined by agent", func(t *testing.T) {
		t.Parallel()

		registry := prometheus.NewRegistry()
		m := metrics.New(registry)
		inner := mocks.BaselineSigner(t)
		inner.SignFunc = func(context.Context, ink.SigningRequest) (ink.Signature, error) {
			return ink.Signature{}, failure.AgentDeclined{Agent: "polkadot-js"}
		}
		s := metrics.NewSigner(inner, m)

		_, err := s.Sign(context.Background(), ink.SigningRequest{Origin: ink.AgentOrigin("polkadot-js")})
		assert.ErrorAs(t, err, &failure.AgentDeclined{})

		families, err := registry.Gather()
		require.NoError(t, err)
		var labels map[string]string
		for _, family := range families {
			if family.GetName() != "ink_caller_signatures_total" {
				continue
			}
			labels = make(map[string]string)
			for _, label := range family.GetMetric()[0].GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}
		}
		assert.Equal(t, map[string]string{"origin": "agent:polkadot-js", "result": "declined"}, labels)
	})
}

func TestCodec(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	codec := metrics.NewCodec(zbor.NewCodec(), m)

	data, err := codec.Marshal(mocks.GenericPayload)
	require.NoError(t, err)

	var got ink.CallPayload
	require.NoError(t, codec.Unmarshal(data, &got))
	assert.Equal(t, mocks.GenericPayload.Contract, got.Contract)

	count, err := testutil.GatherAndCount(registry, "ink_caller_journal_record_bytes")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
