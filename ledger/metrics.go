// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type stateMetrics struct {
	callsTotal         *prometheus.CounterVec
	callDuration       *prometheus.HistogramVec
	tipHeight          prometheus.Gauge
	allocationOutcomes *prometheus.CounterVec
	proposalOutcomes   *prometheus.CounterVec
	disputeOutcomes    *prometheus.CounterVec
}

func (m *stateMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.callsTotal = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ayllu_ledger_calls_total",
			Help: "ledger calls by operation and result",
		},
		[]string{"operation", "result"},
	)
	m.callDuration = promautoFactory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ayllu_ledger_call_duration_seconds",
			Help:    "latency of ledger calls including the commit",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15), // 100us to ~1.6s
		},
		[]string{"operation"},
	)
	m.tipHeight = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "ayllu_ledger_tip_height",
		Help: "block height of the last committed ledger call",
	})
	m.allocationOutcomes = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ayllu_ledger_allocations_total",
			Help: "allocation requests by outcome",
		},
		[]string{"outcome"},
	)
	m.proposalOutcomes = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ayllu_ledger_expansion_proposals_total",
			Help: "finalized and implemented expansion proposals by outcome",
		},
		[]string{"outcome"},
	)
	m.disputeOutcomes = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ayllu_ledger_disputes_total",
			Help: "resolved disputes by resolution path",
		},
		[]string{"outcome"},
	)
}
