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

package governance

import (
	"context"
	"time"

	"github.com/blinklabs-io/agora/database"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type engineMetrics struct {
	calls           *prometheus.CounterVec
	callDuration    *prometheus.HistogramVec
	admins          *prometheus.GaugeVec
	ballots         *prometheus.GaugeVec
	voters          *prometheus.GaugeVec
	proposalCounter *prometheus.GaugeVec
	journalSeq      prometheus.Gauge
}

func (e *Engine) initMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	e.metrics = &engineMetrics{
		calls: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agora_governance_calls_total",
				Help: "total governance operations by name and result kind",
			},
			[]string{"op", "kind"},
		),
		callDuration: promautoFactory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agora_governance_call_duration_seconds",
				Help:    "governance operation latency",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"op"},
		),
		admins: promautoFactory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "agora_storage_admins",
				Help: "size of the admin set",
			},
			[]string{"storage"},
		),
		ballots: promautoFactory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "agora_storage_ballots",
				Help: "number of registered ballots",
			},
			[]string{"storage"},
		),
		voters: promautoFactory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "agora_storage_voters",
				Help: "number of registered voters",
			},
			[]string{"storage"},
		),
		proposalCounter: promautoFactory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "agora_safe_controller_proposal_counter",
				Help: "outbound governance actions forwarded to the safe manager",
			},
			[]string{"safe_controller"},
		),
		journalSeq: promautoFactory.NewGauge(
			prometheus.GaugeOpts{
				Name: "agora_journal_seq",
				Help: "sequence number of the last committed operation",
			},
		),
	}
}

func (m *engineMetrics) observeCall(op string, err error, start time.Time) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(op, KindOf(err)).Inc()
	m.callDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// RefreshGauges sets the state gauges of a Storage and a SafeController from
// their persisted state. It is a no-op when no registry was configured.
func (e *Engine) RefreshGauges(
	ctx context.Context,
	storage common.Address,
	safeController common.Address,
) error {
	if e.metrics == nil {
		return nil
	}
	return e.view(ctx, "RefreshGauges", func(txn *database.Txn) error {
		storageState, err := loadStorageState(e.db, txn, storage)
		if err != nil {
			return err
		}
		admins, err := e.db.CountAdmins(storage.Bytes(), txn)
		if err != nil {
			return err
		}
		safeState, err := e.SafeController(safeController).load(txn)
		if err != nil {
			return err
		}
		label := storage.Hex()
		e.metrics.admins.WithLabelValues(label).Set(float64(admins))
		e.metrics.ballots.WithLabelValues(label).Set(float64(storageState.BallotCount))
		e.metrics.voters.WithLabelValues(label).Set(float64(storageState.VoterCount))
		e.metrics.proposalCounter.WithLabelValues(safeController.Hex()).
			Set(float64(safeState.ProposalCounter))
		return nil
	})
}
