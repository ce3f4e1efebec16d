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

package badger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const badgerMetricNamePrefix = "database_blob_"

type blobMetrics struct {
	readsTotal   prometheus.Counter
	writesTotal  prometheus.Counter
	bytesRead    prometheus.Counter
	bytesWritten prometheus.Counter
}

func (d *BlobStoreBadger) registerBlobMetrics() {
	promautoFactory := promauto.With(d.promRegistry)
	d.metrics = &blobMetrics{
		readsTotal: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: badgerMetricNamePrefix + "reads_total",
			Help: "Total number of badger blob reads",
		}),
		writesTotal: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: badgerMetricNamePrefix + "writes_total",
			Help: "Total number of badger blob writes",
		}),
		bytesRead: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: badgerMetricNamePrefix + "read_bytes_total",
			Help: "Total bytes read from badger blob values",
		}),
		bytesWritten: promautoFactory.NewCounter(prometheus.CounterOpts{
			Name: badgerMetricNamePrefix + "written_bytes_total",
			Help: "Total bytes written to badger blob values",
		}),
	}
	promautoFactory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: badgerMetricNamePrefix + "lsm_size_bytes",
			Help: "Size of the badger LSM tree",
		},
		func() float64 {
			lsm, _ := d.db.Size()
			return float64(lsm)
		},
	)
	promautoFactory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: badgerMetricNamePrefix + "vlog_size_bytes",
			Help: "Size of the badger value log",
		},
		func() float64 {
			_, vlog := d.db.Size()
			return float64(vlog)
		},
	)
}

func (m *blobMetrics) observeRead(size int) {
	if m == nil {
		return
	}
	m.readsTotal.Inc()
	m.bytesRead.Add(float64(size))
}

func (m *blobMetrics) observeWrite(size int) {
	if m == nil {
		return
	}
	m.writesTotal.Inc()
	m.bytesWritten.Add(float64(size))
}
