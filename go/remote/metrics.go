// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package remote

import (
	"context"
	"time"

	"github.com/Fantom-foundation/Fenice/go/tosca"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	kindAccount = "account"
	kindStorage = "storage"
)

// WithMetrics wraps the given source such that every fetch is counted and
// timed. The collectors are registered with the given registerer; an error is
// returned if they are already registered there.
func WithMetrics(source Source, registerer prometheus.Registerer) (Source, error) {
	res := &metricsSource{
		source: source,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fenice",
			Subsystem: "remote",
			Name:      "requests_total",
			Help:      "Number of state fetches issued to the remote node.",
		}, []string{"kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fenice",
			Subsystem: "remote",
			Name:      "failures_total",
			Help:      "Number of state fetches that failed.",
		}, []string{"kind"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fenice",
			Subsystem: "remote",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of state fetches.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"kind"}),
	}
	for _, collector := range []prometheus.Collector{res.requests, res.failures, res.latency} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}
	return res, nil
}

type metricsSource struct {
	source   Source
	requests *prometheus.CounterVec
	failures *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

func (s *metricsSource) FetchAccount(ctx context.Context, addr tosca.Address, block BlockReference) (*tosca.AccountInfo, error) {
	defer s.observe(kindAccount, time.Now())
	res, err := s.source.FetchAccount(ctx, addr, block)
	if err != nil {
		s.failures.WithLabelValues(kindAccount).Inc()
	}
	return res, err
}

func (s *metricsSource) FetchStorage(ctx context.Context, addr tosca.Address, key tosca.Key, block BlockReference) (tosca.Word, error) {
	defer s.observe(kindStorage, time.Now())
	res, err := s.source.FetchStorage(ctx, addr, key, block)
	if err != nil {
		s.failures.WithLabelValues(kindStorage).Inc()
	}
	return res, err
}

func (s *metricsSource) observe(kind string, start time.Time) {
	s.requests.WithLabelValues(kind).Inc()
	s.latency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
