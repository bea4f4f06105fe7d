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
	"errors"
	"testing"

	"github.com/Fantom-foundation/Fenice/go/tosca"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMetrics_FetchesAreCounted(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := NewMockSource(ctrl)
	source.EXPECT().FetchAccount(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
	source.EXPECT().FetchStorage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(tosca.Word{}, nil)
	source.EXPECT().FetchStorage(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(tosca.Word{}, errors.New("injected"))

	registry := prometheus.NewRegistry()
	instrumented, err := WithMetrics(source, registry)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := instrumented.FetchAccount(ctx, tosca.Address{}, Latest)
		require.NoError(t, err)
	}
	_, err = instrumented.FetchStorage(ctx, tosca.Address{}, tosca.Key{}, Latest)
	require.NoError(t, err)
	_, err = instrumented.FetchStorage(ctx, tosca.Address{}, tosca.Key{}, Latest)
	require.Error(t, err)

	metrics := instrumented.(*metricsSource)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues(kindAccount)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues(kindStorage)))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.failures.WithLabelValues(kindAccount)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.failures.WithLabelValues(kindStorage)))
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.latency))
}

func TestMetrics_DuplicateRegistrationIsReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := NewMockSource(ctrl)
	registry := prometheus.NewRegistry()

	_, err := WithMetrics(source, registry)
	require.NoError(t, err)
	_, err = WithMetrics(source, registry)
	assert.Error(t, err)
}
