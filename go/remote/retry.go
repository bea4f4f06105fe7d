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
	"fmt"
	"time"

	"github.com/Fantom-foundation/Fenice/go/tosca"
	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/log"
)

// WithRetry wraps the given source such that failed fetches are repeated
// according to the back-off policies produced by newBackOff. A fresh policy
// is created for every fetch. Malformed responses and cancelled contexts are
// reported without retrying.
func WithRetry(source Source, newBackOff func() backoff.BackOff) Source {
	return &retrySource{source: source, newBackOff: newBackOff}
}

// ExponentialBackOff produces policies retrying up to the given number of
// times with exponentially growing delays.
func ExponentialBackOff(retries uint64) func() backoff.BackOff {
	return func() backoff.BackOff {
		policy := backoff.NewExponentialBackOff()
		policy.InitialInterval = 100 * time.Millisecond
		policy.MaxInterval = 2 * time.Second
		return backoff.WithMaxRetries(policy, retries)
	}
}

type retrySource struct {
	source     Source
	newBackOff func() backoff.BackOff
}

func (s *retrySource) FetchAccount(ctx context.Context, addr tosca.Address, block BlockReference) (*tosca.AccountInfo, error) {
	return retry(ctx, s.newBackOff(), func() (*tosca.AccountInfo, error) {
		return s.source.FetchAccount(ctx, addr, block)
	}, "address", addr)
}

func (s *retrySource) FetchStorage(ctx context.Context, addr tosca.Address, key tosca.Key, block BlockReference) (tosca.Word, error) {
	return retry(ctx, s.newBackOff(), func() (tosca.Word, error) {
		return s.source.FetchStorage(ctx, addr, key, block)
	}, "address", addr, "key", key)
}

func retry[T any](ctx context.Context, policy backoff.BackOff, fetch func() (T, error), logCtx ...any) (T, error) {
	operation := func() (T, error) {
		res, err := fetch()
		if err != nil && isPermanent(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	}
	notify := func(err error, delay time.Duration) {
		log.Warn("Remote fetch failed, retrying", append(logCtx, "delay", delay, "err", err)...)
	}
	res, err := backoff.RetryNotifyWithData(operation, backoff.WithContext(policy, ctx), notify)
	if err != nil && !errors.Is(err, ErrRemoteUnavailable) {
		err = fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}
	return res, err
}

func isPermanent(err error) bool {
	return errors.Is(err, errMalformedResponse) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
