// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package simulator

import (
	"context"

	"github.com/Fantom-foundation/Fenice/go/state"
	"github.com/Fantom-foundation/Fenice/go/tosca"
	"golang.org/x/sync/errgroup"
)

// Job is a single simulation of a batch. Each job must use its own database.
type Job struct {
	Transaction tosca.Transaction
	Database    *state.OverrideDatabase
}

// JobResult is the outcome of a job, or the error that prevented one.
type JobResult struct {
	Outcome Outcome
	Err     error
}

// SimulateAll runs the given jobs concurrently using at most parallelism
// workers, or one per job if parallelism is not positive. Results are
// reported in the order of the jobs. Failing jobs do not stop the others;
// the returned error is only set if ctx got cancelled.
func SimulateAll(ctx context.Context, simulator *Simulator, jobs []Job, parallelism int) ([]JobResult, error) {
	results := make([]JobResult, len(jobs))
	group, groupCtx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		group.SetLimit(parallelism)
	}
	for i, job := range jobs {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			outcome, err := simulator.Simulate(groupCtx, job.Transaction, job.Database)
			results[i] = JobResult{Outcome: outcome, Err: err}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	// Jobs running while ctx got cancelled may have completed with halts.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
