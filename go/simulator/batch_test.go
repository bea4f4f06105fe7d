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
	"errors"
	"math/big"
	"testing"

	"github.com/Fantom-foundation/Fenice/go/remote"
	"github.com/Fantom-foundation/Fenice/go/state"
	"github.com/Fantom-foundation/Fenice/go/tosca"
	"go.uber.org/mock/gomock"
)

func TestSimulateAll_JobsAreIsolated(t *testing.T) {
	source := remote.NewMockSource(gomock.NewController(t))
	source.EXPECT().FetchAccount(gomock.Any(), caller, remote.Latest).Return(nil, nil).AnyTimes()

	const numJobs = 8
	jobs := make([]Job, 0, numJobs)
	for i := 0; i < numJobs; i++ {
		db := state.NewOverrideDatabase(source, remote.Latest)
		db.SetAccountOverride(pool, tosca.NewAccountInfo(tosca.Value{}, 0, poolCode()))
		db.SetStorageOverride(pool, reserveSlot, tosca.Word(tosca.NewValue(uint64(i))))
		jobs = append(jobs, Job{Transaction: buildCall(t, getReserves), Database: db})
	}

	results, err := SimulateAll(context.Background(), newSimulator(t), jobs, 3)
	if err != nil {
		t.Fatalf("failed to run jobs: %v", err)
	}
	if want, got := numJobs, len(results); want != got {
		t.Fatalf("unexpected number of results, wanted %d, got %d", want, got)
	}
	for i, result := range results {
		if result.Err != nil {
			t.Fatalf("job %d failed: %v", i, result.Err)
		}
		values, err := Decode(getReserves, result.Outcome)
		if err != nil {
			t.Fatalf("failed to decode result of job %d: %v", i, err)
		}
		if want, got := big.NewInt(int64(i)), values[0].(*big.Int); want.Cmp(got) != 0 {
			t.Errorf("job %d observed reserve %v", i, got)
		}
	}
}

func TestSimulateAll_FailingJobsDoNotStopOthers(t *testing.T) {
	source := remote.NewMockSource(gomock.NewController(t))
	source.EXPECT().FetchAccount(gomock.Any(), caller, remote.Latest).Return(nil, nil).AnyTimes()

	good := state.NewOverrideDatabase(source, remote.Latest)
	good.SetAccountOverride(pool, tosca.NewAccountInfo(tosca.Value{}, 0, poolCode()))
	good.SetStorageOverride(pool, reserveSlot, reserveWord)

	jobs := []Job{
		{Transaction: tosca.Transaction{GasLimit: DefaultGasLimit}, Database: state.NewOverrideDatabase(source, remote.Latest)},
		{Transaction: buildCall(t, getReserves), Database: good},
	}
	results, err := SimulateAll(context.Background(), newSimulator(t), jobs, 0)
	if err != nil {
		t.Fatalf("failed to run jobs: %v", err)
	}
	if results[0].Err == nil {
		t.Errorf("job creating a contract should fail")
	}
	if results[1].Err != nil || results[1].Outcome.Kind != Success {
		t.Errorf("unexpected result of second job: %v, %v", results[1].Outcome, results[1].Err)
	}
}

func TestSimulateAll_CancelledContextStopsBatch(t *testing.T) {
	source := remote.NewMockSource(gomock.NewController(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []Job{{Transaction: buildCall(t, getReserves), Database: state.NewOverrideDatabase(source, remote.Latest)}}
	if _, err := SimulateAll(ctx, newSimulator(t), jobs, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation, got %v", err)
	}
}

func TestSimulateAll_CancellationDuringJobsStopsBatch(t *testing.T) {
	source := remote.NewMockSource(gomock.NewController(t))
	ctx, cancel := context.WithCancel(context.Background())
	source.EXPECT().FetchAccount(gomock.Any(), gomock.Any(), remote.Latest).DoAndReturn(
		func(context.Context, tosca.Address, remote.BlockReference) (*tosca.AccountInfo, error) {
			cancel()
			return nil, context.Canceled
		}).AnyTimes()

	// The pool account is resolved remotely, so the job runs into the
	// cancellation while executing.
	db := state.NewOverrideDatabase(source, remote.Latest)
	jobs := []Job{{Transaction: buildCall(t, getReserves), Database: db}}
	if _, err := SimulateAll(ctx, newSimulator(t), jobs, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation, got %v", err)
	}
}
