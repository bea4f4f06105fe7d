// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Fantom-foundation/Fenice/go/abi"
	"github.com/Fantom-foundation/Fenice/go/simulator"
	"github.com/Fantom-foundation/Fenice/go/tosca"
	"github.com/dsnet/golib/unitconv"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

var BatchCmd = cli.Command{
	Action:    doBatch,
	Name:      "batch",
	Usage:     "Simulate all calls listed in a YAML file concurrently",
	ArgsUsage: "<file>",
	Flags: append([]cli.Flag{
		JobsFlag,
		GasFlag,
	}, stateFlags...),
}

// batch is the YAML description of a list of independent calls.
type batch struct {
	Calls []batchCall `yaml:"calls"`
}

type batchCall struct {
	Name      string    `yaml:"name"`
	To        string    `yaml:"to"`
	From      string    `yaml:"from"`
	Signature string    `yaml:"sig"`
	Args      []string  `yaml:"args"`
	Value     string    `yaml:"value"`
	Overrides overrides `yaml:"overrides"`
}

func parseBatch(reader io.Reader) (batch, error) {
	var res batch
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(&res); err != nil && !errors.Is(err, io.EOF) {
		return batch{}, err
	}
	for i := range res.Calls {
		if res.Calls[i].Name == "" {
			res.Calls[i].Name = fmt.Sprintf("call-%d", i)
		}
	}
	return res, nil
}

func (c batchCall) intent() (simulator.CallIntent, error) {
	target, err := tosca.ParseAddress(c.To)
	if err != nil {
		return simulator.CallIntent{}, fmt.Errorf("invalid target: %w", err)
	}
	var caller tosca.Address
	if c.From != "" {
		if caller, err = tosca.ParseAddress(c.From); err != nil {
			return simulator.CallIntent{}, fmt.Errorf("invalid caller: %w", err)
		}
	}
	var value tosca.Value
	if c.Value != "" {
		if value, err = tosca.ParseValue(c.Value); err != nil {
			return simulator.CallIntent{}, fmt.Errorf("invalid value: %w", err)
		}
	}
	signature, err := abi.ParseSignature(c.Signature)
	if err != nil {
		return simulator.CallIntent{}, err
	}
	arguments, err := signature.ParseArguments(c.Args)
	if err != nil {
		return simulator.CallIntent{}, err
	}
	return simulator.CallIntent{
		Target:    target,
		Caller:    caller,
		Signature: c.Signature,
		Arguments: arguments,
		Value:     value,
	}, nil
}

func doBatch(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one batch file")
	}
	path := context.Args().First()
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	calls, err := parseBatch(file)
	file.Close()
	if err != nil {
		return fmt.Errorf("invalid batch file %s: %w", path, err)
	}
	gas, err := GasFlag.Fetch(context)
	if err != nil {
		return err
	}

	env, err := newEnvironment(context)
	if err != nil {
		return err
	}
	defer env.Close()

	// Calls that can not be prepared are reported without being simulated.
	failures := make([]error, len(calls.Calls))
	jobs := make([]simulator.Job, 0, len(calls.Calls))
	positions := make([]int, 0, len(calls.Calls))
	builder := simulator.NewEnvironmentBuilder(gas)
	for i, call := range calls.Calls {
		job, err := prepareJob(call, builder, env)
		if err != nil {
			failures[i] = err
			continue
		}
		jobs = append(jobs, job)
		positions = append(positions, i)
	}

	start := time.Now()
	results, err := simulator.SimulateAll(context.Context, env.simulator, jobs, JobsFlag.Fetch(context))
	if err != nil {
		return err
	}
	duration := time.Since(start)

	out := context.App.Writer
	for i, result := range results {
		call := calls.Calls[positions[i]]
		if result.Err != nil {
			failures[positions[i]] = result.Err
			continue
		}
		fmt.Fprintf(out, "%s:\n", call.Name)
		if err := printOutcome(out, call.Signature, result.Outcome); err != nil {
			failures[positions[i]] = err
		}
	}

	numFailed := 0
	for i, err := range failures {
		if err != nil {
			fmt.Fprintf(out, "%s: failed: %v\n", calls.Calls[i].Name, err)
			numFailed++
		}
	}

	rate := float64(len(jobs)) / duration.Seconds()
	fmt.Fprintf(out, "Simulated %d calls in %v, ~%s calls per second\n",
		len(jobs), duration.Round(time.Millisecond), unitconv.FormatPrefix(rate, unitconv.SI, 0))
	log.Debug("Batch completed", "calls", len(calls.Calls), "failed", numFailed)

	if numFailed > 0 {
		return fmt.Errorf("%d of %d calls failed", numFailed, len(calls.Calls))
	}
	return nil
}

func prepareJob(call batchCall, builder *simulator.EnvironmentBuilder, env *environment) (simulator.Job, error) {
	intent, err := call.intent()
	if err != nil {
		return simulator.Job{}, err
	}
	intent.Block = env.block
	transaction, err := builder.Build(intent)
	if err != nil {
		return simulator.Job{}, err
	}
	db := intent.NewDatabase(env.source)
	if err := call.Overrides.apply(db); err != nil {
		return simulator.Job{}, err
	}
	return simulator.Job{Transaction: transaction, Database: db}, nil
}
