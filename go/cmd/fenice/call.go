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
	"github.com/Fantom-foundation/Fenice/go/abi"
	"github.com/Fantom-foundation/Fenice/go/simulator"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

var CallCmd = cli.Command{
	Action: doCall,
	Name:   "call",
	Usage:  "Simulate a single contract call on top of the remote chain state",
	Flags: append([]cli.Flag{
		ToFlag,
		FromFlag,
		SignatureFlag,
		ArgumentsFlag,
		ValueFlag,
		GasFlag,
		StorageFlag,
		OverridesFlag,
		AbiFlag,
	}, stateFlags...),
}

func doCall(context *cli.Context) error {
	target, err := ToFlag.Fetch(context)
	if err != nil {
		return err
	}
	caller, err := FromFlag.Fetch(context)
	if err != nil {
		return err
	}
	value, err := ValueFlag.Fetch(context)
	if err != nil {
		return err
	}
	gas, err := GasFlag.Fetch(context)
	if err != nil {
		return err
	}
	storage, err := StorageFlag.Fetch(context)
	if err != nil {
		return err
	}
	overrides, err := OverridesFlag.Fetch(context)
	if err != nil {
		return err
	}
	contract, err := AbiFlag.Fetch(context)
	if err != nil {
		return err
	}

	sig := SignatureFlag.Fetch(context)
	signature, err := abi.ParseSignature(sig)
	if err != nil {
		return err
	}
	arguments, err := signature.ParseArguments(ArgumentsFlag.Fetch(context))
	if err != nil {
		return err
	}

	// The call is encoded before contacting the node, so invalid calls
	// cause no remote traffic.
	intent := simulator.CallIntent{
		Target:    target,
		Caller:    caller,
		Signature: sig,
		Arguments: arguments,
		Value:     value,
		Contract:  contract,
	}
	transaction, err := simulator.NewEnvironmentBuilder(gas).Build(intent)
	if err != nil {
		return err
	}

	env, err := newEnvironment(context)
	if err != nil {
		return err
	}
	defer env.Close()
	intent.Block = env.block

	db := intent.NewDatabase(env.source)
	if err := overrides.apply(db); err != nil {
		return err
	}
	for _, override := range storage {
		override.apply(db)
	}

	outcome, err := env.simulator.Simulate(context.Context, transaction, db)
	if err != nil {
		return err
	}
	log.Info("Simulated call", "to", target, "block", env.block, "outcome", outcome.Kind, "gas", outcome.GasUsed, "state", db.Stats())
	return printOutcome(context.App.Writer, sig, outcome)
}
