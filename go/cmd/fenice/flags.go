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
	"fmt"
	"os"
	"runtime"

	"github.com/Fantom-foundation/Fenice/go/remote"
	"github.com/Fantom-foundation/Fenice/go/simulator"
	"github.com/Fantom-foundation/Fenice/go/tosca"
	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/maps"
)

type rpcFlagType struct {
	cli.StringFlag
}

var RpcFlag = &rpcFlagType{
	cli.StringFlag{
		Name:     "rpc",
		Usage:    "URL of the node providing the chain state",
		EnvVars:  []string{"FENICE_RPC"},
		Required: true,
	},
}

func (f *rpcFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type addressFlagType struct {
	cli.StringFlag
}

var ToFlag = &addressFlagType{
	cli.StringFlag{
		Name:     "to",
		Usage:    "address of the called contract",
		Required: true,
	},
}

var FromFlag = &addressFlagType{
	cli.StringFlag{
		Name:  "from",
		Usage: "address of the caller",
		Value: tosca.Address{}.String(),
	},
}

func (f *addressFlagType) Fetch(context *cli.Context) (tosca.Address, error) {
	addr, err := tosca.ParseAddress(context.String(f.Name))
	if err != nil {
		return tosca.Address{}, fmt.Errorf("invalid --%s: %w", f.Name, err)
	}
	return addr, nil
}

type signatureFlagType struct {
	cli.StringFlag
}

var SignatureFlag = &signatureFlagType{
	cli.StringFlag{
		Name:     "sig",
		Usage:    `signature of the called function, e.g. "getReserves() returns (uint112,uint112,uint32)"`,
		Required: true,
	},
}

func (f *signatureFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type argumentsFlagType struct {
	cli.StringSliceFlag
}

var ArgumentsFlag = &argumentsFlagType{
	cli.StringSliceFlag{
		Name:  "arg",
		Usage: "argument of the call, repeated for each parameter; lists are written as [a,b]",
	},
}

func (f *argumentsFlagType) Fetch(context *cli.Context) []string {
	return context.StringSlice(f.Name)
}

type valueFlagType struct {
	cli.StringFlag
}

var ValueFlag = &valueFlagType{
	cli.StringFlag{
		Name:  "value",
		Usage: "amount of wei sent along with the call, decimal or 0x-prefixed hex",
		Value: "0",
	},
}

func (f *valueFlagType) Fetch(context *cli.Context) (tosca.Value, error) {
	value, err := tosca.ParseValue(context.String(f.Name))
	if err != nil {
		return tosca.Value{}, fmt.Errorf("invalid --%s: %w", f.Name, err)
	}
	return value, nil
}

type blockFlagType struct {
	cli.StringFlag
}

var BlockFlag = &blockFlagType{
	cli.StringFlag{
		Name:  "block",
		Usage: "block whose state is used: a number or one of latest, pending, safe, finalized, earliest",
		Value: "latest",
	},
}

func (f *blockFlagType) Fetch(context *cli.Context) (remote.BlockReference, error) {
	return remote.ParseBlockReference(context.String(f.Name))
}

type pinFlagType struct {
	cli.BoolFlag
}

var PinFlag = &pinFlagType{
	cli.BoolFlag{
		Name:  "pin",
		Usage: "resolve a symbolic --block to a concrete number before reading any state",
	},
}

func (f *pinFlagType) Fetch(context *cli.Context) bool {
	return context.Bool(f.Name)
}

type storageFlagType struct {
	cli.StringSliceFlag
}

var StorageFlag = &storageFlagType{
	cli.StringSliceFlag{
		Name:  "storage",
		Usage: "storage override in the form <address>:<slot>=<value>",
	},
}

func (f *storageFlagType) Fetch(context *cli.Context) ([]storageOverride, error) {
	var res []storageOverride
	for _, text := range context.StringSlice(f.Name) {
		override, err := parseStorageOverride(text)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s: %w", f.Name, err)
		}
		res = append(res, override)
	}
	return res, nil
}

type overridesFlagType struct {
	cli.StringFlag
}

var OverridesFlag = &overridesFlagType{
	cli.StringFlag{
		Name:      "overrides",
		Usage:     "YAML file describing account and storage overrides",
		TakesFile: true,
	},
}

func (f *overridesFlagType) Fetch(context *cli.Context) (overrides, error) {
	path := context.String(f.Name)
	if path == "" {
		return overrides{}, nil
	}
	return loadOverrides(path)
}

type abiFlagType struct {
	cli.StringFlag
}

var AbiFlag = &abiFlagType{
	cli.StringFlag{
		Name:      "abi",
		Usage:     "JSON ABI of the target contract, calls of functions it lacks are rejected",
		TakesFile: true,
	},
}

// Fetch loads the contract ABI, or returns nil if none was given.
func (f *abiFlagType) Fetch(context *cli.Context) (*gethabi.ABI, error) {
	path := context.String(f.Name)
	if path == "" {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	contract, err := gethabi.JSON(file)
	if err != nil {
		return nil, fmt.Errorf("invalid ABI in %s: %w", path, err)
	}
	return &contract, nil
}

type revisionFlagType struct {
	cli.StringFlag
}

var RevisionFlag = &revisionFlagType{
	cli.StringFlag{
		Name:  "revision",
		Usage: "EVM revision used for executing the call",
		Value: tosca.NewestRevision.String(),
	},
}

func (f *revisionFlagType) Fetch(context *cli.Context) (tosca.Revision, error) {
	return tosca.ParseRevision(context.String(f.Name))
}

type gasFlagType struct {
	cli.Int64Flag
}

var GasFlag = &gasFlagType{
	cli.Int64Flag{
		Name:  "gas",
		Usage: "gas limit of the simulated call",
		Value: int64(simulator.DefaultGasLimit),
	},
}

func (f *gasFlagType) Fetch(context *cli.Context) (tosca.Gas, error) {
	gas := context.Int64(f.Name)
	if gas <= 0 {
		return 0, fmt.Errorf("invalid --%s: must be positive", f.Name)
	}
	return tosca.Gas(gas), nil
}

type interpreterFlagType struct {
	cli.StringFlag
}

var InterpreterFlag = &interpreterFlagType{
	cli.StringFlag{
		Name:  "interpreter",
		Usage: "name of the interpreter executing the call",
		Value: "geth",
	},
}

func (f *interpreterFlagType) Fetch(context *cli.Context) (tosca.Interpreter, error) {
	name := context.String(f.Name)
	if tosca.GetInterpreterFactory(name) == nil {
		return nil, fmt.Errorf("invalid interpreter %q, use one of: %v", name, maps.Keys(tosca.GetAllRegisteredInterpreters()))
	}
	return tosca.NewInterpreter(name)
}

type retriesFlagType struct {
	cli.Uint64Flag
}

var RetriesFlag = &retriesFlagType{
	cli.Uint64Flag{
		Name:  "retries",
		Usage: "number of times a failed state request is retried",
		Value: 3,
	},
}

func (f *retriesFlagType) Fetch(context *cli.Context) uint64 {
	return context.Uint64(f.Name)
}

type jobsFlagType struct {
	cli.IntFlag
}

var JobsFlag = &jobsFlagType{
	cli.IntFlag{
		Name:    "jobs",
		Aliases: []string{"j"},
		Usage:   "number of calls simulated simultaneously",
		Value:   runtime.NumCPU(),
	},
}

func (f *jobsFlagType) Fetch(context *cli.Context) int {
	return context.Int(f.Name)
}

type metricsAddrFlagType struct {
	cli.StringFlag
}

var MetricsAddrFlag = &metricsAddrFlagType{
	cli.StringFlag{
		Name:  "metrics.addr",
		Usage: "if set, state request metrics are served on this address",
	},
}

func (f *metricsAddrFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type verbosityFlagType struct {
	cli.IntFlag
}

var VerbosityFlag = &verbosityFlagType{
	cli.IntFlag{
		Name:  "verbosity",
		Usage: "logging verbosity: 0=critical, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: 3,
	},
}

func (f *verbosityFlagType) Fetch(context *cli.Context) int {
	return context.Int(f.Name)
}

// stateFlags are the flags of all commands reading remote state.
var stateFlags = []cli.Flag{
	RpcFlag,
	BlockFlag,
	PinFlag,
	RevisionFlag,
	InterpreterFlag,
	RetriesFlag,
	MetricsAddrFlag,
}
