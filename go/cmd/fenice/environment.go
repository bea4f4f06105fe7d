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
	"net"
	"net/http"
	"os"

	_ "github.com/Fantom-foundation/Fenice/go/interpreter/geth"
	"github.com/Fantom-foundation/Fenice/go/remote"
	"github.com/Fantom-foundation/Fenice/go/simulator"
	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

// environment bundles the remote state access and the simulator shared by
// all calls of a command.
type environment struct {
	rpc       *remote.RpcSource
	source    remote.Source
	block     remote.BlockReference
	simulator *simulator.Simulator
	registry  *prometheus.Registry
	metrics   *http.Server
}

func newEnvironment(context *cli.Context) (*environment, error) {
	interpreter, err := InterpreterFlag.Fetch(context)
	if err != nil {
		return nil, err
	}
	revision, err := RevisionFlag.Fetch(context)
	if err != nil {
		return nil, err
	}
	block, err := BlockFlag.Fetch(context)
	if err != nil {
		return nil, err
	}

	rpc, err := remote.DialRpcSource(context.Context, RpcFlag.Fetch(context))
	if err != nil {
		return nil, err
	}
	env := &environment{rpc: rpc, registry: prometheus.NewRegistry()}

	if PinFlag.Fetch(context) {
		pinned, err := rpc.Pin(context.Context, block)
		if err != nil {
			env.Close()
			return nil, err
		}
		log.Info("Pinned block", "block", block, "number", pinned)
		block = pinned
	}
	env.block = block

	params, err := rpc.FetchBlockParameters(context.Context, block, revision)
	if err != nil {
		env.Close()
		return nil, err
	}
	log.Debug("Block parameters", "number", params.BlockNumber, "time", params.Timestamp, "revision", revision)
	env.simulator = simulator.NewSimulator(interpreter, params)

	measured, err := remote.WithMetrics(rpc, env.registry)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.source = remote.WithRetry(measured, remote.ExponentialBackOff(RetriesFlag.Fetch(context)))

	if addr := MetricsAddrFlag.Fetch(context); addr != "" {
		if err := env.serveMetrics(addr); err != nil {
			env.Close()
			return nil, err
		}
	}
	return env, nil
}

func (e *environment) serveMetrics(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to serve metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}))
	e.metrics = &http.Server{Handler: mux}
	go func() {
		if err := e.metrics.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Metrics server failed", "err", err)
		}
	}()
	log.Info("Serving metrics", "addr", listener.Addr())
	return nil
}

func (e *environment) Close() {
	if e.metrics != nil {
		e.metrics.Close()
	}
	e.rpc.Close()
}

func setupLogging(verbosity int) {
	handler := log.NewTerminalHandlerWithLevel(os.Stderr, log.FromLegacyLevel(verbosity), false)
	log.SetDefault(log.NewLogger(handler))
}
