// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package simulator executes single read-only contract calls against a
// state database that combines local overrides with remote chain state.
package simulator

import (
	"context"
	"fmt"

	"github.com/Fantom-foundation/Fenice/go/state"
	"github.com/Fantom-foundation/Fenice/go/tosca"
	"github.com/ethereum/go-ethereum/log"
)

const (
	TxGas                     = 21_000
	TxDataNonZeroGasEIP2028   = 16
	TxDataZeroGasEIP2028      = 4
	TxAccessListAddressGas    = 2400
	TxAccessListStorageKeyGas = 1900
)

// Simulator runs transactions on a given interpreter in the context of a
// fixed block.
type Simulator struct {
	interpreter tosca.Interpreter
	block       tosca.BlockParameters
}

func NewSimulator(interpreter tosca.Interpreter, block tosca.BlockParameters) *Simulator {
	return &Simulator{
		interpreter: interpreter,
		block:       block,
	}
}

// Simulate executes the given transaction exactly once using db as the
// backing state. The database is frozen by this call and may not receive
// further overrides. Failures to resolve state result in a halted outcome;
// an error is only returned if the interpreter itself failed.
func (s *Simulator) Simulate(ctx context.Context, transaction tosca.Transaction, db *state.OverrideDatabase) (Outcome, error) {
	if transaction.Recipient == nil {
		return Outcome{}, fmt.Errorf("contract creation can not be simulated")
	}
	db.Freeze()

	intrinsicGas := setupGasBilling(transaction)
	if transaction.GasLimit < intrinsicGas {
		return Outcome{
			Kind:    Halted,
			Halt:    tosca.HaltOutOfGas,
			GasUsed: transaction.GasLimit,
		}, nil
	}

	context := state.NewTransactionContext(ctx, db)
	result, err := s.interpreter.Run(tosca.Parameters{
		BlockParameters: s.block,
		TransactionParameters: tosca.TransactionParameters{
			Origin:     transaction.Sender,
			GasPrice:   transaction.GasPrice,
			BlobHashes: []tosca.Hash{},
			AccessList: transaction.AccessList,
		},
		Context:   context,
		Kind:      tosca.Call,
		Gas:       transaction.GasLimit - intrinsicGas,
		Recipient: *transaction.Recipient,
		Sender:    transaction.Sender,
		Input:     transaction.Input,
		Value:     transaction.Value,
	})

	// A state failure invalidates whatever the interpreter produced.
	if failure := context.Err(); failure != nil {
		log.Debug("Simulated call aborted", "to", *transaction.Recipient, "err", failure)
		return Outcome{
			Kind:    Halted,
			Halt:    tosca.HaltStateAccess,
			Err:     failure,
			GasUsed: transaction.GasLimit,
		}, nil
	}
	if err != nil {
		return Outcome{}, fmt.Errorf("interpreter failed: %w", err)
	}

	outcome := Outcome{GasUsed: gasUsed(transaction, result, s.block.Revision)}
	switch {
	case result.Success:
		outcome.Kind = Success
		outcome.Output = result.Output
	case result.Halt == tosca.HaltNone:
		outcome.Kind = Reverted
		outcome.Reason = result.Output
	default:
		outcome.Kind = Halted
		outcome.Halt = result.Halt
	}
	log.Debug("Simulated call", "to", *transaction.Recipient, "outcome", outcome.Kind, "gas", outcome.GasUsed)
	return outcome, nil
}

func gasUsed(transaction tosca.Transaction, result tosca.Result, revision tosca.Revision) tosca.Gas {
	used := transaction.GasLimit - result.GasLeft
	if !result.Success {
		return used
	}
	refundQuotient := tosca.Gas(2)
	if revision >= tosca.R10_London {
		refundQuotient = 5
	}
	return used - min(result.GasRefund, used/refundQuotient)
}

func setupGasBilling(transaction tosca.Transaction) tosca.Gas {
	gas := tosca.Gas(TxGas)

	if len(transaction.Input) > 0 {
		nonZeroBytes := tosca.Gas(0)
		for _, inputByte := range transaction.Input {
			if inputByte != 0 {
				nonZeroBytes++
			}
		}
		zeroBytes := tosca.Gas(len(transaction.Input)) - nonZeroBytes
		gas += zeroBytes * TxDataZeroGasEIP2028
		gas += nonZeroBytes * TxDataNonZeroGasEIP2028
	}

	gas += tosca.Gas(len(transaction.AccessList)) * TxAccessListAddressGas
	for _, accessTuple := range transaction.AccessList {
		gas += tosca.Gas(len(accessTuple.Keys)) * TxAccessListStorageKeyGas
	}
	return gas
}
