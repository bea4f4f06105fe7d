// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package geth runs simulated calls on go-ethereum's EVM implementation.
// Importing the package registers the interpreter under the name "geth".
package geth

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Fantom-foundation/Fenice/go/tosca"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	geth "github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/log"
)

func init() {
	tosca.MustRegisterInterpreterFactory("geth", func(any) (tosca.Interpreter, error) {
		return &gethVm{}, nil
	})
}

type gethVm struct{}

// Defines the newest supported revision for this interpreter implementation
const newestSupportedRevision = tosca.R13_Cancun

// Run executes the top-level call described by the parameters. Nested calls,
// value transfers, and precompiled contracts are handled by the EVM itself,
// operating on the state provided by the parameter's context.
func (m *gethVm) Run(parameters tosca.Parameters) (tosca.Result, error) {
	if parameters.Revision > newestSupportedRevision {
		return tosca.Result{}, &tosca.ErrUnsupportedRevision{Revision: parameters.Revision}
	}
	if parameters.Context == nil {
		return tosca.Result{}, fmt.Errorf("no transaction context provided")
	}
	if parameters.Kind != tosca.Call && parameters.Kind != tosca.StaticCall {
		return tosca.Result{}, fmt.Errorf("unsupported call kind %v", parameters.Kind)
	}

	evm, stateDb := createGethEvm(parameters)
	if parameters.Revision >= tosca.R09_Berlin {
		stateDb.PrepareAccessList(
			common.Address(parameters.Sender),
			(*common.Address)(&parameters.Recipient),
			geth.ActivePrecompiles(evm.ChainConfig().Rules(evm.Context.BlockNumber, evm.Context.Random != nil, evm.Context.Time)),
			toGethAccessList(parameters.AccessList),
		)
	}

	sender := geth.AccountRef(parameters.Sender)
	recipient := common.Address(parameters.Recipient)
	var (
		output  []byte
		gasLeft uint64
		err     error
	)
	if parameters.Static || parameters.Kind == tosca.StaticCall {
		output, gasLeft, err = evm.StaticCall(sender, recipient, parameters.Input, uint64(parameters.Gas))
	} else {
		output, gasLeft, err = evm.Call(sender, recipient, parameters.Input, uint64(parameters.Gas), parameters.Value.ToUint256())
	}

	// State that could not be resolved invalidates whatever the EVM computed.
	if stateErr := parameters.Context.Err(); stateErr != nil {
		log.Debug("Execution aborted due to unavailable state", "err", stateErr)
		return tosca.Result{Halt: tosca.HaltStateAccess}, nil
	}

	result := tosca.Result{
		Output:    output,
		GasLeft:   tosca.Gas(gasLeft),
		GasRefund: tosca.Gas(stateDb.refund),
		Success:   true,
	}

	// If no error is reported, the execution ended with a STOP, RETURN, or SELFDESTRUCT.
	if err == nil {
		return result, nil
	}

	// In case of a revert the result should indicate an unsuccessful execution.
	if errors.Is(err, geth.ErrExecutionReverted) {
		result.Success = false
		result.GasRefund = 0
		return result, nil
	}

	// In case of an issue caused by the code execution, the result should indicate
	// a failed execution but no error should be reported.
	if halt := haltReason(err); halt != tosca.HaltNone {
		return tosca.Result{Success: false, Halt: halt}, nil
	}

	// In all other cases an EVM error should be reported.
	return tosca.Result{}, fmt.Errorf("internal EVM error in geth: %w", err)
}

// haltReason classifies errors caused by the executed code. HaltNone is
// returned for errors unrelated to the code.
func haltReason(err error) tosca.HaltReason {
	switch {
	case errors.Is(err, geth.ErrOutOfGas),
		errors.Is(err, geth.ErrCodeStoreOutOfGas),
		errors.Is(err, geth.ErrGasUintOverflow):
		return tosca.HaltOutOfGas
	case errors.Is(err, geth.ErrInvalidJump):
		return tosca.HaltInvalidJump
	case errors.Is(err, geth.ErrWriteProtection):
		return tosca.HaltWriteProtection
	case errors.Is(err, geth.ErrReturnDataOutOfBounds):
		return tosca.HaltReturnDataOutOfBounds
	case errors.Is(err, geth.ErrInsufficientBalance):
		return tosca.HaltInsufficientBalance
	case errors.Is(err, geth.ErrDepth):
		return tosca.HaltCallDepth
	case errors.Is(err, geth.ErrContractAddressCollision),
		errors.Is(err, geth.ErrMaxCodeSizeExceeded),
		errors.Is(err, geth.ErrMaxInitCodeSizeExceeded),
		errors.Is(err, geth.ErrNonceUintOverflow),
		errors.Is(err, geth.ErrInvalidCode):
		return tosca.HaltOther
	}

	var stackOverflow *geth.ErrStackOverflow
	if errors.As(err, &stackOverflow) {
		return tosca.HaltStackOverflow
	}
	var stackUnderflow *geth.ErrStackUnderflow
	if errors.As(err, &stackUnderflow) {
		return tosca.HaltStackUnderflow
	}
	var invalidOpCode *geth.ErrInvalidOpCode
	if errors.As(err, &invalidOpCode) {
		return tosca.HaltInvalidOpcode
	}
	return tosca.HaltNone
}

func createGethEvm(parameters tosca.Parameters) (*geth.EVM, *stateDbAdapter) {
	chainConfig := MakeChainConfig(
		new(big.Int).SetBytes(parameters.ChainID[:]),
		parameters.Revision,
	)

	// Hashing function used in the context for BLOCKHASH instruction
	getHash := func(num uint64) common.Hash {
		return common.Hash(parameters.Context.GetBlockHash(int64(num)))
	}

	blockCtx := geth.BlockContext{
		BlockNumber: big.NewInt(parameters.BlockNumber),
		Time:        uint64(parameters.Timestamp),
		Coinbase:    common.Address(parameters.Coinbase),
		Difficulty:  big.NewInt(0),
		GasLimit:    uint64(parameters.GasLimit),
		GetHash:     getHash,
		BaseFee:     parameters.BaseFee.ToBig(),
		BlobBaseFee: parameters.BlobBaseFee.ToBig(),
		Transfer:    transferFunc,
		CanTransfer: canTransferFunc,
	}

	if parameters.Revision >= tosca.R11_Paris {
		// Setting the random signals to geth that a post-merge (Paris) revision should be utilized.
		hash := common.Hash(parameters.PrevRandao)
		blockCtx.Random = &hash
	} else {
		blockCtx.Difficulty = new(big.Int).SetBytes(parameters.PrevRandao[:])
	}

	txCtx := geth.TxContext{
		Origin:     common.Address(parameters.Origin),
		GasPrice:   parameters.GasPrice.ToBig(),
		BlobFeeCap: parameters.BlobBaseFee.ToBig(),
	}
	for _, hash := range parameters.BlobHashes {
		txCtx.BlobHashes = append(txCtx.BlobHashes, common.Hash(hash))
	}

	stateDb := NewStateDbAdapter(parameters.Context)
	evm := geth.NewEVM(blockCtx, txCtx, stateDb, &chainConfig, geth.Config{})
	stateDb.evm = evm
	return evm, stateDb
}

func toGethAccessList(list []tosca.AccessTuple) types.AccessList {
	var res types.AccessList
	for _, tuple := range list {
		keys := make([]common.Hash, len(tuple.Keys))
		for i, key := range tuple.Keys {
			keys[i] = common.Hash(key)
		}
		res = append(res, types.AccessTuple{
			Address:     common.Address(tuple.Address),
			StorageKeys: keys,
		})
	}
	return res
}
