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
	"fmt"

	"github.com/Fantom-foundation/Fenice/go/abi"
	"github.com/Fantom-foundation/Fenice/go/remote"
	"github.com/Fantom-foundation/Fenice/go/state"
	"github.com/Fantom-foundation/Fenice/go/tosca"
	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

// DefaultGasLimit is the gas allowance of simulated calls. It is far beyond
// what any view function needs but still bounds runaway executions.
const DefaultGasLimit tosca.Gas = 50_000_000

const ErrEncoding = tosca.ConstError("failed to encode call")

// CallIntent describes a single contract call to be simulated.
type CallIntent struct {
	Target    tosca.Address
	Caller    tosca.Address
	Signature string // e.g. "function getReserves() external view returns (uint112,uint112,uint32)"
	Arguments []any
	Value     tosca.Value
	Block     remote.BlockReference // the zero value refers to the latest block

	// Contract is an optional ABI the signature is checked against.
	Contract *gethabi.ABI
}

// NewDatabase creates an empty override database resolving missing state
// from the given source at the block of this intent.
func (i CallIntent) NewDatabase(source remote.Source) *state.OverrideDatabase {
	return state.NewOverrideDatabase(source, i.Block)
}

// EnvironmentBuilder turns call intents into transactions.
type EnvironmentBuilder struct {
	gasLimit tosca.Gas
}

func NewEnvironmentBuilder(gasLimit tosca.Gas) *EnvironmentBuilder {
	return &EnvironmentBuilder{gasLimit: gasLimit}
}

// Build encodes the call described by the intent into a transaction. Any
// problem with the signature or the arguments is reported as ErrEncoding.
func (b *EnvironmentBuilder) Build(intent CallIntent) (tosca.Transaction, error) {
	signature, err := abi.ParseSignature(intent.Signature)
	if err != nil {
		return tosca.Transaction{}, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	if intent.Contract != nil {
		if err := signature.CheckAgainst(intent.Contract); err != nil {
			return tosca.Transaction{}, fmt.Errorf("%w: %w", ErrEncoding, err)
		}
	}
	input, err := signature.Encode(intent.Arguments...)
	if err != nil {
		return tosca.Transaction{}, fmt.Errorf("%w: arguments of %s: %w", ErrEncoding, signature, err)
	}

	recipient := intent.Target
	return tosca.Transaction{
		Sender:    intent.Caller,
		Recipient: &recipient,
		Input:     input,
		Value:     intent.Value,
		GasLimit:  b.gasLimit,
	}, nil
}
