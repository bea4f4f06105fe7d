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
	"bytes"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/Fantom-foundation/Fenice/go/remote"
	"github.com/Fantom-foundation/Fenice/go/tosca"
	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/mock/gomock"
)

const pairABI = `[
	{"type":"function","name":"getReserves","inputs":[],"outputs":[
		{"name":"_reserve0","type":"uint112"},
		{"name":"_reserve1","type":"uint112"},
		{"name":"_blockTimestampLast","type":"uint32"}],"stateMutability":"view"},
	{"type":"function","name":"balanceOf","inputs":[{"name":"owner","type":"address"}],
		"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"}
]`

func TestEnvironmentBuilder_BuildsCallTransaction(t *testing.T) {
	owner := common.Address{0x12}
	intent := CallIntent{
		Target:    pool,
		Caller:    tosca.Address{0x01},
		Signature: "function balanceOf(address owner) external view returns (uint256)",
		Arguments: []any{owner},
		Value:     tosca.NewValue(7),
	}

	transaction, err := NewEnvironmentBuilder(1_000_000).Build(intent)
	if err != nil {
		t.Fatalf("failed to build transaction: %v", err)
	}

	if want, got := intent.Caller, transaction.Sender; want != got {
		t.Errorf("unexpected sender, wanted %v, got %v", want, got)
	}
	if transaction.Recipient == nil || *transaction.Recipient != pool {
		t.Errorf("unexpected recipient %v", transaction.Recipient)
	}
	if want, got := intent.Value, transaction.Value; want != got {
		t.Errorf("unexpected value, wanted %v, got %v", want, got)
	}
	if want, got := tosca.Gas(1_000_000), transaction.GasLimit; want != got {
		t.Errorf("unexpected gas limit, wanted %d, got %d", want, got)
	}

	want := append([]byte{0x70, 0xa0, 0x82, 0x31}, common.LeftPadBytes(owner[:], 32)...)
	if !bytes.Equal(want, transaction.Input) {
		t.Errorf("unexpected input, wanted %x, got %x", want, transaction.Input)
	}
}

func TestEnvironmentBuilder_RecipientIsACopy(t *testing.T) {
	intent := CallIntent{Target: pool, Signature: getReserves}
	builder := NewEnvironmentBuilder(DefaultGasLimit)
	first, err := builder.Build(intent)
	if err != nil {
		t.Fatalf("failed to build transaction: %v", err)
	}
	second, err := builder.Build(intent)
	if err != nil {
		t.Fatalf("failed to build transaction: %v", err)
	}
	*first.Recipient = tosca.Address{0x99}
	if *second.Recipient != pool {
		t.Errorf("transactions share their recipient")
	}
}

func TestEnvironmentBuilder_EncodingProblemsAreReported(t *testing.T) {
	contract, err := gethabi.JSON(strings.NewReader(pairABI))
	if err != nil {
		t.Fatalf("failed to parse contract: %v", err)
	}

	tests := map[string]CallIntent{
		"invalid signature": {
			Signature: "getReserves",
		},
		"missing argument": {
			Signature: "balanceOf(address) returns (uint256)",
		},
		"wrong argument type": {
			Signature: "balanceOf(address) returns (uint256)",
			Arguments: []any{big.NewInt(1)},
		},
		"argument exceeding declared width": {
			Signature: "f(uint112 x)",
			Arguments: []any{new(big.Int).Lsh(big.NewInt(1), 200)},
		},
		"too many arguments": {
			Signature: getReserves,
			Arguments: []any{big.NewInt(1)},
		},
		"function not in contract": {
			Signature: "function token0() external view returns (address)",
			Contract:  &contract,
		},
		"parameters differ from contract": {
			Signature: "balanceOf(uint256) returns (uint256)",
			Arguments: []any{big.NewInt(1)},
			Contract:  &contract,
		},
	}

	for name, intent := range tests {
		t.Run(name, func(t *testing.T) {
			intent.Target = pool
			_, err := NewEnvironmentBuilder(DefaultGasLimit).Build(intent)
			if !errors.Is(err, ErrEncoding) {
				t.Errorf("expected encoding error, got %v", err)
			}
		})
	}
}

func TestEnvironmentBuilder_FunctionsOfContractAreAccepted(t *testing.T) {
	contract, err := gethabi.JSON(strings.NewReader(pairABI))
	if err != nil {
		t.Fatalf("failed to parse contract: %v", err)
	}
	intent := CallIntent{Target: pool, Signature: getReserves, Contract: &contract}
	if _, err := NewEnvironmentBuilder(DefaultGasLimit).Build(intent); err != nil {
		t.Errorf("failed to build transaction: %v", err)
	}
}

func TestCallIntent_NewDatabaseUsesBlockOfIntent(t *testing.T) {
	source := remote.NewMockSource(gomock.NewController(t))
	intent := CallIntent{Block: remote.NewBlockReference(1234)}
	if want, got := intent.Block, intent.NewDatabase(source).Block(); want != got {
		t.Errorf("unexpected block, wanted %v, got %v", want, got)
	}
	if want, got := remote.Latest, (CallIntent{}).NewDatabase(source).Block(); want != got {
		t.Errorf("unexpected default block, wanted %v, got %v", want, got)
	}
}

func TestSimulator_NonexistentFunctionFailsBeforeAnyFetch(t *testing.T) {
	contract, err := gethabi.JSON(strings.NewReader(pairABI))
	if err != nil {
		t.Fatalf("failed to parse contract: %v", err)
	}
	// The source has no expectations, any fetch fails the test.
	source := remote.NewMockSource(gomock.NewController(t))
	intent := CallIntent{
		Target:    pool,
		Signature: "function skim(address to) external",
		Arguments: []any{common.Address{}},
		Contract:  &contract,
	}
	db := intent.NewDatabase(source)
	db.SetStorageOverride(pool, reserveSlot, reserveWord)

	if _, err := NewEnvironmentBuilder(DefaultGasLimit).Build(intent); !errors.Is(err, ErrEncoding) {
		t.Fatalf("expected encoding error, got %v", err)
	}
	if want, got := 0, db.Stats().Fetches(); want != got {
		t.Errorf("unexpected number of fetches, wanted %d, got %d", want, got)
	}
}
