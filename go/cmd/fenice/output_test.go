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
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/Fantom-foundation/Fenice/go/remote"
	"github.com/Fantom-foundation/Fenice/go/simulator"
	"github.com/Fantom-foundation/Fenice/go/tosca"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	tests := map[string]struct {
		value any
		want  string
	}{
		"big int":     {big.NewInt(-12), "-12"},
		"small int":   {uint32(7), "7"},
		"bool":        {true, "true"},
		"address":     {common.Address{19: 0xaa}, common.Address{19: 0xaa}.Hex()},
		"bytes":       {[]byte{1, 2}, "0x0102"},
		"fixed bytes": {[4]byte{0xde, 0xad, 0xbe, 0xef}, "0xdeadbeef"},
		"string":      {"hi", `"hi"`},
		"list":        {[]*big.Int{big.NewInt(1), big.NewInt(2)}, "[1,2]"},
		"array":       {[2]bool{true, false}, "[true,false]"},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.want, formatValue(test.value))
		})
	}
}

func TestPrintOutcome_PrintsDecodedValues(t *testing.T) {
	output := make([]byte, 96)
	output[31] = 1
	output[63] = 2
	output[95] = 3

	var out bytes.Buffer
	err := printOutcome(&out, "getReserves() returns (uint112,uint112,uint32)", simulator.Outcome{Kind: simulator.Success, Output: output})
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", out.String())
}

func TestPrintOutcome_FailuresAreErrors(t *testing.T) {
	var out bytes.Buffer
	err := printOutcome(&out, "f()", simulator.Outcome{Kind: simulator.Reverted})
	assert.ErrorContains(t, err, "no reason given")

	err = printOutcome(&out, "f()", simulator.Outcome{Kind: simulator.Reverted, Reason: []byte{1, 2}})
	assert.ErrorContains(t, err, "0x0102")

	err = printOutcome(&out, "f()", simulator.Outcome{Kind: simulator.Halted, Halt: tosca.HaltInvalidOpcode})
	assert.ErrorContains(t, err, tosca.HaltInvalidOpcode.String())

	err = printOutcome(&out, "f()", simulator.Outcome{Kind: simulator.Halted, Halt: tosca.HaltStateAccess, Err: remote.ErrRemoteUnavailable})
	assert.True(t, errors.Is(err, remote.ErrRemoteUnavailable))

	assert.Empty(t, out.String())
}
