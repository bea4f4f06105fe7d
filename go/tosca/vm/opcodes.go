// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.


package vm

import "github.com/ethereum/go-ethereum/core/vm"

// OpCode is a single EVM instruction byte. Codes and names are shared with
// go-ethereum so disassembly and traces of fixtures read the same.
type OpCode = vm.OpCode

// Instructions needed by the hand-assembled contracts of this module.
const (
	STOP           OpCode = vm.STOP
	ADD            OpCode = vm.ADD
	EQ             OpCode = vm.EQ
	AND            OpCode = vm.AND
	SHR            OpCode = vm.SHR
	CALLDATALOAD   OpCode = vm.CALLDATALOAD
	CODECOPY       OpCode = vm.CODECOPY
	RETURNDATACOPY OpCode = vm.RETURNDATACOPY
	POP            OpCode = vm.POP
	MSTORE         OpCode = vm.MSTORE
	SLOAD          OpCode = vm.SLOAD
	SSTORE         OpCode = vm.SSTORE
	JUMP           OpCode = vm.JUMP
	JUMPI          OpCode = vm.JUMPI
	JUMPDEST       OpCode = vm.JUMPDEST
	PUSH0          OpCode = vm.PUSH0
	PUSH1          OpCode = vm.PUSH1
	PUSH4          OpCode = vm.PUSH4
	PUSH14         OpCode = vm.PUSH14
	PUSH32         OpCode = vm.PUSH32
	DUP1           OpCode = vm.DUP1
	RETURN         OpCode = vm.RETURN
	REVERT         OpCode = vm.REVERT
	INVALID        OpCode = vm.INVALID
)

// Width returns the number of bytes occupied by op including its immediate
// data.
func Width(op OpCode) int {
	if op.IsPush() {
		return int(op-vm.PUSH0) + 1
	}
	return 1
}
