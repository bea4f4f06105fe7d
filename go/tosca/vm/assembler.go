// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package vm lists the EVM instruction set and offers a small assembler for
// hand-written contract code, as used by tests across the module.
package vm

import (
	"fmt"
	"math/bits"

	"github.com/holiman/uint256"
)

// Assemble concatenates the given parts into EVM bytecode. Supported parts
// are OpCode, byte, []byte, and the results of Push and PushBytes. Any other
// type causes a panic, since assembled code is a test fixture and malformed
// input is a programming error.
func Assemble(parts ...any) []byte {
	res := make([]byte, 0, len(parts)*2)
	for _, part := range parts {
		switch p := part.(type) {
		case OpCode:
			res = append(res, byte(p))
		case byte:
			res = append(res, p)
		case []byte:
			res = append(res, p...)
		default:
			panic(fmt.Sprintf("unsupported code element %v of type %T", part, part))
		}
	}
	return res
}

// Push returns the shortest PUSH instruction placing the given value on the
// stack, followed by its big-endian immediate data. Zero is pushed by PUSH1.
func Push(value uint64) []byte {
	size := (bits.Len64(value) + 7) / 8
	if size == 0 {
		size = 1
	}
	res := make([]byte, 1+size)
	res[0] = byte(PUSH1) + byte(size-1)
	for i := size; i > 0; i-- {
		res[i] = byte(value)
		value >>= 8
	}
	return res
}

// PushWord is like Push for values of up to 256 bits.
func PushWord(value *uint256.Int) []byte {
	data := value.Bytes()
	if len(data) == 0 {
		data = []byte{0}
	}
	return PushBytes(data)
}

// PushBytes returns a PUSH instruction with the given immediate data, which
// must be between 1 and 32 bytes long.
func PushBytes(data []byte) []byte {
	if len(data) == 0 || len(data) > 32 {
		panic(fmt.Sprintf("invalid push data length %d", len(data)))
	}
	res := make([]byte, 0, 1+len(data))
	res = append(res, byte(PUSH1)+byte(len(data)-1))
	return append(res, data...)
}
