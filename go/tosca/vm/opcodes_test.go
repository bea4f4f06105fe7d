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

import (
	"bytes"
	"testing"

	"github.com/holiman/uint256"
)

func TestOpCode_NamesMatchInstructionSet(t *testing.T) {
	tests := map[OpCode]string{
		SLOAD:    "SLOAD",
		PUSH4:    "PUSH4",
		JUMPDEST: "JUMPDEST",
		REVERT:   "REVERT",
	}
	for op, want := range tests {
		if got := op.String(); want != got {
			t.Errorf("unexpected name of 0x%02x, wanted %s, got %s", byte(op), want, got)
		}
	}
}

func TestOpCode_InstructionsAreAssembledAsSingleBytes(t *testing.T) {
	// The constants are passed as interface values, so any of them not being
	// an OpCode makes Assemble panic.
	code := Assemble(
		STOP, ADD, EQ, AND, SHR, CALLDATALOAD, CODECOPY, RETURNDATACOPY, POP,
		MSTORE, SLOAD, SSTORE, JUMP, JUMPI, JUMPDEST, PUSH0, PUSH1, PUSH4,
		PUSH14, PUSH32, DUP1, RETURN, REVERT, INVALID,
	)
	want := []byte{
		0x00, 0x01, 0x14, 0x16, 0x1c, 0x35, 0x39, 0x3e, 0x50,
		0x52, 0x54, 0x55, 0x56, 0x57, 0x5b, 0x5f, 0x60, 0x63,
		0x6d, 0x7f, 0x80, 0xf3, 0xfd, 0xfe,
	}
	if !bytes.Equal(want, code) {
		t.Errorf("unexpected code, wanted %x, got %x", want, code)
	}
}

func TestOpCode_Width(t *testing.T) {
	tests := map[OpCode]int{
		STOP:   1,
		PUSH0:  1,
		PUSH1:  2,
		PUSH4:  5,
		PUSH14: 15,
		PUSH32: 33,
		DUP1:   1,
		RETURN: 1,
	}
	for op, want := range tests {
		if got := Width(op); want != got {
			t.Errorf("unexpected width of 0x%02x, wanted %d, got %d", byte(op), want, got)
		}
	}
}

func TestAssemble_ConcatenatesElements(t *testing.T) {
	code := Assemble(
		PUSH1, byte(0), CALLDATALOAD,
		Push(0x0902f1ac),
		[]byte{0x01, 0x02},
		STOP,
	)
	want := []byte{0x60, 0x00, 0x35, 0x63, 0x09, 0x02, 0xf1, 0xac, 0x01, 0x02, 0x00}
	if !bytes.Equal(want, code) {
		t.Errorf("unexpected code, wanted %x, got %x", want, code)
	}
}

func TestAssemble_PanicsOnUnsupportedElements(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic")
		}
	}()
	Assemble("PUSH1")
}

func TestPush_UsesShortestInstruction(t *testing.T) {
	tests := map[string]struct {
		value uint64
		want  []byte
	}{
		"zero":      {0, []byte{0x60, 0x00}},
		"one byte":  {0xe0, []byte{0x60, 0xe0}},
		"two bytes": {0x0100, []byte{0x61, 0x01, 0x00}},
		"max":       {^uint64(0), []byte{0x67, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Push(test.value); !bytes.Equal(test.want, got) {
				t.Errorf("unexpected push, wanted %x, got %x", test.want, got)
			}
		})
	}
}

func TestPushWord_HandlesWideValues(t *testing.T) {
	mask := new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 112), uint256.NewInt(1))
	got := PushWord(mask)
	if want, got := 15, len(got); want != got {
		t.Fatalf("unexpected length, wanted %d, got %d", want, got)
	}
	if want, got := byte(PUSH14), got[0]; want != got {
		t.Errorf("unexpected instruction, wanted 0x%02x, got 0x%02x", want, got)
	}
	if want, got := []byte{0x60, 0x00}, PushWord(new(uint256.Int)); !bytes.Equal(want, got) {
		t.Errorf("unexpected push of zero, wanted %x, got %x", want, got)
	}
}

func TestPushBytes_RejectsInvalidLengths(t *testing.T) {
	for _, size := range []int{0, 33} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("expected a panic for %d bytes", size)
				}
			}()
			PushBytes(make([]byte, size))
		}()
	}
}
