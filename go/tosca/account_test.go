// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package tosca

import (
	"bytes"
	"testing"
)

func TestKeccak256_EmptyCodeHash(t *testing.T) {
	// well known hash of the empty byte sequence
	want := Hash{
		0xc5, 0xd2, 0x46, 0x01, 0x86, 0xf7, 0x23, 0x3c,
		0x92, 0x7e, 0x7d, 0xb2, 0xdc, 0xc7, 0x03, 0xc0,
		0xe5, 0x00, 0xb6, 0x53, 0xca, 0x82, 0x27, 0x3b,
		0x7b, 0xfa, 0xd8, 0x04, 0x5d, 0x85, 0xa4, 0x70,
	}
	if got := EmptyCodeHash; want != got {
		t.Errorf("unexpected empty code hash, wanted %v, got %v", want, got)
	}
}

func TestAccountInfo_NewAccountInfoIsConsistent(t *testing.T) {
	code := Code{0x60, 0x00, 0x60, 0x00, 0xf3}
	info := NewAccountInfo(NewValue(12), 3, code)
	if err := info.Check(); err != nil {
		t.Errorf("fresh account info is inconsistent: %v", err)
	}

	code[0] = 0xfe
	if !bytes.Equal(info.Code, Code{0x60, 0x00, 0x60, 0x00, 0xf3}) {
		t.Errorf("account info must not alias the provided code")
	}

	info.CodeHash = Hash{}
	if err := info.Check(); err == nil {
		t.Errorf("inconsistent code hash should be detected")
	}
}

func TestAccountInfo_IsEmpty(t *testing.T) {
	tests := map[string]struct {
		info  AccountInfo
		empty bool
	}{
		"zero":         {NewAccountInfo(Value{}, 0, nil), true},
		"with balance": {NewAccountInfo(NewValue(1), 0, nil), false},
		"with nonce":   {NewAccountInfo(Value{}, 1, nil), false},
		"with code":    {NewAccountInfo(Value{}, 0, Code{0}), false},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if want, got := test.empty, test.info.IsEmpty(); want != got {
				t.Errorf("unexpected result, wanted %t, got %t", want, got)
			}
		})
	}
}

func TestAccountInfo_CloneIsIndependent(t *testing.T) {
	var nilInfo *AccountInfo
	if nilInfo.Clone() != nil {
		t.Errorf("clone of nil should be nil")
	}

	info := NewAccountInfo(NewValue(1), 2, Code{1, 2, 3})
	clone := info.Clone()
	clone.Code[0] = 42
	clone.Nonce = 7
	if info.Code[0] != 1 || info.Nonce != 2 {
		t.Errorf("modification of clone affected original")
	}
}
