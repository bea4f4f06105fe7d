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
	"fmt"

	"golang.org/x/crypto/sha3"
)

// EmptyCodeHash is the hash of an empty code, the code hash of every account
// without code.
var EmptyCodeHash = Keccak256(nil)

// Keccak256 computes the Keccak256 hash of the given data as used for code
// hashes in the EVM.
func Keccak256(data []byte) Hash {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	var res Hash
	hasher.Sum(res[:0])
	return res
}

// AccountInfo summarizes the non-storage state of an account at a given block.
type AccountInfo struct {
	Balance  Value
	Nonce    uint64
	CodeHash Hash
	Code     Code
}

// NewAccountInfo creates an account description with a code hash consistent
// with the given code.
func NewAccountInfo(balance Value, nonce uint64, code Code) AccountInfo {
	return AccountInfo{
		Balance:  balance,
		Nonce:    nonce,
		CodeHash: Keccak256(code),
		Code:     bytes.Clone(code),
	}
}

// IsEmpty returns true if the account has no balance, no nonce, and no code.
// Empty accounts are considered to be non-existing.
func (a *AccountInfo) IsEmpty() bool {
	return a.Balance == (Value{}) && a.Nonce == 0 && len(a.Code) == 0
}

// Clone creates an independent copy of the account information.
func (a *AccountInfo) Clone() *AccountInfo {
	if a == nil {
		return nil
	}
	res := *a
	res.Code = bytes.Clone(a.Code)
	return &res
}

// Check verifies the internal consistency of the account information.
func (a *AccountInfo) Check() error {
	if want, got := Keccak256(a.Code), a.CodeHash; want != got {
		return fmt.Errorf("inconsistent code hash, wanted %v, got %v", want, got)
	}
	return nil
}

func (h Hash) String() string {
	return fmt.Sprintf("0x%x", h[:])
}
