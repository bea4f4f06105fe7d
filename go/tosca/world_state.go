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

//go:generate mockgen -source world_state.go -destination world_state_mock.go -package tosca

// WorldState is the view of the chain state used while executing a call:
// accounts with a balance, a nonce, optional code and storage. Accessors are
// infallible; implementations resolving values remotely record failures and
// report them through TransactionContext.Err.
type WorldState interface {
	AccountExists(Address) bool

	GetBalance(Address) Value
	SetBalance(Address, Value)

	GetNonce(Address) uint64
	SetNonce(Address, uint64)

	GetCode(Address) Code
	GetCodeHash(Address) Hash
	GetCodeSize(Address) int
	SetCode(Address, Code)

	GetStorage(Address, Key) Word
	SetStorage(Address, Key, Word) StorageStatus

	// SelfDestruct marks addr as destroyed and moves its balance to the
	// beneficiary, which is created if needed. It returns false if addr was
	// already destroyed in this transaction.
	SelfDestruct(addr Address, beneficiary Address) bool
}

// Address is the 20 byte address of an account.
type Address [20]byte

// Key addresses a storage slot.
type Key [32]byte

// Word is the content of a storage slot.
type Word [32]byte

// Value is an amount of wei, big-endian.
type Value [32]byte

// Hash is a Keccak256 hash of code, blocks, or log topics.
type Hash [32]byte

// Code is contract byte code.
type Code []byte
