// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"bytes"
	"context"
	"slices"

	"github.com/Fantom-foundation/Fenice/go/tosca"
)

// TransactionContext is the mutable view an interpreter operates on while
// executing a simulated call. Reads fall through to the underlying database;
// writes are kept in a journaled buffer and never reach the database. The
// context is discarded with the end of the simulation.
//
// State that cannot be resolved is not reported to the interpreter, since
// the interfaces it operates on have no means to do so. Instead, the first
// failure is recorded and available through Err. Afterwards all reads yield
// zero values without consulting the database again.
type TransactionContext struct {
	ctx context.Context
	db  *OverrideDatabase

	accounts  map[tosca.Address]account
	storage   map[slotKey]tosca.Word
	transient map[slotKey]tosca.Word
	destroyed map[tosca.Address]bool

	accessedAccounts map[tosca.Address]bool
	accessedSlots    map[slotKey]bool

	logs []tosca.Log
	undo []func()
	err  error
}

// account is the local copy of an account modified during the transaction.
type account struct {
	exists   bool
	balance  tosca.Value
	nonce    uint64
	code     tosca.Code
	codeHash tosca.Hash
}

func NewTransactionContext(ctx context.Context, db *OverrideDatabase) *TransactionContext {
	return &TransactionContext{
		ctx:              ctx,
		db:               db,
		accounts:         map[tosca.Address]account{},
		storage:          map[slotKey]tosca.Word{},
		transient:        map[slotKey]tosca.Word{},
		destroyed:        map[tosca.Address]bool{},
		accessedAccounts: map[tosca.Address]bool{},
		accessedSlots:    map[slotKey]bool{},
	}
}

// Err returns the first failure encountered while resolving state, nil if
// all lookups succeeded.
func (c *TransactionContext) Err() error {
	return c.err
}

func (c *TransactionContext) getAccount(addr tosca.Address) account {
	if res, found := c.accounts[addr]; found {
		return res
	}
	if c.err != nil {
		return account{codeHash: tosca.EmptyCodeHash}
	}
	info, err := c.db.GetAccount(c.ctx, addr)
	if err != nil {
		c.err = err
		return account{codeHash: tosca.EmptyCodeHash}
	}
	if info == nil {
		return account{codeHash: tosca.EmptyCodeHash}
	}
	return account{
		exists:   true,
		balance:  info.Balance,
		nonce:    info.Nonce,
		code:     info.Code,
		codeHash: info.CodeHash,
	}
}

func (c *TransactionContext) updateAccount(addr tosca.Address, update func(*account)) {
	original, found := c.accounts[addr]
	modified := c.getAccount(addr)
	modified.exists = true
	update(&modified)
	c.accounts[addr] = modified
	c.undo = append(c.undo, func() {
		if found {
			c.accounts[addr] = original
		} else {
			delete(c.accounts, addr)
		}
	})
}

func (c *TransactionContext) AccountExists(addr tosca.Address) bool {
	return c.getAccount(addr).exists
}

func (c *TransactionContext) GetBalance(addr tosca.Address) tosca.Value {
	return c.getAccount(addr).balance
}

func (c *TransactionContext) SetBalance(addr tosca.Address, value tosca.Value) {
	c.updateAccount(addr, func(a *account) { a.balance = value })
}

func (c *TransactionContext) GetNonce(addr tosca.Address) uint64 {
	return c.getAccount(addr).nonce
}

func (c *TransactionContext) SetNonce(addr tosca.Address, nonce uint64) {
	c.updateAccount(addr, func(a *account) { a.nonce = nonce })
}

func (c *TransactionContext) GetCode(addr tosca.Address) tosca.Code {
	return bytes.Clone(c.getAccount(addr).code)
}

func (c *TransactionContext) GetCodeHash(addr tosca.Address) tosca.Hash {
	res := c.getAccount(addr)
	if !res.exists {
		return tosca.Hash{}
	}
	return res.codeHash
}

func (c *TransactionContext) GetCodeSize(addr tosca.Address) int {
	return len(c.getAccount(addr).code)
}

func (c *TransactionContext) SetCode(addr tosca.Address, code tosca.Code) {
	code = bytes.Clone(code)
	hash := tosca.Keccak256(code)
	c.updateAccount(addr, func(a *account) {
		a.code = code
		a.codeHash = hash
	})
}

// GetCommittedStorage returns the value of a slot before the transaction,
// as resolved by the database.
func (c *TransactionContext) GetCommittedStorage(addr tosca.Address, key tosca.Key) tosca.Word {
	if c.err != nil {
		return tosca.Word{}
	}
	value, err := c.db.GetStorage(c.ctx, addr, key)
	if err != nil {
		c.err = err
		return tosca.Word{}
	}
	return value
}

func (c *TransactionContext) GetStorage(addr tosca.Address, key tosca.Key) tosca.Word {
	if value, found := c.storage[slotKey{addr, key}]; found {
		return value
	}
	return c.GetCommittedStorage(addr, key)
}

func (c *TransactionContext) SetStorage(addr tosca.Address, key tosca.Key, value tosca.Word) tosca.StorageStatus {
	slot := slotKey{addr, key}
	original := c.GetCommittedStorage(addr, key)
	current, written := c.storage[slot]
	if !written {
		current = original
	}
	c.storage[slot] = value
	c.undo = append(c.undo, func() {
		if written {
			c.storage[slot] = current
		} else {
			delete(c.storage, slot)
		}
	})
	return tosca.GetStorageStatus(original, current, value)
}

// SelfDestruct marks addr as destroyed and moves its balance to the
// beneficiary. The account remains accessible until the end of the
// transaction.
func (c *TransactionContext) SelfDestruct(addr tosca.Address, beneficiary tosca.Address) bool {
	first := !c.destroyed[addr]
	if first {
		c.destroyed[addr] = true
		c.undo = append(c.undo, func() { delete(c.destroyed, addr) })
	}
	if addr != beneficiary {
		balance := c.GetBalance(addr)
		c.SetBalance(addr, tosca.Value{})
		c.SetBalance(beneficiary, tosca.Add(c.GetBalance(beneficiary), balance))
	}
	return first
}

func (c *TransactionContext) HasSelfDestructed(addr tosca.Address) bool {
	return c.destroyed[addr]
}

func (c *TransactionContext) CreateSnapshot() tosca.Snapshot {
	return tosca.Snapshot(len(c.undo))
}

func (c *TransactionContext) RestoreSnapshot(snapshot tosca.Snapshot) {
	for len(c.undo) > int(snapshot) {
		c.undo[len(c.undo)-1]()
		c.undo = c.undo[:len(c.undo)-1]
	}
}

func (c *TransactionContext) GetTransientStorage(addr tosca.Address, key tosca.Key) tosca.Word {
	return c.transient[slotKey{addr, key}]
}

func (c *TransactionContext) SetTransientStorage(addr tosca.Address, key tosca.Key, value tosca.Word) {
	slot := slotKey{addr, key}
	original, found := c.transient[slot]
	c.transient[slot] = value
	c.undo = append(c.undo, func() {
		if found {
			c.transient[slot] = original
		} else {
			delete(c.transient, slot)
		}
	})
}

func (c *TransactionContext) AccessAccount(addr tosca.Address) tosca.AccessStatus {
	if c.accessedAccounts[addr] {
		return tosca.WarmAccess
	}
	c.accessedAccounts[addr] = true
	c.undo = append(c.undo, func() { delete(c.accessedAccounts, addr) })
	return tosca.ColdAccess
}

func (c *TransactionContext) AccessStorage(addr tosca.Address, key tosca.Key) tosca.AccessStatus {
	slot := slotKey{addr, key}
	if c.accessedSlots[slot] {
		return tosca.WarmAccess
	}
	c.AccessAccount(addr)
	c.accessedSlots[slot] = true
	c.undo = append(c.undo, func() { delete(c.accessedSlots, slot) })
	return tosca.ColdAccess
}

func (c *TransactionContext) IsAddressInAccessList(addr tosca.Address) bool {
	return c.accessedAccounts[addr]
}

func (c *TransactionContext) IsSlotInAccessList(addr tosca.Address, key tosca.Key) (addressPresent, slotPresent bool) {
	return c.accessedAccounts[addr], c.accessedSlots[slotKey{addr, key}]
}

func (c *TransactionContext) EmitLog(log tosca.Log) {
	size := len(c.logs)
	c.logs = append(c.logs, log)
	c.undo = append(c.undo, func() { c.logs = c.logs[:size] })
}

func (c *TransactionContext) GetLogs() []tosca.Log {
	return slices.Clone(c.logs)
}

// GetBlockHash always returns the zero hash. Historic block hashes are not
// resolved from the remote node.
func (c *TransactionContext) GetBlockHash(int64) tosca.Hash {
	return tosca.Hash{}
}
