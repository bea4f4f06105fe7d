// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package geth

import (
	"github.com/Fantom-foundation/Fenice/go/tosca"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/stateless"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	geth "github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/trie/utils"
	"github.com/holiman/uint256"
)

// transferFunc subtracts amount from sender and adds amount to recipient using the given Db
func transferFunc(stateDB geth.StateDB, callerAddress common.Address, to common.Address, value *uint256.Int) {
	stateDB.SubBalance(callerAddress, value, tracing.BalanceChangeTransfer)
	stateDB.AddBalance(to, value, tracing.BalanceChangeTransfer)
}

// canTransferFunc is the signature of a transfer function
func canTransferFunc(stateDB geth.StateDB, callerAddress common.Address, value *uint256.Int) bool {
	return stateDB.GetBalance(callerAddress).Cmp(value) >= 0
}

// stateDbAdapter adapts the tosca.TransactionContext interface for its usage
// as a geth.StateDB. Refunds and the set of contracts created during the
// transaction are tracked by the adapter, everything else is delegated.
type stateDbAdapter struct {
	context       tosca.TransactionContext
	evm           *geth.EVM
	refund        uint64
	refundBackups map[tosca.Snapshot]uint64
	created       map[tosca.Address]bool
}

func NewStateDbAdapter(context tosca.TransactionContext) *stateDbAdapter {
	return &stateDbAdapter{
		context: context,
		created: map[tosca.Address]bool{},
	}
}

// checkState aborts the running EVM as soon as the context failed to
// resolve some state. Values read after such a failure are meaningless.
func (s *stateDbAdapter) checkState() {
	if s.evm != nil && s.context.Err() != nil && !s.evm.Cancelled() {
		s.evm.Cancel()
	}
}

func (s *stateDbAdapter) CreateAccount(addr common.Address) {
	// Accounts exist as soon as they are written to.
	account := tosca.Address(addr)
	s.context.SetBalance(account, s.context.GetBalance(account))
}

func (s *stateDbAdapter) CreateContract(addr common.Address) {
	s.created[tosca.Address(addr)] = true
}

func (s *stateDbAdapter) SubBalance(addr common.Address, diff *uint256.Int, _ tracing.BalanceChangeReason) {
	account := tosca.Address(addr)
	cur := s.context.GetBalance(account)
	s.context.SetBalance(account, tosca.Sub(cur, tosca.ValueFromUint256(diff)))
}

func (s *stateDbAdapter) AddBalance(addr common.Address, diff *uint256.Int, _ tracing.BalanceChangeReason) {
	account := tosca.Address(addr)
	cur := s.context.GetBalance(account)
	s.context.SetBalance(account, tosca.Add(cur, tosca.ValueFromUint256(diff)))
}

func (s *stateDbAdapter) GetBalance(addr common.Address) *uint256.Int {
	value := s.context.GetBalance(tosca.Address(addr))
	s.checkState()
	return value.ToUint256()
}

func (s *stateDbAdapter) GetNonce(addr common.Address) uint64 {
	res := s.context.GetNonce(tosca.Address(addr))
	s.checkState()
	return res
}

func (s *stateDbAdapter) SetNonce(addr common.Address, nonce uint64) {
	s.context.SetNonce(tosca.Address(addr), nonce)
}

func (s *stateDbAdapter) GetCodeHash(addr common.Address) common.Hash {
	res := s.context.GetCodeHash(tosca.Address(addr))
	s.checkState()
	return common.Hash(res)
}

func (s *stateDbAdapter) GetCode(addr common.Address) []byte {
	res := s.context.GetCode(tosca.Address(addr))
	s.checkState()
	return res
}

func (s *stateDbAdapter) SetCode(addr common.Address, code []byte) {
	s.context.SetCode(tosca.Address(addr), code)
}

func (s *stateDbAdapter) GetCodeSize(addr common.Address) int {
	res := s.context.GetCodeSize(tosca.Address(addr))
	s.checkState()
	return res
}

func (s *stateDbAdapter) AddRefund(value uint64) {
	s.refund += value
}

func (s *stateDbAdapter) SubRefund(value uint64) {
	s.refund -= value
}

func (s *stateDbAdapter) GetRefund() uint64 {
	return s.refund
}

func (s *stateDbAdapter) GetCommittedState(addr common.Address, key common.Hash) common.Hash {
	res := s.context.GetCommittedStorage(tosca.Address(addr), tosca.Key(key))
	s.checkState()
	return common.Hash(res)
}

func (s *stateDbAdapter) GetState(addr common.Address, key common.Hash) common.Hash {
	res := s.context.GetStorage(tosca.Address(addr), tosca.Key(key))
	s.checkState()
	return common.Hash(res)
}

func (s *stateDbAdapter) SetState(addr common.Address, key common.Hash, value common.Hash) {
	s.context.SetStorage(tosca.Address(addr), tosca.Key(key), tosca.Word(value))
	s.checkState()
}

func (s *stateDbAdapter) GetStorageRoot(addr common.Address) common.Hash {
	// Only consulted for address collision checks of new contracts, which
	// are covered by the nonce and code checks for simulated calls.
	return common.Hash{}
}

func (s *stateDbAdapter) GetTransientState(addr common.Address, key common.Hash) common.Hash {
	return common.Hash(s.context.GetTransientStorage(tosca.Address(addr), tosca.Key(key)))
}

func (s *stateDbAdapter) SetTransientState(addr common.Address, key, value common.Hash) {
	s.context.SetTransientStorage(tosca.Address(addr), tosca.Key(key), tosca.Word(value))
}

// SelfDestruct is called after the EVM moved the balance of addr to the
// beneficiary, so only the destruction itself is recorded.
func (s *stateDbAdapter) SelfDestruct(addr common.Address) {
	account := tosca.Address(addr)
	s.context.SelfDestruct(account, account)
	s.context.SetBalance(account, tosca.Value{})
}

func (s *stateDbAdapter) HasSelfDestructed(addr common.Address) bool {
	return s.context.HasSelfDestructed(tosca.Address(addr))
}

// Selfdestruct6780 only destroys contracts created in the same transaction.
func (s *stateDbAdapter) Selfdestruct6780(addr common.Address) {
	if s.created[tosca.Address(addr)] {
		s.SelfDestruct(addr)
	}
}

func (s *stateDbAdapter) Exist(addr common.Address) bool {
	res := s.context.AccountExists(tosca.Address(addr))
	s.checkState()
	return res
}

func (s *stateDbAdapter) Empty(addr common.Address) bool {
	return s.GetBalance(addr).IsZero() && s.GetNonce(addr) == 0 && s.GetCodeSize(addr) == 0
}

func (s *stateDbAdapter) PrepareAccessList(sender common.Address, dest *common.Address, precompiles []common.Address, txAccesses types.AccessList) {
	s.context.AccessAccount(tosca.Address(sender))
	if dest != nil {
		s.context.AccessAccount(tosca.Address(*dest))
	}
	for _, addr := range precompiles {
		s.context.AccessAccount(tosca.Address(addr))
	}
	for _, el := range txAccesses {
		s.context.AccessAccount(tosca.Address(el.Address))
		for _, key := range el.StorageKeys {
			s.context.AccessStorage(tosca.Address(el.Address), tosca.Key(key))
		}
	}
}

func (s *stateDbAdapter) AddressInAccessList(addr common.Address) bool {
	return s.context.IsAddressInAccessList(tosca.Address(addr))
}

func (s *stateDbAdapter) SlotInAccessList(addr common.Address, slot common.Hash) (addressOk bool, slotOk bool) {
	return s.context.IsSlotInAccessList(tosca.Address(addr), tosca.Key(slot))
}

func (s *stateDbAdapter) AddAddressToAccessList(addr common.Address) {
	s.context.AccessAccount(tosca.Address(addr))
}

func (s *stateDbAdapter) AddSlotToAccessList(addr common.Address, slot common.Hash) {
	s.context.AccessStorage(tosca.Address(addr), tosca.Key(slot))
}

func (s *stateDbAdapter) Prepare(rules params.Rules, sender, coinbase common.Address, dest *common.Address, precompiles []common.Address, txAccesses types.AccessList) {
	if rules.IsBerlin {
		s.PrepareAccessList(sender, dest, precompiles, txAccesses)
		if rules.IsShanghai {
			s.context.AccessAccount(tosca.Address(coinbase))
		}
	}
}

func (s *stateDbAdapter) RevertToSnapshot(snapshot int) {
	s.context.RestoreSnapshot(tosca.Snapshot(snapshot))
	s.refund = s.refundBackups[tosca.Snapshot(snapshot)]
}

func (s *stateDbAdapter) Snapshot() int {
	id := s.context.CreateSnapshot()
	if s.refundBackups == nil {
		s.refundBackups = make(map[tosca.Snapshot]uint64)
	}
	s.refundBackups[id] = s.refund
	return int(id)
}

func (s *stateDbAdapter) AddLog(log *types.Log) {
	topics := make([]tosca.Hash, 0, len(log.Topics))
	for _, cur := range log.Topics {
		topics = append(topics, tosca.Hash(cur))
	}
	s.context.EmitLog(tosca.Log{
		Address: tosca.Address(log.Address),
		Topics:  topics,
		Data:    log.Data,
	})
}

func (s *stateDbAdapter) AddPreimage(common.Hash, []byte) {
	// preimages are only recorded by archive nodes
}

func (s *stateDbAdapter) ForEachStorage(common.Address, func(common.Hash, common.Hash) bool) error {
	panic("storage of remote accounts cannot be enumerated")
}

func (s *stateDbAdapter) PointCache() *utils.PointCache {
	// see https://eips.ethereum.org/EIPS/eip-4762
	panic("should not be needed by revisions up to Cancun")
}

func (s *stateDbAdapter) Witness() *stateless.Witness {
	// this should not be relevant for revisions up to Cancun
	return nil
}
