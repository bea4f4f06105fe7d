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

import "github.com/Fantom-foundation/Fenice/go/tosca"

type accountMode int

const (
	accountUnset accountMode = iota
	accountPresent
	accountAbsent
)

// accountOverride holds the locally installed state of a single account.
// Storage overrides are independent of the account mode: a slot may be
// overridden without replacing the account itself.
type accountOverride struct {
	mode    accountMode
	info    tosca.AccountInfo
	storage map[tosca.Key]tosca.Word
}

// overrideLayer is the set of explicitly installed account and slot values.
// It is only ever populated by callers, never by lookups.
type overrideLayer map[tosca.Address]*accountOverride

func (l overrideLayer) entry(addr tosca.Address) *accountOverride {
	res, found := l[addr]
	if !found {
		res = &accountOverride{}
		l[addr] = res
	}
	return res
}

func (l overrideLayer) setAccount(addr tosca.Address, info tosca.AccountInfo) {
	entry := l.entry(addr)
	entry.mode = accountPresent
	entry.info = *info.Clone()
}

func (l overrideLayer) setAbsent(addr tosca.Address) {
	entry := l.entry(addr)
	entry.mode = accountAbsent
	entry.info = tosca.AccountInfo{}
}

func (l overrideLayer) setStorage(addr tosca.Address, key tosca.Key, value tosca.Word) {
	entry := l.entry(addr)
	if entry.storage == nil {
		entry.storage = map[tosca.Key]tosca.Word{}
	}
	entry.storage[key] = value
}

// getAccount reports the overridden account, if any. A nil result with
// found set means the account is overridden as non-existing.
func (l overrideLayer) getAccount(addr tosca.Address) (info *tosca.AccountInfo, found bool) {
	entry, exists := l[addr]
	if !exists {
		return nil, false
	}
	switch entry.mode {
	case accountPresent:
		return entry.info.Clone(), true
	case accountAbsent:
		return nil, true
	}
	return nil, false
}

// getStorage reports the overridden value of a slot. Slots of accounts
// overridden as absent are zero unless overridden themselves.
func (l overrideLayer) getStorage(addr tosca.Address, key tosca.Key) (tosca.Word, bool) {
	entry, exists := l[addr]
	if !exists {
		return tosca.Word{}, false
	}
	if value, found := entry.storage[key]; found {
		return value, true
	}
	if entry.mode == accountAbsent {
		return tosca.Word{}, true
	}
	return tosca.Word{}, false
}
