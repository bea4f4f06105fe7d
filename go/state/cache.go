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

type slotKey struct {
	addr tosca.Address
	key  tosca.Key
}

// resolvedCache memoizes values fetched from the remote source. A nil
// account entry records that the account does not exist.
type resolvedCache struct {
	accounts map[tosca.Address]*tosca.AccountInfo
	storage  map[slotKey]tosca.Word
}

func newResolvedCache() resolvedCache {
	return resolvedCache{
		accounts: map[tosca.Address]*tosca.AccountInfo{},
		storage:  map[slotKey]tosca.Word{},
	}
}

func (c *resolvedCache) getAccount(addr tosca.Address) (*tosca.AccountInfo, bool) {
	info, found := c.accounts[addr]
	return info.Clone(), found
}

func (c *resolvedCache) setAccount(addr tosca.Address, info *tosca.AccountInfo) {
	c.accounts[addr] = info.Clone()
}

func (c *resolvedCache) getStorage(addr tosca.Address, key tosca.Key) (tosca.Word, bool) {
	value, found := c.storage[slotKey{addr, key}]
	return value, found
}

func (c *resolvedCache) setStorage(addr tosca.Address, key tosca.Key, value tosca.Word) {
	c.storage[slotKey{addr, key}] = value
}
