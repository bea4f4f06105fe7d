// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package state provides the hybrid world state simulated calls are executed
// on. Values are resolved from local overrides first, then from values
// already fetched during the simulation, and finally from a remote node.
package state

import (
	"context"
	"fmt"

	"github.com/Fantom-foundation/Fenice/go/remote"
	"github.com/Fantom-foundation/Fenice/go/tosca"
	"github.com/ethereum/go-ethereum/log"
)

// OverrideDatabase is the state of a single simulation. It exclusively owns
// its overrides and the values resolved from the remote source, and is not
// safe for concurrent use. Independent simulations use independent
// databases and only share the source.
type OverrideDatabase struct {
	source    remote.Source
	block     remote.BlockReference
	overrides overrideLayer
	cache     resolvedCache
	frozen    bool
	stats     Stats
}

// Stats summarizes how the lookups of a database were resolved.
type Stats struct {
	AccountOverrideHits int
	StorageOverrideHits int
	AccountCacheHits    int
	StorageCacheHits    int
	AccountFetches      int
	StorageFetches      int
}

// Fetches is the total number of requests sent to the remote source.
func (s Stats) Fetches() int {
	return s.AccountFetches + s.StorageFetches
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"overrides: %d accounts / %d slots, cached: %d accounts / %d slots, fetched: %d accounts / %d slots",
		s.AccountOverrideHits, s.StorageOverrideHits,
		s.AccountCacheHits, s.StorageCacheHits,
		s.AccountFetches, s.StorageFetches,
	)
}

// NewOverrideDatabase creates an empty database reading values missing
// locally from the given source at the given block.
func NewOverrideDatabase(source remote.Source, block remote.BlockReference) *OverrideDatabase {
	return &OverrideDatabase{
		source:    source,
		block:     block,
		overrides: overrideLayer{},
		cache:     newResolvedCache(),
	}
}

// Block is the block at which missing values are read from the source.
func (d *OverrideDatabase) Block() remote.BlockReference {
	return d.block
}

// SetAccountOverride installs the given account information for addr. The
// source is never consulted for this account afterwards. Storage of the
// account is still read from the source unless overridden. The code hash of
// info must match its code, see tosca.NewAccountInfo.
func (d *OverrideDatabase) SetAccountOverride(addr tosca.Address, info tosca.AccountInfo) {
	d.checkNotFrozen()
	if err := info.Check(); err != nil {
		panic(fmt.Sprintf("invalid override of account %v: %v", addr, err))
	}
	d.overrides.setAccount(addr, info)
}

// SetAccountAbsent marks addr as a non-existing account. All its storage
// slots read as zero unless overridden.
func (d *OverrideDatabase) SetAccountAbsent(addr tosca.Address) {
	d.checkNotFrozen()
	d.overrides.setAbsent(addr)
}

// SetStorageOverride installs the given value for a single storage slot.
func (d *OverrideDatabase) SetStorageOverride(addr tosca.Address, key tosca.Key, value tosca.Word) {
	d.checkNotFrozen()
	d.overrides.setStorage(addr, key, value)
}

// Freeze marks the start of the execution. Overrides installed afterwards
// could be observed only partially by the running simulation, so any such
// attempt panics.
func (d *OverrideDatabase) Freeze() {
	d.frozen = true
}

func (d *OverrideDatabase) checkNotFrozen() {
	if d.frozen {
		panic("overrides must not be modified after the execution has started")
	}
}

// GetAccount resolves the given account. The result is nil if the account
// does not exist. Failures of the source are reported and not cached.
func (d *OverrideDatabase) GetAccount(ctx context.Context, addr tosca.Address) (*tosca.AccountInfo, error) {
	if info, found := d.overrides.getAccount(addr); found {
		d.stats.AccountOverrideHits++
		return info, nil
	}
	if info, found := d.cache.getAccount(addr); found {
		d.stats.AccountCacheHits++
		return info, nil
	}

	d.stats.AccountFetches++
	log.Debug("Resolving account from remote", "address", addr, "block", d.block)
	info, err := d.source.FetchAccount(ctx, addr, d.block)
	if err != nil {
		return nil, err
	}
	d.cache.setAccount(addr, info)
	return info.Clone(), nil
}

// GetStorage resolves a single storage slot. Failures of the source are
// reported and not cached.
func (d *OverrideDatabase) GetStorage(ctx context.Context, addr tosca.Address, key tosca.Key) (tosca.Word, error) {
	if value, found := d.overrides.getStorage(addr, key); found {
		d.stats.StorageOverrideHits++
		return value, nil
	}
	if value, found := d.cache.getStorage(addr, key); found {
		d.stats.StorageCacheHits++
		return value, nil
	}

	d.stats.StorageFetches++
	log.Debug("Resolving storage from remote", "address", addr, "key", key, "block", d.block)
	value, err := d.source.FetchStorage(ctx, addr, key, d.block)
	if err != nil {
		return tosca.Word{}, err
	}
	d.cache.setStorage(addr, key, value)
	return value, nil
}

// Stats reports how lookups were resolved so far.
func (d *OverrideDatabase) Stats() Stats {
	return d.stats
}
