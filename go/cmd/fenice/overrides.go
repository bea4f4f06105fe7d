// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/Fantom-foundation/Fenice/go/state"
	"github.com/Fantom-foundation/Fenice/go/tosca"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/exp/maps"
	"gopkg.in/yaml.v3"
)

// overrides is the YAML description of state injected before a simulation:
//
//	accounts:
//	  0x...:
//	    balance: 1000000000000000000
//	    nonce: 1
//	    code: 0x6080...
//	    storage:
//	      0x08: 0x658c...
//	  0x...:
//	    absent: true
//
// Accounts listing any of balance, nonce, or code replace the remote account;
// unlisted fields are zero. Storage entries may be given without them.
type overrides struct {
	Accounts map[string]accountOverrides `yaml:"accounts"`
}

type accountOverrides struct {
	Absent  bool              `yaml:"absent"`
	Balance string            `yaml:"balance"`
	Nonce   *uint64           `yaml:"nonce"`
	Code    string            `yaml:"code"`
	Storage map[string]string `yaml:"storage"`
}

func loadOverrides(path string) (overrides, error) {
	file, err := os.Open(path)
	if err != nil {
		return overrides{}, err
	}
	defer file.Close()
	res, err := parseOverrides(file)
	if err != nil {
		return overrides{}, fmt.Errorf("invalid overrides in %s: %w", path, err)
	}
	return res, nil
}

func parseOverrides(reader io.Reader) (overrides, error) {
	var res overrides
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	if err := decoder.Decode(&res); err != nil && !errors.Is(err, io.EOF) {
		return overrides{}, err
	}
	return res, nil
}

// apply installs all overrides in the given database.
func (o overrides) apply(db *state.OverrideDatabase) error {
	addresses := maps.Keys(o.Accounts)
	slices.Sort(addresses)
	for _, text := range addresses {
		addr, err := tosca.ParseAddress(text)
		if err != nil {
			return fmt.Errorf("invalid account %q: %w", text, err)
		}
		if err := o.Accounts[text].apply(db, addr); err != nil {
			return fmt.Errorf("account %v: %w", addr, err)
		}
	}
	return nil
}

func (a accountOverrides) apply(db *state.OverrideDatabase, addr tosca.Address) error {
	replacesAccount := a.Balance != "" || a.Nonce != nil || a.Code != ""
	if a.Absent && replacesAccount {
		return fmt.Errorf("absent accounts can not have a balance, nonce, or code")
	}

	if a.Absent {
		db.SetAccountAbsent(addr)
	}
	if replacesAccount {
		var balance tosca.Value
		if a.Balance != "" {
			var err error
			if balance, err = tosca.ParseValue(a.Balance); err != nil {
				return fmt.Errorf("invalid balance: %w", err)
			}
		}
		var nonce uint64
		if a.Nonce != nil {
			nonce = *a.Nonce
		}
		var code []byte
		if a.Code != "" {
			var err error
			if code, err = hexutil.Decode(a.Code); err != nil {
				return fmt.Errorf("invalid code: %w", err)
			}
		}
		db.SetAccountOverride(addr, tosca.NewAccountInfo(balance, nonce, code))
	}

	slots := maps.Keys(a.Storage)
	slices.Sort(slots)
	for _, slot := range slots {
		key, err := tosca.ParseKey(slot)
		if err != nil {
			return fmt.Errorf("invalid slot %q: %w", slot, err)
		}
		value, err := tosca.ParseWord(a.Storage[slot])
		if err != nil {
			return fmt.Errorf("invalid value of slot %q: %w", slot, err)
		}
		db.SetStorageOverride(addr, key, value)
	}
	return nil
}

type storageOverride struct {
	addr  tosca.Address
	key   tosca.Key
	value tosca.Word
}

func (s storageOverride) apply(db *state.OverrideDatabase) {
	db.SetStorageOverride(s.addr, s.key, s.value)
}

// parseStorageOverride parses overrides of the form <address>:<slot>=<value>.
func parseStorageOverride(text string) (storageOverride, error) {
	location, value, found := strings.Cut(text, "=")
	if !found {
		return storageOverride{}, fmt.Errorf("missing '=' in %q", text)
	}
	addr, slot, found := strings.Cut(location, ":")
	if !found {
		return storageOverride{}, fmt.Errorf("missing ':' in %q", text)
	}

	var res storageOverride
	var err error
	if res.addr, err = tosca.ParseAddress(strings.TrimSpace(addr)); err != nil {
		return storageOverride{}, fmt.Errorf("invalid address in %q: %w", text, err)
	}
	if res.key, err = tosca.ParseKey(slot); err != nil {
		return storageOverride{}, fmt.Errorf("invalid slot in %q: %w", text, err)
	}
	if res.value, err = tosca.ParseWord(value); err != nil {
		return storageOverride{}, fmt.Errorf("invalid value in %q: %w", text, err)
	}
	return res, nil
}
