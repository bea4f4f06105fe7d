// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package remote provides read access to the state of a remote blockchain
// node. Accounts and storage slots are fetched on demand from a JSON-RPC
// endpoint at a fixed block.
package remote

//go:generate mockgen -source source.go -destination source_mock.go -package remote

import (
	"context"

	"github.com/Fantom-foundation/Fenice/go/tosca"
)

// ErrRemoteUnavailable is reported whenever the remote node could not be
// reached or produced a response that could not be interpreted.
const ErrRemoteUnavailable = tosca.ConstError("remote state unavailable")

// Source is a read-only view on the state of a remote chain. Implementations
// must be safe for concurrent use and hold no per-simulation state.
type Source interface {
	// FetchAccount obtains balance, nonce, and code of the given account at
	// the given block. The result is nil if the account does not exist.
	FetchAccount(ctx context.Context, addr tosca.Address, block BlockReference) (*tosca.AccountInfo, error)

	// FetchStorage obtains the value of a single storage slot. Slots that
	// were never written, and slots of non-existing accounts, are zero.
	FetchStorage(ctx context.Context, addr tosca.Address, key tosca.Key, block BlockReference) (tosca.Word, error)
}
