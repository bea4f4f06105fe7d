// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package remote

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Fantom-foundation/Fenice/go/tosca"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrInvalidBlockReference is reported for block references that are neither
// a known tag nor a non-negative block number.
const ErrInvalidBlockReference = tosca.ConstError("invalid block reference")

// BlockReference identifies the block whose state is read from the remote
// node. It is either a concrete block number or one of the tags understood by
// the node. The zero value refers to the latest block.
type BlockReference struct {
	number rpc.BlockNumber
	set    bool
}

var (
	Latest    = BlockReference{}
	Pending   = BlockReference{number: rpc.PendingBlockNumber, set: true}
	Earliest  = BlockReference{number: rpc.EarliestBlockNumber, set: true}
	Safe      = BlockReference{number: rpc.SafeBlockNumber, set: true}
	Finalized = BlockReference{number: rpc.FinalizedBlockNumber, set: true}
)

// NewBlockReference creates a reference to the block with the given number.
func NewBlockReference(number uint64) BlockReference {
	if number > math.MaxInt64 {
		panic(fmt.Sprintf("block number %d out of range", number))
	}
	return BlockReference{number: rpc.BlockNumber(number), set: true}
}

// ParseBlockReference parses a block tag (latest, pending, earliest, safe,
// finalized), a decimal block number, or a 0x-prefixed hexadecimal block
// number. The empty string refers to the latest block.
func ParseBlockReference(s string) (BlockReference, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "latest":
		return Latest, nil
	case "pending":
		return Pending, nil
	case "earliest":
		return Earliest, nil
	case "safe":
		return Safe, nil
	case "finalized":
		return Finalized, nil
	}

	var number uint64
	var err error
	if strings.HasPrefix(s, "0x") {
		number, err = hexutil.DecodeUint64(s)
	} else {
		number, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return BlockReference{}, fmt.Errorf("%w: %q", ErrInvalidBlockReference, s)
	}
	if number > math.MaxInt64 {
		return BlockReference{}, fmt.Errorf("%w: %q is too large", ErrInvalidBlockReference, s)
	}
	return NewBlockReference(number), nil
}

// Number returns the referenced block number if the reference is concrete.
// The earliest block is concrete and has number zero.
func (b BlockReference) Number() (uint64, bool) {
	n := b.rpcNumber()
	if n < 0 {
		return 0, false
	}
	return uint64(n), true
}

// IsConcrete reports whether the reference names a fixed block rather than a
// tag that moves with the head of the chain.
func (b BlockReference) IsConcrete() bool {
	_, ok := b.Number()
	return ok
}

func (b BlockReference) String() string {
	switch n := b.rpcNumber(); n {
	case rpc.LatestBlockNumber:
		return "latest"
	case rpc.PendingBlockNumber:
		return "pending"
	case rpc.SafeBlockNumber:
		return "safe"
	case rpc.FinalizedBlockNumber:
		return "finalized"
	default:
		return strconv.FormatInt(int64(n), 10)
	}
}

func (b BlockReference) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *BlockReference) UnmarshalText(data []byte) error {
	res, err := ParseBlockReference(string(data))
	if err != nil {
		return err
	}
	*b = res
	return nil
}

// rpcNumber is the form in which the reference is sent to the remote node.
func (b BlockReference) rpcNumber() rpc.BlockNumber {
	if !b.set {
		return rpc.LatestBlockNumber
	}
	return b.number
}
