// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package simulator

import (
	"fmt"

	"github.com/Fantom-foundation/Fenice/go/abi"
	"github.com/Fantom-foundation/Fenice/go/tosca"
	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	ErrNotDecodable = tosca.ConstError("only successful outcomes can be decoded")
	ErrDecoding     = tosca.ConstError("failed to decode call result")
)

// Decode interprets the output of a successful outcome according to the
// return types of the given signature.
func Decode(signature string, outcome Outcome) ([]any, error) {
	if outcome.Kind != Success {
		return nil, fmt.Errorf("%w: outcome is %v", ErrNotDecodable, outcome.Kind)
	}
	parsed, err := abi.ParseSignature(signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecoding, err)
	}
	values, err := parsed.Decode(outcome.Output)
	if err != nil {
		return nil, fmt.Errorf("%w: output of %s: %w", ErrDecoding, parsed, err)
	}
	return values, nil
}

// DecodeRevertReason extracts the message of a revert raised through
// Solidity's require or revert statements.
func DecodeRevertReason(outcome Outcome) (string, error) {
	if outcome.Kind != Reverted {
		return "", fmt.Errorf("%w: outcome is %v", ErrNotDecodable, outcome.Kind)
	}
	reason, err := gethabi.UnpackRevert(outcome.Reason)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecoding, err)
	}
	return reason, nil
}
