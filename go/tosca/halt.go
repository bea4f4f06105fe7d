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

import "fmt"

// HaltReason enumerates the causes for which an interpreter may abort the
// execution of a call without an explicit revert. Halted executions consume
// all provided gas and produce no output.
type HaltReason int

const (
	HaltNone HaltReason = iota
	HaltOutOfGas
	HaltInvalidOpcode
	HaltInvalidJump
	HaltStackUnderflow
	HaltStackOverflow
	HaltWriteProtection
	HaltReturnDataOutOfBounds
	HaltInsufficientBalance
	HaltCallDepth
	HaltStateAccess // the world state could not be resolved
	HaltOther
)

func (h HaltReason) String() string {
	switch h {
	case HaltNone:
		return "none"
	case HaltOutOfGas:
		return "out of gas"
	case HaltInvalidOpcode:
		return "invalid opcode"
	case HaltInvalidJump:
		return "invalid jump destination"
	case HaltStackUnderflow:
		return "stack underflow"
	case HaltStackOverflow:
		return "stack overflow"
	case HaltWriteProtection:
		return "write protection"
	case HaltReturnDataOutOfBounds:
		return "return data out of bounds"
	case HaltInsufficientBalance:
		return "insufficient balance"
	case HaltCallDepth:
		return "max call depth exceeded"
	case HaltStateAccess:
		return "state access failure"
	case HaltOther:
		return "other"
	}
	return fmt.Sprintf("HaltReason(%d)", int(h))
}
