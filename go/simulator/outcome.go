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

	"github.com/Fantom-foundation/Fenice/go/tosca"
)

type OutcomeKind int

const (
	Success OutcomeKind = iota
	Reverted
	Halted
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case Reverted:
		return "reverted"
	case Halted:
		return "halted"
	}
	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

// Outcome is the normalized result of a simulated call. Output is only set
// for successful calls, Reason only for reverted calls, and Halt only for
// halted calls. Err is set for halts caused by state that could not be
// resolved.
type Outcome struct {
	Kind    OutcomeKind
	Output  tosca.Data
	Reason  tosca.Data
	Halt    tosca.HaltReason
	Err     error
	GasUsed tosca.Gas
}

func (o Outcome) String() string {
	switch o.Kind {
	case Success:
		return fmt.Sprintf("success(0x%x)", []byte(o.Output))
	case Reverted:
		return fmt.Sprintf("reverted(0x%x)", []byte(o.Reason))
	case Halted:
		if o.Err != nil {
			return fmt.Sprintf("halted(%v: %v)", o.Halt, o.Err)
		}
		return fmt.Sprintf("halted(%v)", o.Halt)
	}
	return o.Kind.String()
}
