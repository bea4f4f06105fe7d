// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package tosca defines the vocabulary shared by all Fenice components: the
// account and storage value types, the world state and transaction context
// interfaces through which interpreters access chain state, and the
// interpreter interface itself. Interpreter implementations register
// themselves in the registry of this package and are looked up by name.
package tosca
