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

// StorageStatus classifies the effect of a storage update relative to the
// value the slot held at the start of the transaction. SSTORE gas costs and
// refunds depend on it.
type StorageStatus int

// X, Y, and Z are distinct non-zero values in the comments below, which read
// <original> -> <current> -> <new>.
const (
	StorageAssigned         StorageStatus = iota
	StorageAdded                          // 0 -> 0 -> Z
	StorageDeleted                        // X -> X -> 0
	StorageModified                       // X -> X -> Z
	StorageDeletedAdded                   // X -> 0 -> Z
	StorageModifiedDeleted                // X -> Y -> 0
	StorageDeletedRestored                // X -> 0 -> X
	StorageAddedDeleted                   // 0 -> Y -> 0
	StorageModifiedRestored               // X -> Y -> X
	numStorageStatuses      int           = iota
)

var storageStatusNames = [numStorageStatuses]string{
	"StorageAssigned",
	"StorageAdded",
	"StorageDeleted",
	"StorageModified",
	"StorageDeletedAdded",
	"StorageModifiedDeleted",
	"StorageDeletedRestored",
	"StorageAddedDeleted",
	"StorageModifiedRestored",
}

func (s StorageStatus) String() string {
	if s < 0 || int(s) >= numStorageStatuses {
		return fmt.Sprintf("StorageStatus(%d)", int(s))
	}
	return storageStatusNames[s]
}

// GetStorageStatus classifies the update of a slot from current to new,
// where original is the value of the slot at the start of the transaction.
func GetStorageStatus(original, current, new Word) StorageStatus {
	if current == new {
		return StorageAssigned
	}
	var zero Word
	switch {
	case original == current:
		switch {
		case original == zero:
			return StorageAdded
		case new == zero:
			return StorageDeleted
		}
		return StorageModified
	case original == zero:
		if new == zero {
			return StorageAddedDeleted
		}
	case current == zero:
		if new == original {
			return StorageDeletedRestored
		}
		return StorageDeletedAdded
	case new == zero:
		return StorageModifiedDeleted
	case new == original:
		return StorageModifiedRestored
	}
	return StorageAssigned
}
