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

import (
	"strings"
	"testing"
)

func TestStorageStatus_AllStatusesHaveNames(t *testing.T) {
	for s := StorageStatus(0); int(s) < numStorageStatuses; s++ {
		if strings.HasPrefix(s.String(), "StorageStatus(") {
			t.Errorf("status %d has no name", int(s))
		}
	}
	if want, got := "StorageStatus(-1)", StorageStatus(-1).String(); want != got {
		t.Errorf("unexpected name, wanted %q, got %q", want, got)
	}
}

func TestGetStorageStatus_ClassifiesTransitions(t *testing.T) {
	zero := Word{}
	x, y, z := Word{1}, Word{2}, Word{3}
	tests := map[string]struct {
		original, current, new Word
		want                   StorageStatus
	}{
		"no change":             {x, y, y, StorageAssigned},
		"added":                 {zero, zero, z, StorageAdded},
		"deleted":               {x, x, zero, StorageDeleted},
		"modified":              {x, x, z, StorageModified},
		"deleted and added":     {x, zero, z, StorageDeletedAdded},
		"modified and deleted":  {x, y, zero, StorageModifiedDeleted},
		"deleted and restored":  {x, zero, x, StorageDeletedRestored},
		"added and deleted":     {zero, y, zero, StorageAddedDeleted},
		"modified and restored": {x, y, x, StorageModifiedRestored},
		"added twice":           {zero, y, z, StorageAssigned},
		"modified twice":        {x, y, z, StorageAssigned},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if want, got := test.want, GetStorageStatus(test.original, test.current, test.new); want != got {
				t.Errorf("unexpected status, wanted %v, got %v", want, got)
			}
		})
	}
}
