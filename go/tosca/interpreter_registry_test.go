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
	"slices"
	"testing"

	"go.uber.org/mock/gomock"
	"golang.org/x/exp/maps"
)

func TestInterpreterRegistry_NameCollisionsAreDetected(t *testing.T) {
	const name = "something-just-for-this-test"
	factory := func(any) (Interpreter, error) {
		return nil, nil
	}
	if err := RegisterInterpreterFactory(name, factory); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := RegisterInterpreterFactory(name, factory); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestInterpreterRegistry_NilFactoriesAreRejected(t *testing.T) {
	if err := RegisterInterpreterFactory("something", nil); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestInterpreterRegistry_LookupIsCaseInsensitive(t *testing.T) {
	ctrl := gomock.NewController(t)
	interpreter := NewMockInterpreter(ctrl)

	var received any
	MustRegisterInterpreterFactory("Case-Test", func(config any) (Interpreter, error) {
		received = config
		return interpreter, nil
	})

	if !slices.Contains(maps.Keys(GetAllRegisteredInterpreters()), "case-test") {
		t.Fatalf("registered factory is not listed")
	}

	got, err := NewInterpreter("CASE-TEST", "config")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != interpreter {
		t.Errorf("factory result not returned")
	}
	if want, got := "config", received; want != got {
		t.Errorf("unexpected configuration, wanted %v, got %v", want, got)
	}

	if _, err := NewInterpreter("case-test", 1, 2); err == nil {
		t.Errorf("too many configurations should be rejected")
	}
	if _, err := NewInterpreter("unknown-interpreter"); err == nil {
		t.Errorf("unknown interpreters should be reported")
	}
}
