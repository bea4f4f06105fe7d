// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.


package abi

import (
	"fmt"
	"math/big"
	"reflect"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

// checkRanges verifies that all integers among values fit the widths
// declared by arguments. go-ethereum checks the widths of Go's native
// integer types only, so values of types like uint112 or int24, which are
// represented by *big.Int, are checked here.
func checkRanges(arguments gethabi.Arguments, values []any) error {
	if len(values) != len(arguments) {
		return nil
	}
	for i, argument := range arguments {
		if err := checkRange(argument.Type, reflect.ValueOf(values[i])); err != nil {
			if argument.Name != "" {
				return fmt.Errorf("%s: %w", argument.Name, err)
			}
			return fmt.Errorf("value %d: %w", i, err)
		}
	}
	return nil
}

func checkRange(typ gethabi.Type, value reflect.Value) error {
	if !value.IsValid() {
		return nil
	}
	switch typ.T {
	case gethabi.UintTy, gethabi.IntTy:
		if !value.CanInterface() {
			return nil
		}
		number, ok := value.Interface().(*big.Int)
		if !ok || number == nil {
			return nil
		}
		return checkIntegerRange(typ, number)
	case gethabi.SliceTy, gethabi.ArrayTy:
		value = reflect.Indirect(value)
		if value.Kind() != reflect.Slice && value.Kind() != reflect.Array {
			return nil
		}
		for i := 0; i < value.Len(); i++ {
			if err := checkRange(*typ.Elem, value.Index(i)); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
	case gethabi.TupleTy:
		value = reflect.Indirect(value)
		if value.Kind() != reflect.Struct || value.NumField() != len(typ.TupleElems) {
			return nil
		}
		for i, elem := range typ.TupleElems {
			if err := checkRange(*elem, value.Field(i)); err != nil {
				return fmt.Errorf("%s: %w", typ.TupleRawNames[i], err)
			}
		}
	}
	return nil
}

// checkIntegerRange fails if value is not representable by the integer
// type typ.
func checkIntegerRange(typ gethabi.Type, value *big.Int) error {
	limit := new(big.Int).Lsh(big.NewInt(1), uint(typ.Size))
	if typ.T == gethabi.UintTy {
		if value.Sign() < 0 || value.Cmp(limit) >= 0 {
			return fmt.Errorf("%v out of range for %v", value, typ)
		}
		return nil
	}
	half := new(big.Int).Rsh(limit, 1)
	if value.Cmp(half) >= 0 || value.Cmp(new(big.Int).Neg(half)) < 0 {
		return fmt.Errorf("%v out of range for %v", value, typ)
	}
	return nil
}
