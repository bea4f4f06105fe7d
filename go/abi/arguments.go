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
	"strconv"
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ParseArguments converts textual arguments, as provided on a command line
// or in configuration files, into the Go values expected by Encode. Numbers
// may be given in decimal or 0x-prefixed hexadecimal form, byte strings in
// hexadecimal form, and arrays as bracketed comma separated lists.
func (s *Signature) ParseArguments(values []string) ([]any, error) {
	inputs := s.method.Inputs
	if len(values) != len(inputs) {
		return nil, fmt.Errorf("%s expects %d arguments, got %d", s.method.Sig, len(inputs), len(values))
	}
	res := make([]any, 0, len(values))
	for i, value := range values {
		converted, err := parseValue(inputs[i].Type, strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		res = append(res, converted.Interface())
	}
	return res, nil
}

func parseValue(typ gethabi.Type, text string) (reflect.Value, error) {
	switch typ.T {
	case gethabi.UintTy, gethabi.IntTy:
		return parseInteger(typ, text)
	case gethabi.BoolTy:
		value, err := strconv.ParseBool(text)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid bool %q", text)
		}
		return reflect.ValueOf(value), nil
	case gethabi.StringTy:
		return reflect.ValueOf(text), nil
	case gethabi.AddressTy:
		if !common.IsHexAddress(text) {
			return reflect.Value{}, fmt.Errorf("invalid address %q", text)
		}
		return reflect.ValueOf(common.HexToAddress(text)), nil
	case gethabi.BytesTy:
		data, err := hexutil.Decode(text)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid bytes %q: %w", text, err)
		}
		return reflect.ValueOf(data), nil
	case gethabi.FixedBytesTy:
		data, err := hexutil.Decode(text)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid %v %q: %w", typ, text, err)
		}
		if len(data) != typ.Size {
			return reflect.Value{}, fmt.Errorf("invalid %v %q: expected %d bytes, got %d", typ, text, typ.Size, len(data))
		}
		res := reflect.New(typ.GetType()).Elem()
		reflect.Copy(res, reflect.ValueOf(data))
		return res, nil
	case gethabi.SliceTy, gethabi.ArrayTy:
		return parseList(typ, text)
	}
	return reflect.Value{}, fmt.Errorf("arguments of type %v are not supported", typ)
}

func parseInteger(typ gethabi.Type, text string) (reflect.Value, error) {
	value, ok := new(big.Int).SetString(text, 0)
	if !ok {
		return reflect.Value{}, fmt.Errorf("invalid %v %q", typ, text)
	}

	if err := checkIntegerRange(typ, value); err != nil {
		return reflect.Value{}, err
	}

	target := typ.GetType()
	if target == reflect.TypeOf(value) {
		return reflect.ValueOf(value), nil
	}
	res := reflect.New(target).Elem()
	if typ.T == gethabi.UintTy {
		res.SetUint(value.Uint64())
	} else {
		res.SetInt(value.Int64())
	}
	return res, nil
}

func parseList(typ gethabi.Type, text string) (reflect.Value, error) {
	if !strings.HasPrefix(text, "[") || !strings.HasSuffix(text, "]") {
		return reflect.Value{}, fmt.Errorf("invalid %v %q: expected a bracketed list", typ, text)
	}
	var elements []string
	if inner := strings.TrimSpace(text[1 : len(text)-1]); inner != "" {
		elements = splitList(inner)
	}
	if typ.T == gethabi.ArrayTy && len(elements) != typ.Size {
		return reflect.Value{}, fmt.Errorf("invalid %v: expected %d elements, got %d", typ, typ.Size, len(elements))
	}

	var res reflect.Value
	if typ.T == gethabi.ArrayTy {
		res = reflect.New(typ.GetType()).Elem()
	} else {
		res = reflect.MakeSlice(typ.GetType(), len(elements), len(elements))
	}
	for i, element := range elements {
		value, err := parseValue(*typ.Elem, strings.TrimSpace(element))
		if err != nil {
			return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		res.Index(i).Set(value)
	}
	return res, nil
}

// splitList splits a list at commas not enclosed in brackets.
func splitList(list string) []string {
	var res []string
	depth, start := 0, 0
	for i, c := range list {
		switch c {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				res = append(res, list[start:i])
				start = i + 1
			}
		}
	}
	return append(res, list[start:])
}
