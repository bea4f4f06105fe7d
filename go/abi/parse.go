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
	"strings"

	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

// parseArguments parses a comma separated list of parameter declarations.
func parseArguments(function string, list string) (gethabi.Arguments, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	types, names, err := normalizeList(list)
	if err != nil {
		return nil, err
	}

	selector, err := gethabi.ParseSelector(fmt.Sprintf("%s(%s)", function, strings.Join(types, ",")))
	if err != nil {
		return nil, err
	}
	if len(selector.Inputs) != len(names) {
		return nil, fmt.Errorf("expected %d parameters, parsed %d", len(names), len(selector.Inputs))
	}

	res := make(gethabi.Arguments, 0, len(selector.Inputs))
	for i, input := range selector.Inputs {
		typ, err := gethabi.NewType(input.Type, input.InternalType, input.Components)
		if err != nil {
			return nil, err
		}
		res = append(res, gethabi.Argument{Name: names[i], Type: typ})
	}
	return res, nil
}

// normalizeList reduces a list of parameter declarations to their canonical
// types and, separately, their names. Unnamed parameters have an empty name.
func normalizeList(list string) (types []string, names []string, err error) {
	for _, param := range splitTopLevel(list) {
		typ, name, err := normalizeParameter(param)
		if err != nil {
			return nil, nil, err
		}
		types = append(types, typ)
		names = append(names, name)
	}
	return types, names, nil
}

func normalizeParameter(param string) (typ string, name string, err error) {
	param = strings.TrimSpace(param)
	if param == "" {
		return "", "", fmt.Errorf("empty parameter")
	}

	var rest string
	if strings.HasPrefix(param, "(") {
		inner, remainder, err := splitParenthesized(param)
		if err != nil {
			return "", "", err
		}
		components, _, err := normalizeList(inner)
		if err != nil {
			return "", "", err
		}
		dims := remainder
		if end := strings.IndexAny(remainder, " \t"); end >= 0 {
			dims = remainder[:end]
		}
		typ = "(" + strings.Join(components, ",") + ")" + dims
		rest = remainder[len(dims):]
	} else {
		fields := strings.Fields(param)
		typ = canonicalType(fields[0])
		rest = strings.Join(fields[1:], " ")
	}

	for _, word := range strings.Fields(rest) {
		switch word {
		case "memory", "calldata", "storage", "indexed", "payable":
			continue
		}
		if name != "" || !isIdentifier(word) {
			return "", "", fmt.Errorf("unexpected %q in parameter %q", word, param)
		}
		name = word
	}
	return typ, name, nil
}

// canonicalType resolves the aliases uint, int, and byte of elementary types.
func canonicalType(typ string) string {
	base, dims := typ, ""
	if pos := strings.IndexByte(typ, '['); pos >= 0 {
		base, dims = typ[:pos], typ[pos:]
	}
	switch base {
	case "uint":
		base = "uint256"
	case "int":
		base = "int256"
	case "byte":
		base = "bytes1"
	}
	return base + dims
}

// splitParenthesized splits text starting with an opening parenthesis into
// the content up to the matching closing parenthesis and the remainder.
func splitParenthesized(text string) (inner string, rest string, err error) {
	if !strings.HasPrefix(text, "(") {
		return "", "", fmt.Errorf("expected '(' at %q", text)
	}
	depth := 0
	for i, c := range text {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return text[1:i], text[i+1:], nil
			}
		}
	}
	return "", "", fmt.Errorf("unbalanced parentheses in %q", text)
}

// splitTopLevel splits a list at commas not enclosed in parentheses.
func splitTopLevel(list string) []string {
	var res []string
	depth, start := 0, 0
	for i, c := range list {
		switch c {
		case '(':
			depth++
		case ')':
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
