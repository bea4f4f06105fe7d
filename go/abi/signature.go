// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package abi parses human-readable Solidity function signatures and encodes
// calls and results of those functions using go-ethereum's ABI codec.
package abi

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Fantom-foundation/Fenice/go/tosca"
	gethabi "github.com/ethereum/go-ethereum/accounts/abi"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrInvalidSignature is reported for function signatures that cannot be
// parsed.
const ErrInvalidSignature = tosca.ConstError("invalid function signature")

// Signature describes a callable function: its name, the types of its
// parameters, and the types of its results.
type Signature struct {
	method gethabi.Method
}

// signatureCacheSize bounds the number of parsed signatures kept in memory.
const signatureCacheSize = 1024

var signatureCache = func() *lru.Cache[string, *Signature] {
	cache, err := lru.New[string, *Signature](signatureCacheSize)
	if err != nil {
		panic(fmt.Sprintf("failed to create signature cache: %v", err))
	}
	return cache
}()

// ParseSignature parses a function signature as written in Solidity
// sources or interfaces, e.g.
//
//	function getReserves() external view returns (uint112, uint112, uint32)
//	balanceOf(address owner) returns (uint256)
//
// The function keyword, visibility and mutability modifiers, data
// locations, and parameter names are optional. Parsed signatures are
// immutable and cached.
func ParseSignature(signature string) (*Signature, error) {
	if res, found := signatureCache.Get(signature); found {
		return res, nil
	}
	res, err := parseSignature(signature)
	if err != nil {
		return nil, err
	}
	signatureCache.Add(signature, res)
	return res, nil
}

func parseSignature(signature string) (*Signature, error) {
	text := strings.TrimSpace(signature)
	text = strings.TrimSpace(strings.TrimPrefix(text, "function "))

	open := strings.IndexByte(text, '(')
	if open <= 0 {
		return nil, fmt.Errorf("%w: %q lacks a parameter list", ErrInvalidSignature, signature)
	}
	name := strings.TrimSpace(text[:open])
	if !isIdentifier(name) {
		return nil, fmt.Errorf("%w: %q is not a valid function name", ErrInvalidSignature, name)
	}

	params, rest, err := splitParenthesized(text[open:])
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSignature, signature, err)
	}

	var results string
	mutability := "nonpayable"
	for len(strings.TrimSpace(rest)) > 0 {
		rest = strings.TrimSpace(rest)
		word := rest
		if end := strings.IndexAny(rest, " ("); end >= 0 {
			word = rest[:end]
		}
		switch word {
		case "external", "public", "internal", "private", "virtual", "override":
		case "view", "pure", "payable", "nonpayable":
			mutability = word
		case "returns":
			results, rest, err = splitParenthesized(strings.TrimSpace(rest[len(word):]))
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSignature, signature, err)
			}
			continue
		default:
			return nil, fmt.Errorf("%w: unexpected %q in %q", ErrInvalidSignature, word, signature)
		}
		rest = rest[len(word):]
	}

	inputs, err := parseArguments(name, params)
	if err != nil {
		return nil, fmt.Errorf("%w: parameters of %q: %w", ErrInvalidSignature, signature, err)
	}
	outputs, err := parseArguments(name, results)
	if err != nil {
		return nil, fmt.Errorf("%w: results of %q: %w", ErrInvalidSignature, signature, err)
	}

	isConst := mutability == "view" || mutability == "pure"
	isPayable := mutability == "payable"
	method := gethabi.NewMethod(name, name, gethabi.Function, mutability, isConst, isPayable, inputs, outputs)
	return &Signature{method: method}, nil
}

// Name is the name of the function.
func (s *Signature) Name() string {
	return s.method.RawName
}

// Selector is the 4-byte function selector prefixing the call data.
func (s *Signature) Selector() [4]byte {
	var res [4]byte
	copy(res[:], s.method.ID)
	return res
}

// Method provides the go-ethereum description of the function.
func (s *Signature) Method() gethabi.Method {
	return s.method
}

// Inputs lists the parameters of the function.
func (s *Signature) Inputs() gethabi.Arguments {
	return s.method.Inputs
}

// Outputs lists the results of the function.
func (s *Signature) Outputs() gethabi.Arguments {
	return s.method.Outputs
}

// String prints the canonical form of the signature, e.g.
// getReserves() returns (uint112,uint112,uint32).
func (s *Signature) String() string {
	var res strings.Builder
	res.WriteString(s.method.Sig)
	if len(s.method.Outputs) > 0 {
		res.WriteString(" returns (")
		for i, output := range s.method.Outputs {
			if i > 0 {
				res.WriteByte(',')
			}
			res.WriteString(output.Type.String())
		}
		res.WriteByte(')')
	}
	return res.String()
}

// Encode produces the call data invoking the function with the given
// arguments. The Go types of the arguments must match the parameter types
// exactly, as described by go-ethereum's ABI package. Integers must fit the
// declared widths.
func (s *Signature) Encode(args ...any) ([]byte, error) {
	if err := checkRanges(s.method.Inputs, args); err != nil {
		return nil, err
	}
	packed, err := s.method.Inputs.Pack(args...)
	if err != nil {
		return nil, err
	}
	return append(bytes.Clone(s.method.ID), packed...), nil
}

// Decode unpacks the result data of the function into Go values, one per
// declared result. Results exceeding the width of their declared type are
// rejected.
func (s *Signature) Decode(data []byte) ([]any, error) {
	if len(s.method.Outputs) == 0 {
		return []any{}, nil
	}
	values, err := s.method.Outputs.Unpack(data)
	if err != nil {
		return nil, err
	}
	if err := checkRanges(s.method.Outputs, values); err != nil {
		return nil, err
	}
	return values, nil
}

// CheckAgainst verifies that the given contract ABI declares a function
// with the name and parameter types of this signature.
func (s *Signature) CheckAgainst(contract *gethabi.ABI) error {
	for _, method := range contract.Methods {
		if method.RawName == s.method.RawName && method.Sig == s.method.Sig {
			return nil
		}
	}
	return fmt.Errorf("contract has no function %s", s.method.Sig)
}

// isIdentifier reports whether name is a valid Solidity identifier.
func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c == '_' || c == '$':
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
