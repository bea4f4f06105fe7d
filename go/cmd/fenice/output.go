// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"reflect"
	"strings"

	"github.com/Fantom-foundation/Fenice/go/simulator"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// printOutcome writes the decoded result of a successful call, one value per
// line, or a description of why the call failed.
func printOutcome(out io.Writer, signature string, outcome simulator.Outcome) error {
	switch outcome.Kind {
	case simulator.Success:
		values, err := simulator.Decode(signature, outcome)
		if err != nil {
			return err
		}
		for _, value := range values {
			fmt.Fprintln(out, formatValue(value))
		}
		return nil
	case simulator.Reverted:
		return fmt.Errorf("execution reverted: %s", describeRevert(outcome))
	default:
		if outcome.Err != nil {
			return fmt.Errorf("execution halted: %v: %w", outcome.Halt, outcome.Err)
		}
		return fmt.Errorf("execution halted: %v", outcome.Halt)
	}
}

func describeRevert(outcome simulator.Outcome) string {
	reason, err := simulator.DecodeRevertReason(outcome)
	if err == nil {
		return reason
	}
	if errors.Is(err, simulator.ErrDecoding) && len(outcome.Reason) == 0 {
		return "no reason given"
	}
	return hexutil.Encode(outcome.Reason)
}

func formatValue(value any) string {
	switch v := value.(type) {
	case *big.Int:
		return v.String()
	case common.Address:
		return v.Hex()
	case []byte:
		return hexutil.Encode(v)
	case string:
		return fmt.Sprintf("%q", v)
	}

	reflected := reflect.ValueOf(value)
	switch reflected.Kind() {
	case reflect.Array:
		if reflected.Type().Elem().Kind() == reflect.Uint8 {
			data := make([]byte, reflected.Len())
			reflect.Copy(reflect.ValueOf(data), reflected)
			return hexutil.Encode(data)
		}
		fallthrough
	case reflect.Slice:
		elements := make([]string, 0, reflected.Len())
		for i := 0; i < reflected.Len(); i++ {
			elements = append(elements, formatValue(reflected.Index(i).Interface()))
		}
		return "[" + strings.Join(elements, ",") + "]"
	}
	return fmt.Sprint(value)
}
