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
	"encoding/json"
	"math"
	"testing"

	"github.com/holiman/uint256"
)

func TestAddress_JSON_RoundTrip(t *testing.T) {
	tests := map[string]struct {
		address Address
		json    string
	}{
		"zero":  {Address{}, `"0x0000000000000000000000000000000000000000"`},
		"first": {Address{0xAB}, `"0xab00000000000000000000000000000000000000"`},
		"last":  {Address{19: 0x01}, `"0x0000000000000000000000000000000000000001"`},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			encoded, err := json.Marshal(test.address)
			if err != nil {
				t.Fatalf("failed to encode into JSON: %v", err)
			}
			if want, got := test.json, string(encoded); want != got {
				t.Errorf("unexpected JSON encoding, wanted %v, got %v", want, got)
			}
			var restored Address
			if err := json.Unmarshal(encoded, &restored); err != nil {
				t.Fatalf("failed to restore address: %v", err)
			}
			if want, got := test.address, restored; want != got {
				t.Errorf("unexpected restored value, wanted %v, got %v", want, got)
			}
		})
	}
}

func TestParseAddress_InvalidInputIsRejected(t *testing.T) {
	tests := map[string]string{
		"empty":          "",
		"no hex prefix":  "0d4a11d5eeaac28ec3f61d100daf4d40471f1852",
		"too short":      "0x0d4a11d5eeaac28ec3f61d100daf4d40471f18",
		"too long":       "0x0d4a11d5eeaac28ec3f61d100daf4d40471f185200",
		"invalid digits": "0x0g4a11d5eeaac28ec3f61d100daf4d40471f1852",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseAddress(input); err == nil {
				t.Errorf("expected parsing of %q to fail", input)
			}
		})
	}
}

func TestParseAddress_AcceptsMixedCase(t *testing.T) {
	addr, err := ParseAddress("0x0d4a11d5EEaaC28EC3F61d100daF4d40471f1852")
	if err != nil {
		t.Fatalf("failed to parse address: %v", err)
	}
	if want, got := byte(0x0d), addr[0]; want != got {
		t.Errorf("unexpected first byte, wanted %x, got %x", want, got)
	}
	if want, got := byte(0x52), addr[19]; want != got {
		t.Errorf("unexpected last byte, wanted %x, got %x", want, got)
	}
}

func TestParseKey_AcceptsDecimalAndShortHex(t *testing.T) {
	tests := map[string]Key{
		"8":    NewKey(8),
		"0x8":  NewKey(8),
		"0x08": NewKey(8),
		"256":  NewKey(256),
		"0x0100000000000000000000000000000000000000000000000000000000000000": {0x01},
	}
	for input, want := range tests {
		got, err := ParseKey(input)
		if err != nil {
			t.Fatalf("failed to parse %q: %v", input, err)
		}
		if want != got {
			t.Errorf("unexpected key for %q, wanted %v, got %v", input, want, got)
		}
	}
}

func TestParseWord_InvalidInputIsRejected(t *testing.T) {
	tests := map[string]string{
		"empty":        "",
		"only prefix":  "0x",
		"too long":     "0x010000000000000000000000000000000000000000000000000000000000000000",
		"bad hex":      "0xzz",
		"bad decimal":  "12a",
		"negative":     "-1",
		"decimal >256": "115792089237316195423570985008687907853269984665640564039457584007913129639936",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseWord(input); err == nil {
				t.Errorf("expected parsing of %q to fail", input)
			}
		})
	}
}

func TestWord_TextRoundTrip(t *testing.T) {
	word := Word{0: 0x65, 1: 0x8c, 31: 0xe3}
	text, err := word.MarshalText()
	if err != nil {
		t.Fatalf("failed to marshal word: %v", err)
	}
	var restored Word
	if err := restored.UnmarshalText(text); err != nil {
		t.Fatalf("failed to unmarshal word: %v", err)
	}
	if want, got := word, restored; want != got {
		t.Errorf("unexpected word, wanted %v, got %v", want, got)
	}
	if want, got := word.ToUint256(), new(uint256.Int).SetBytes(word[:]); want.Cmp(got) != 0 {
		t.Errorf("unexpected conversion, wanted %v, got %v", want, got)
	}
}

func TestValue_NewValueOrdersArgumentsFromMostSignificant(t *testing.T) {
	value := NewValue(1, 2)
	if want, got := uint64(1), value.getInternalUint64(1); want != got {
		t.Errorf("unexpected high word, wanted %d, got %d", want, got)
	}
	if want, got := uint64(2), value.getInternalUint64(0); want != got {
		t.Errorf("unexpected low word, wanted %d, got %d", want, got)
	}
	if want, got := "18446744073709551618", value.String(); want != got {
		t.Errorf("unexpected print, wanted %s, got %s", want, got)
	}
}

func TestValue_ArithmeticMatchesUint256(t *testing.T) {
	values := []Value{
		{}, {1},
		NewValue(1), NewValue(3),
		NewValue(math.MaxUint64),
		NewValue(math.MaxUint64, math.MaxUint64, math.MaxUint64, math.MaxUint64),
	}

	for _, a := range values {
		for _, b := range values {
			want := new(uint256.Int).Add(a.ToUint256(), b.ToUint256())
			if got := Add(a, b).ToUint256(); want.Cmp(got) != 0 {
				t.Errorf("unexpected addition result for %v and %v, wanted %v, got %v", a, b, want, got)
			}
			want = new(uint256.Int).Sub(a.ToUint256(), b.ToUint256())
			if got := Sub(a, b).ToUint256(); want.Cmp(got) != 0 {
				t.Errorf("unexpected subtraction result for %v and %v, wanted %v, got %v", a, b, want, got)
			}
			if want, got := a.ToBig().Cmp(b.ToBig()), a.Cmp(b); want != got {
				t.Errorf("unexpected comparison of %v and %v, wanted %d, got %d", a, b, want, got)
			}
		}
	}
}

func TestValue_ParseValue(t *testing.T) {
	value, err := ParseValue("1000000000000000000")
	if err != nil {
		t.Fatalf("failed to parse value: %v", err)
	}
	if want, got := NewValue(1_000_000_000_000_000_000), value; want != got {
		t.Errorf("unexpected value, wanted %v, got %v", want, got)
	}
	if want, got := value, ValueFromUint256(value.ToUint256()); want != got {
		t.Errorf("unexpected round trip, wanted %v, got %v", want, got)
	}
	if want, got := (Value{}), ValueFromUint256(nil); want != got {
		t.Errorf("nil should convert to zero, got %v", got)
	}
}

func TestCallKind_JSON_RoundTrip(t *testing.T) {
	for _, kind := range []CallKind{Call, StaticCall, DelegateCall, CallCode, Create, Create2} {
		encoded, err := json.Marshal(kind)
		if err != nil {
			t.Fatalf("failed to encode %v: %v", kind, err)
		}
		var restored CallKind
		if err := json.Unmarshal(encoded, &restored); err != nil {
			t.Fatalf("failed to decode %s: %v", encoded, err)
		}
		if want, got := kind, restored; want != got {
			t.Errorf("unexpected call kind, wanted %v, got %v", want, got)
		}
	}
	if _, err := json.Marshal(CallKind(42)); err == nil {
		t.Errorf("encoding of invalid call kind should fail")
	}
}
