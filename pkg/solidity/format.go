package solidity

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// BigNumberType is the tag carried by tagged big-integer results
const BigNumberType = "BigNumber"

// BigNumber is the tagged big-integer shape produced by the call layer for
// integer results: {"type": "BigNumber", "hex": "0x..."}.
type BigNumber struct {
	Type string `json:"type"`
	Hex  string `json:"hex"`
}

// NewBigNumber tags an integer. Negative values keep a leading "-".
func NewBigNumber(v *big.Int) BigNumber {
	if v == nil {
		v = new(big.Int)
	}
	hex := "0x" + new(big.Int).Abs(v).Text(16)
	if v.Sign() < 0 {
		hex = "-" + hex
	}
	return BigNumber{Type: BigNumberType, Hex: hex}
}

// ParseBigNumber recognises the tagged big-integer shape in any of its Go
// representations and returns its decimal value.
func ParseBigNumber(v any) (Value, bool) {
	var tag, hex string
	switch obj := v.(type) {
	case BigNumber:
		tag, hex = obj.Type, obj.Hex
	case *BigNumber:
		if obj == nil {
			return Value{}, false
		}
		tag, hex = obj.Type, obj.Hex
	case map[string]any:
		t, okT := obj["type"].(string)
		h, okH := obj["hex"].(string)
		if !okT || !okH {
			return Value{}, false
		}
		tag, hex = t, h
	case map[string]string:
		t, okT := obj["type"]
		h, okH := obj["hex"]
		if !okT || !okH {
			return Value{}, false
		}
		tag, hex = t, h
	default:
		return Value{}, false
	}
	if tag != BigNumberType {
		return Value{}, false
	}

	n, ok := parseHex(hex)
	if !ok {
		return Value{}, false
	}
	return BigIntegerFromInt(n), true
}

// FormatSolidityObject turns a raw call result into its display form. Tagged
// big integers become exact base-10 strings; every other value, including
// objects with a different tag, is returned as is.
func FormatSolidityObject(v any) any {
	if n, ok := ParseBigNumber(v); ok {
		return n.String()
	}
	return v
}

// FormatUnits renders a base-10 integer string scaled down by decimals,
// e.g. ("50000000000000000000", 18) -> "50".
func FormatUnits(value string, decimals int32) (string, bool) {
	n, ok := parseInteger(value)
	if !ok {
		return "", false
	}
	return decimal.NewFromBigInt(n, -decimals).String(), true
}

func parseHex(raw string) (*big.Int, bool) {
	s := strings.TrimSpace(raw)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return nil, false
	}
	s = s[2:]
	if s == "" {
		return new(big.Int), true
	}
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, false
	}
	if neg {
		n.Neg(n)
	}
	return n, true
}
