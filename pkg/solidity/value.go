package solidity

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// Kind identifies the shape held by a Value
type Kind int

const (
	KindScalar Kind = iota
	KindArray
	KindBigInteger
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindBigInteger:
		return "bigInteger"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a call parameter or call result in one of three shapes:
// a scalar literal, an ordered array of values, or a big integer in decimal form.
type Value struct {
	kind   Kind
	scalar string
	items  []Value
}

// Scalar wraps a literal exactly as entered
func Scalar(s string) Value {
	return Value{kind: KindScalar, scalar: s}
}

// ArrayOf builds an array value. The slice is copied.
func ArrayOf(items ...Value) Value {
	out := make([]Value, len(items))
	copy(out, items)
	return Value{kind: KindArray, items: out}
}

// BigInteger wraps a base-10 integer string
func BigInteger(decimal string) Value {
	return Value{kind: KindBigInteger, scalar: decimal}
}

// BigIntegerFromInt converts an integer to its decimal form
func BigIntegerFromInt(v *big.Int) Value {
	if v == nil {
		return BigInteger("0")
	}
	return BigInteger(v.String())
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsArray() bool { return v.kind == KindArray }

// String returns the literal for scalars and big integers, and a bracketed
// literal for arrays.
func (v Value) String() string {
	if v.kind != KindArray {
		return v.scalar
	}
	parts := make([]string, len(v.items))
	for i, item := range v.items {
		parts[i] = item.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Items returns a copy of the array elements, nil for non-arrays
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	out := make([]Value, len(v.items))
	copy(out, v.items)
	return out
}

// Len is the element count of an array, 0 otherwise
func (v Value) Len() int {
	return len(v.items)
}

// BigInt parses a big-integer value. Scalars holding an integer literal
// (decimal or 0x-hex, optionally negative) are accepted too.
func (v Value) BigInt() (*big.Int, bool) {
	if v.kind == KindArray {
		return nil, false
	}
	return parseInteger(v.scalar)
}

func parseInteger(raw string) (*big.Int, bool) {
	s := strings.TrimSpace(raw)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	if s == "" {
		return nil, false
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, false
	}
	if neg {
		n.Neg(n)
	}
	return n, true
}

// Interface converts the value into plain Go values: strings for scalars and
// big integers, []any for arrays.
func (v Value) Interface() any {
	if v.kind != KindArray {
		return v.scalar
	}
	out := make([]any, len(v.items))
	for i, item := range v.items {
		out[i] = item.Interface()
	}
	return out
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// Equal compares kind and content recursively
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind || v.scalar != other.scalar || len(v.items) != len(other.items) {
		return false
	}
	for i := range v.items {
		if !v.items[i].Equal(other.items[i]) {
			return false
		}
	}
	return true
}
