package usecases

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"contract-explorer.backend/pkg/solidity"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// convertArgs turns coerced call parameters into the Go values abi.Arguments.Pack expects
func convertArgs(inputs abi.Arguments, params []solidity.Value) ([]interface{}, error) {
	if len(inputs) != len(params) {
		return nil, newCallError(nil, "expected %d arguments, got %d", len(inputs), len(params))
	}

	converted := make([]interface{}, len(params))
	for i, input := range inputs {
		val, err := convertArg(input.Type, params[i])
		if err != nil {
			return nil, newCallError(err, "invalid argument %d (%s): %v", i, input.Name, err)
		}
		converted[i] = val
	}
	return converted, nil
}

func convertArg(t abi.Type, v solidity.Value) (interface{}, error) {
	switch t.T {
	case abi.SliceTy, abi.ArrayTy:
		return convertList(t, v)
	case abi.TupleTy:
		return convertTuple(t, v)
	}

	if v.IsArray() {
		return nil, fmt.Errorf("expected a single %s value, got a list", t.String())
	}
	s := strings.TrimSpace(v.String())

	switch t.T {
	case abi.AddressTy:
		if !common.IsHexAddress(s) {
			return nil, fmt.Errorf("invalid address %q", s)
		}
		return common.HexToAddress(s), nil
	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("invalid hex for %s: %v", t.String(), err)
		}
		if len(b) != t.Size {
			return nil, fmt.Errorf("expected %d bytes, got %d", t.Size, len(b))
		}
		arr := reflect.New(t.GetType()).Elem()
		for i := range b {
			arr.Index(i).SetUint(uint64(b[i]))
		}
		return arr.Interface(), nil
	case abi.BytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, fmt.Errorf("invalid hex for bytes: %v", err)
		}
		return b, nil
	case abi.IntTy, abi.UintTy:
		n, ok := v.BigInt()
		if !ok {
			return nil, fmt.Errorf("invalid number %q", s)
		}
		if err := checkIntRange(t, n); err != nil {
			return nil, err
		}
		return sizedInt(t, n), nil
	case abi.BoolTy:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q", s)
		}
		return b, nil
	case abi.StringTy:
		return v.String(), nil
	default:
		return nil, fmt.Errorf("unsupported argument type %s", t.String())
	}
}

func convertList(t abi.Type, v solidity.Value) (interface{}, error) {
	if !v.IsArray() {
		v = solidity.ProcessMethodCallParam(v.String(), t.String())
	}
	items := v.Items()
	if t.T == abi.ArrayTy && len(items) != t.Size {
		return nil, fmt.Errorf("expected %d elements, got %d", t.Size, len(items))
	}

	var out reflect.Value
	if t.T == abi.SliceTy {
		out = reflect.MakeSlice(t.GetType(), len(items), len(items))
	} else {
		out = reflect.New(t.GetType()).Elem()
	}
	for i, item := range items {
		elem, err := convertArg(*t.Elem, item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out.Index(i).Set(reflect.ValueOf(elem))
	}
	return out.Interface(), nil
}

// convertTuple accepts a JSON object keyed by component name or a positional
// list written as [a,b] or (a,b)
func convertTuple(t abi.Type, v solidity.Value) (interface{}, error) {
	var fields []solidity.Value
	raw := strings.TrimSpace(v.String())

	switch {
	case v.IsArray():
		fields = v.Items()
	case strings.HasPrefix(raw, "{"):
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			return nil, fmt.Errorf("invalid tuple object: %v", err)
		}
		fields = make([]solidity.Value, len(t.TupleElems))
		for i, name := range t.TupleRawNames {
			field, ok := obj[name]
			if !ok {
				return nil, fmt.Errorf("missing tuple field %q", name)
			}
			fields[i] = jsonToValue(field)
		}
	default:
		if strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")") {
			raw = "[" + raw[1:len(raw)-1] + "]"
		}
		fields = solidity.ProcessMethodCallParam(raw, "tuple[]").Items()
	}

	if len(fields) != len(t.TupleElems) {
		return nil, fmt.Errorf("expected %d tuple fields, got %d", len(t.TupleElems), len(fields))
	}

	out := reflect.New(t.TupleType).Elem()
	for i, elemType := range t.TupleElems {
		val, err := convertArg(*elemType, fields[i])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", t.TupleRawNames[i], err)
		}
		out.Field(i).Set(reflect.ValueOf(val))
	}
	return out.Interface(), nil
}

func jsonToValue(raw json.RawMessage) solidity.Value {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return solidity.Scalar("")
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return solidity.Scalar(s)
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err == nil {
			values := make([]solidity.Value, len(items))
			for i, item := range items {
				values[i] = jsonToValue(item)
			}
			return solidity.ArrayOf(values...)
		}
	}
	return solidity.Scalar(string(trimmed))
}

func checkIntRange(t abi.Type, n *big.Int) error {
	if t.T == abi.UintTy {
		if n.Sign() < 0 || n.BitLen() > t.Size {
			return fmt.Errorf("value %s out of range for uint%d", n, t.Size)
		}
		return nil
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
	minimum := new(big.Int).Neg(limit)
	if n.Cmp(minimum) < 0 || n.Cmp(limit) >= 0 {
		return fmt.Errorf("value %s out of range for int%d", n, t.Size)
	}
	return nil
}

// sizedInt matches go-ethereum's native integer kinds for 8/16/32/64 bit types
func sizedInt(t abi.Type, n *big.Int) interface{} {
	unsigned := t.T == abi.UintTy
	switch t.Size {
	case 8:
		if unsigned {
			return uint8(n.Uint64())
		}
		return int8(n.Int64())
	case 16:
		if unsigned {
			return uint16(n.Uint64())
		}
		return int16(n.Int64())
	case 32:
		if unsigned {
			return uint32(n.Uint64())
		}
		return int32(n.Int64())
	case 64:
		if unsigned {
			return n.Uint64()
		}
		return n.Int64()
	default:
		return n
	}
}
