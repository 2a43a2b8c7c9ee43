package usecases

import (
	"math/big"
	"reflect"
	"strconv"

	"contract-explorer.backend/pkg/solidity"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// normalizeResults converts unpacked return values into their raw display
// shapes. Top-level integers are tagged BigNumbers; integers nested in
// lists and tuples are plain decimal strings.
func normalizeResults(outputs abi.Arguments, values []interface{}) []interface{} {
	out := make([]interface{}, 0, len(values))
	for i, v := range values {
		if i >= len(outputs) {
			break
		}
		out = append(out, normalizeResult(outputs[i].Type, v, true))
	}
	return out
}

func normalizeResult(t abi.Type, v interface{}, top bool) interface{} {
	switch t.T {
	case abi.IntTy, abi.UintTy:
		n := toBigInt(v)
		if n == nil {
			return v
		}
		if top {
			return solidity.NewBigNumber(n)
		}
		return n.String()
	case abi.AddressTy:
		if a, ok := v.(common.Address); ok {
			return a.Hex()
		}
	case abi.BytesTy:
		if b, ok := v.([]byte); ok {
			return hexutil.Encode(b)
		}
	case abi.FixedBytesTy, abi.FunctionTy:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Array {
			return v
		}
		b := make([]byte, rv.Len())
		for i := range b {
			b[i] = byte(rv.Index(i).Uint())
		}
		return hexutil.Encode(b)
	case abi.SliceTy, abi.ArrayTy:
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return v
		}
		items := make([]interface{}, rv.Len())
		for i := range items {
			items[i] = normalizeResult(*t.Elem, rv.Index(i).Interface(), false)
		}
		return items
	case abi.TupleTy:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Ptr {
			rv = rv.Elem()
		}
		if rv.Kind() != reflect.Struct {
			return v
		}
		obj := make(map[string]interface{}, len(t.TupleElems))
		for i, elem := range t.TupleElems {
			name := t.TupleRawNames[i]
			if name == "" {
				name = strconv.Itoa(i)
			}
			obj[name] = normalizeResult(*elem, rv.Field(i).Interface(), false)
		}
		return obj
	}
	return v
}

func toBigInt(v interface{}) *big.Int {
	if n, ok := v.(*big.Int); ok {
		return n
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Int).SetUint64(rv.Uint())
	}
	return nil
}
