package odd

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
)

// Decoded attribute values arrive as whatever the wire library produced:
// sized integers from msgpack, int32 from bson, json.Number from json, and
// nested odd values already built. The helpers below fold them into the
// types the built-in constructors need.

func toRat(v any) (*big.Rat, error) {
	switch n := v.(type) {
	case *big.Rat:
		if n == nil {
			break
		}
		return new(big.Rat).Set(n), nil
	case *big.Int:
		if n == nil {
			break
		}
		return new(big.Rat).SetInt(n), nil
	case json.Number:
		return parseRat(string(n))
	case string:
		return parseRat(n)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return new(big.Rat).SetInt64(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Rat).SetInt(new(big.Int).SetUint64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		r := new(big.Rat).SetFloat64(rv.Float())
		if r == nil {
			return nil, fmt.Errorf("%w: %v is not finite", ErrConstruct, v)
		}
		return r, nil
	}
	return nil, fmt.Errorf("%w: %T is not numeric", ErrConstruct, v)
}

func parseRat(s string) (*big.Rat, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not numeric", ErrConstruct, s)
	}
	return r, nil
}

func toBigInt(v any) (*big.Int, error) {
	r, err := toRat(v)
	if err != nil {
		return nil, err
	}
	if !r.IsInt() {
		return nil, fmt.Errorf("%w: %v is not an integer", ErrConstruct, v)
	}
	return new(big.Int).Set(r.Num()), nil
}

func toInt(v any) (int, error) {
	n, err := toBigInt(v)
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() || n.Int64() > math.MaxInt || n.Int64() < math.MinInt {
		return 0, fmt.Errorf("%w: %v overflows int", ErrConstruct, v)
	}
	return int(n.Int64()), nil
}

func toFloat(v any) (float64, error) {
	r, err := toRat(v)
	if err != nil {
		return 0, err
	}
	f, _ := r.Float64()
	return f, nil
}

func toBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %T is not a bool", ErrConstruct, v)
	}
	return b, nil
}

// intValue reports n as an int64 when it fits, otherwise as a copy of n.
func intValue(n *big.Int) any {
	if n.IsInt64() {
		return n.Int64()
	}
	return new(big.Int).Set(n)
}

// arg returns args[i], or nil past the end.
func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

// intArg converts args[i] to int, using def when the attribute was absent.
func intArg(args []any, i, def int) (int, error) {
	v := arg(args, i)
	if v == nil {
		return def, nil
	}
	return toInt(v)
}

// floatArg converts args[i] to float64, using def when the attribute was absent.
func floatArg(args []any, i int, def float64) (float64, error) {
	v := arg(args, i)
	if v == nil {
		return def, nil
	}
	return toFloat(v)
}
