package packstream

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/danmuck/boltwire/internal/value"
)

// AppendStructHeader appends the header of a struct with size fields.
func AppendStructHeader(dst []byte, size int, signature byte) ([]byte, error) {
	if size < 0 || size > MaxStructFields {
		return dst, fmt.Errorf("%w: %d", ErrStructTooLarge, size)
	}
	return append(dst, TinyStruct|byte(size), signature), nil
}

// AppendValue appends the canonical encoding of v. On error dst is returned
// with its original length.
func AppendValue(dst []byte, v any) ([]byte, error) {
	mark := len(dst)
	out, err := appendAny(dst, v)
	if err != nil {
		return dst[:mark], err
	}
	return out, nil
}

func appendAny(dst []byte, v any) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return AppendNull(dst), nil
	case value.Value:
		return appendValue(dst, x)
	case bool:
		return AppendBool(dst, x), nil
	case int:
		return AppendInt(dst, int64(x)), nil
	case int8:
		return AppendInt(dst, int64(x)), nil
	case int16:
		return AppendInt(dst, int64(x)), nil
	case int32:
		return AppendInt(dst, int64(x)), nil
	case int64:
		return AppendInt(dst, x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return dst, fmt.Errorf("%w: uint %d overflows int64", ErrUnsupportedValueType, x)
		}
		return AppendInt(dst, int64(x)), nil
	case uint8:
		return AppendInt(dst, int64(x)), nil
	case uint16:
		return AppendInt(dst, int64(x)), nil
	case uint32:
		return AppendInt(dst, int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return dst, fmt.Errorf("%w: uint64 %d overflows int64", ErrUnsupportedValueType, x)
		}
		return AppendInt(dst, int64(x)), nil
	case float32:
		return AppendFloat(dst, float64(x)), nil
	case float64:
		return AppendFloat(dst, x), nil
	case string:
		return AppendString(dst, x)
	case []byte:
		return AppendBytes(dst, x)
	case []string:
		dst, err := appendListHeader(dst, len(x))
		if err != nil {
			return dst, err
		}
		for _, s := range x {
			if dst, err = AppendString(dst, s); err != nil {
				return dst, err
			}
		}
		return dst, nil
	case []any:
		dst, err := appendListHeader(dst, len(x))
		if err != nil {
			return dst, err
		}
		for _, item := range x {
			if dst, err = appendAny(dst, item); err != nil {
				return dst, err
			}
		}
		return dst, nil
	case []value.Value:
		return appendValue(dst, value.List(x))
	case map[string]string:
		dst, err := appendMapHeader(dst, len(x))
		if err != nil {
			return dst, err
		}
		for _, k := range sortedKeys(x) {
			if dst, err = AppendString(dst, k); err != nil {
				return dst, err
			}
			if dst, err = AppendString(dst, x[k]); err != nil {
				return dst, err
			}
		}
		return dst, nil
	case map[string]any:
		dst, err := appendMapHeader(dst, len(x))
		if err != nil {
			return dst, err
		}
		for _, k := range sortedKeys(x) {
			if dst, err = AppendString(dst, k); err != nil {
				return dst, err
			}
			if dst, err = appendAny(dst, x[k]); err != nil {
				return dst, fmt.Errorf("map key %q: %w", k, err)
			}
		}
		return dst, nil
	case map[string]value.Value:
		return appendValue(dst, value.Map(x))
	default:
		return dst, fmt.Errorf("%w: %T", ErrUnsupportedValueType, v)
	}
}

// appendValue covers the value union. Graph entities are server-to-client
// only and have no client-side encoding.
func appendValue(dst []byte, v value.Value) ([]byte, error) {
	switch x := v.(type) {
	case value.Null:
		return AppendNull(dst), nil
	case value.Bool:
		return AppendBool(dst, bool(x)), nil
	case value.String:
		return AppendString(dst, string(x))
	case value.Integer:
		return AppendInt(dst, int64(x)), nil
	case value.Float:
		return AppendFloat(dst, float64(x)), nil
	case value.List:
		dst, err := appendListHeader(dst, len(x))
		if err != nil {
			return dst, err
		}
		for _, item := range x {
			if item == nil {
				dst = AppendNull(dst)
				continue
			}
			if dst, err = appendValue(dst, item); err != nil {
				return dst, err
			}
		}
		return dst, nil
	case value.Map:
		dst, err := appendMapHeader(dst, len(x))
		if err != nil {
			return dst, err
		}
		for _, k := range sortedKeys(x) {
			if dst, err = AppendString(dst, k); err != nil {
				return dst, err
			}
			item := x[k]
			if item == nil {
				dst = AppendNull(dst)
				continue
			}
			if dst, err = appendValue(dst, item); err != nil {
				return dst, fmt.Errorf("map key %q: %w", k, err)
			}
		}
		return dst, nil
	default:
		return dst, fmt.Errorf("%w: %s", ErrUnsupportedValueType, v.TypeConstructor())
	}
}

func AppendNull(dst []byte) []byte {
	return append(dst, Null)
}

func AppendBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, True)
	}
	return append(dst, False)
}

// AppendInt uses the smallest representation that holds v.
func AppendInt(dst []byte, v int64) []byte {
	switch {
	case v >= minTinyInt && v <= maxTinyInt:
		return append(dst, byte(int8(v)))
	case v >= math.MinInt8 && v < minTinyInt:
		return append(dst, Int8, byte(int8(v)))
	case v >= math.MinInt16 && v <= math.MaxInt16:
		dst = append(dst, Int16)
		return binary.BigEndian.AppendUint16(dst, uint16(int16(v)))
	case v >= math.MinInt32 && v <= math.MaxInt32:
		dst = append(dst, Int32)
		return binary.BigEndian.AppendUint32(dst, uint32(int32(v)))
	default:
		dst = append(dst, Int64)
		return binary.BigEndian.AppendUint64(dst, uint64(v))
	}
}

func AppendFloat(dst []byte, v float64) []byte {
	dst = append(dst, Float64)
	return binary.BigEndian.AppendUint64(dst, math.Float64bits(v))
}

func AppendString(dst []byte, s string) ([]byte, error) {
	dst, err := appendSized(dst, len(s), TinyString, String8, String16, String32)
	if err != nil {
		return dst, err
	}
	return append(dst, s...), nil
}

// AppendBytes has no tiny form.
func AppendBytes(dst []byte, b []byte) ([]byte, error) {
	n := len(b)
	switch {
	case n <= maxSize8:
		dst = append(dst, Bytes8, byte(n))
	case n <= maxSize16:
		dst = append(dst, Bytes16)
		dst = binary.BigEndian.AppendUint16(dst, uint16(n))
	case uint64(n) <= maxSize32:
		dst = append(dst, Bytes32)
		dst = binary.BigEndian.AppendUint32(dst, uint32(n))
	default:
		return dst, fmt.Errorf("%w: bytes of length %d", ErrSizeTooLarge, n)
	}
	return append(dst, b...), nil
}

func appendListHeader(dst []byte, n int) ([]byte, error) {
	return appendSized(dst, n, TinyList, List8, List16, List32)
}

func appendMapHeader(dst []byte, n int) ([]byte, error) {
	return appendSized(dst, n, TinyMap, Map8, Map16, Map32)
}

func appendSized(dst []byte, n int, tiny, m8, m16, m32 byte) ([]byte, error) {
	switch {
	case n < tinySizeLimit:
		return append(dst, tiny|byte(n)), nil
	case n <= maxSize8:
		return append(dst, m8, byte(n)), nil
	case n <= maxSize16:
		dst = append(dst, m16)
		return binary.BigEndian.AppendUint16(dst, uint16(n)), nil
	case uint64(n) <= maxSize32:
		dst = append(dst, m32)
		return binary.BigEndian.AppendUint32(dst, uint32(n)), nil
	default:
		return dst, fmt.Errorf("%w: %d", ErrSizeTooLarge, n)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
