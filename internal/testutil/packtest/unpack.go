// Package packtest reads PackStream and chunked bolt output back for tests.
package packtest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var ErrShort = errors.New("packtest: truncated input")

// Struct is a decoded struct frame.
type Struct struct {
	Signature byte
	Fields    []any
}

// Unpack decodes exactly one value from b and returns the remaining bytes.
// Integers decode as int64, floats as float64, lists as []any and maps as
// map[string]any.
func Unpack(b []byte) (any, []byte, error) {
	if len(b) == 0 {
		return nil, b, ErrShort
	}
	m := b[0]
	b = b[1:]
	switch {
	case m <= 0x7F:
		return int64(m), b, nil
	case m >= 0xF0:
		return int64(int8(m)), b, nil
	case m&0xF0 == 0x80:
		return unpackString(b, int(m&0x0F))
	case m&0xF0 == 0x90:
		return unpackList(b, int(m&0x0F))
	case m&0xF0 == 0xA0:
		return unpackMap(b, int(m&0x0F))
	case m&0xF0 == 0xB0:
		if len(b) < 1 {
			return nil, b, ErrShort
		}
		sig := b[0]
		fields, rest, err := unpackList(b[1:], int(m&0x0F))
		if err != nil {
			return nil, rest, err
		}
		return Struct{Signature: sig, Fields: fields.([]any)}, rest, nil
	}

	switch m {
	case 0xC0:
		return nil, b, nil
	case 0xC1:
		if len(b) < 8 {
			return nil, b, ErrShort
		}
		return math.Float64frombits(binary.BigEndian.Uint64(b)), b[8:], nil
	case 0xC2:
		return false, b, nil
	case 0xC3:
		return true, b, nil
	case 0xC8:
		n, rest, err := readUint(b, 1)
		return int64(int8(n)), rest, err
	case 0xC9:
		n, rest, err := readUint(b, 2)
		return int64(int16(n)), rest, err
	case 0xCA:
		n, rest, err := readUint(b, 4)
		return int64(int32(n)), rest, err
	case 0xCB:
		n, rest, err := readUint(b, 8)
		return int64(n), rest, err
	case 0xCC, 0xCD, 0xCE:
		n, rest, err := readUint(b, 1<<(m-0xCC))
		if err != nil {
			return nil, rest, err
		}
		if uint64(len(rest)) < n {
			return nil, rest, ErrShort
		}
		return append([]byte{}, rest[:n]...), rest[n:], nil
	case 0xD0, 0xD1, 0xD2:
		n, rest, err := readUint(b, 1<<(m-0xD0))
		if err != nil {
			return nil, rest, err
		}
		return unpackString(rest, int(n))
	case 0xD4, 0xD5, 0xD6:
		n, rest, err := readUint(b, 1<<(m-0xD4))
		if err != nil {
			return nil, rest, err
		}
		return unpackList(rest, int(n))
	case 0xD8, 0xD9, 0xDA:
		n, rest, err := readUint(b, 1<<(m-0xD8))
		if err != nil {
			return nil, rest, err
		}
		return unpackMap(rest, int(n))
	}
	return nil, b, fmt.Errorf("packtest: unknown marker %#x", m)
}

// UnpackAll decodes b as exactly one value with no trailing bytes.
func UnpackAll(b []byte) (any, error) {
	v, rest, err := Unpack(b)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("packtest: %d trailing bytes", len(rest))
	}
	return v, nil
}

// Dechunk splits chunked stream output into message payloads.
func Dechunk(data []byte) ([][]byte, error) {
	var out [][]byte
	var cur []byte
	for len(data) > 0 {
		if len(data) < 2 {
			return nil, ErrShort
		}
		n := int(binary.BigEndian.Uint16(data))
		data = data[2:]
		if n == 0 {
			out = append(out, cur)
			cur = nil
			continue
		}
		if len(data) < n {
			return nil, ErrShort
		}
		cur = append(cur, data[:n]...)
		data = data[n:]
	}
	if cur != nil {
		return nil, fmt.Errorf("packtest: unterminated message")
	}
	return out, nil
}

func readUint(b []byte, width int) (uint64, []byte, error) {
	if len(b) < width {
		return 0, b, ErrShort
	}
	var n uint64
	for _, c := range b[:width] {
		n = n<<8 | uint64(c)
	}
	return n, b[width:], nil
}

func unpackString(b []byte, n int) (any, []byte, error) {
	if len(b) < n {
		return nil, b, ErrShort
	}
	return string(b[:n]), b[n:], nil
}

func unpackList(b []byte, n int) (any, []byte, error) {
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		v, rest, err := Unpack(b)
		if err != nil {
			return nil, rest, err
		}
		out = append(out, v)
		b = rest
	}
	return out, b, nil
}

func unpackMap(b []byte, n int) (any, []byte, error) {
	out := make(map[string]any, n)
	for i := 0; i < n; i++ {
		k, rest, err := Unpack(b)
		if err != nil {
			return nil, rest, err
		}
		key, ok := k.(string)
		if !ok {
			return nil, rest, fmt.Errorf("packtest: map key %T", k)
		}
		v, rest, err := Unpack(rest)
		if err != nil {
			return nil, rest, err
		}
		out[key] = v
		b = rest
	}
	return out, b, nil
}
