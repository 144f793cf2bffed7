package packstream

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/danmuck/boltwire/internal/testutil/packtest"
	"github.com/danmuck/boltwire/internal/value"
)

func mustAppend(t *testing.T, v any) []byte {
	t.Helper()
	out, err := AppendValue(nil, v)
	if err != nil {
		t.Fatalf("append %T: %v", v, err)
	}
	return out
}

func TestAppendIntBoundaries(t *testing.T) {
	cases := []struct {
		in   int64
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{-1, []byte{0xFF}},
		{-16, []byte{0xF0}},
		{-17, []byte{0xC8, 0xEF}},
		{-128, []byte{0xC8, 0x80}},
		{128, []byte{0xC9, 0x00, 0x80}},
		{-129, []byte{0xC9, 0xFF, 0x7F}},
		{32767, []byte{0xC9, 0x7F, 0xFF}},
		{32768, []byte{0xCA, 0x00, 0x00, 0x80, 0x00}},
		{-32769, []byte{0xCA, 0xFF, 0xFF, 0x7F, 0xFF}},
		{math.MaxInt32, []byte{0xCA, 0x7F, 0xFF, 0xFF, 0xFF}},
		{math.MaxInt32 + 1, []byte{0xCB, 0x00, 0x00, 0x00, 0x00, 0x80, 0x00, 0x00, 0x00}},
		{math.MinInt64, []byte{0xCB, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
	}
	for _, tc := range cases {
		got := AppendInt(nil, tc.in)
		if !bytes.Equal(got, tc.want) {
			t.Fatalf("int %d: got=% X want=% X", tc.in, got, tc.want)
		}
		back, err := packtest.UnpackAll(got)
		if err != nil || back != tc.in {
			t.Fatalf("int %d: unpacked %v err=%v", tc.in, back, err)
		}
	}
}

func TestAppendScalars(t *testing.T) {
	if got := mustAppend(t, nil); !bytes.Equal(got, []byte{0xC0}) {
		t.Fatalf("nil=% X", got)
	}
	if got := mustAppend(t, true); !bytes.Equal(got, []byte{0xC3}) {
		t.Fatalf("true=% X", got)
	}
	if got := mustAppend(t, false); !bytes.Equal(got, []byte{0xC2}) {
		t.Fatalf("false=% X", got)
	}
	want := []byte{0xC1, 0x3F, 0xF1, 0x99, 0x99, 0x99, 0x99, 0x99, 0x9A}
	if got := mustAppend(t, 1.1); !bytes.Equal(got, want) {
		t.Fatalf("1.1=% X", got)
	}
	if got := mustAppend(t, value.Float(1.1)); !bytes.Equal(got, want) {
		t.Fatalf("value.Float=% X", got)
	}
	if got := mustAppend(t, uint8(200)); !bytes.Equal(got, []byte{0xC9, 0x00, 0xC8}) {
		t.Fatalf("uint8=% X", got)
	}
}

func TestAppendStringSizes(t *testing.T) {
	cases := []struct {
		n      int
		header []byte
	}{
		{0, []byte{0x80}},
		{15, []byte{0x8F}},
		{16, []byte{0xD0, 0x10}},
		{255, []byte{0xD0, 0xFF}},
		{256, []byte{0xD1, 0x01, 0x00}},
		{65536, []byte{0xD2, 0x00, 0x01, 0x00, 0x00}},
	}
	for _, tc := range cases {
		s := strings.Repeat("a", tc.n)
		got := mustAppend(t, s)
		if !bytes.HasPrefix(got, tc.header) || len(got) != len(tc.header)+tc.n {
			t.Fatalf("string len %d: header=% X", tc.n, got[:len(tc.header)])
		}
	}
	// length counts UTF-8 bytes, not runes
	if got := mustAppend(t, "é"); !bytes.Equal(got, []byte{0x82, 0xC3, 0xA9}) {
		t.Fatalf("utf8=% X", got)
	}
}

func TestAppendBytesHasNoTinyForm(t *testing.T) {
	if got := mustAppend(t, []byte{}); !bytes.Equal(got, []byte{0xCC, 0x00}) {
		t.Fatalf("empty bytes=% X", got)
	}
	got := mustAppend(t, make([]byte, 256))
	if !bytes.HasPrefix(got, []byte{0xCD, 0x01, 0x00}) {
		t.Fatalf("bytes16 header=% X", got[:3])
	}
}

func TestAppendListAndMapHeaders(t *testing.T) {
	list := make([]any, 16)
	got := mustAppend(t, list)
	if got[0] != 0xD4 || got[1] != 16 {
		t.Fatalf("list8 header=% X", got[:2])
	}
	if got := mustAppend(t, []string{"a"}); !bytes.Equal(got, []byte{0x91, 0x81, 'a'}) {
		t.Fatalf("tiny list=% X", got)
	}

	m := map[string]any{}
	for i := 0; i < 15; i++ {
		m[string(rune('a'+i))] = i
	}
	if got := mustAppend(t, m); got[0] != 0xAF {
		t.Fatalf("tiny map header=%#x", got[0])
	}
	m["z"] = 1
	if got := mustAppend(t, m); got[0] != 0xD8 || got[1] != 16 {
		t.Fatalf("map8 header=% X", got[:2])
	}
}

func TestAppendMapIsDeterministic(t *testing.T) {
	m := map[string]any{"b": 2, "a": 1, "c": 3}
	want := []byte{0xA3, 0x81, 'a', 0x01, 0x81, 'b', 0x02, 0x81, 'c', 0x03}
	for i := 0; i < 10; i++ {
		if got := mustAppend(t, m); !bytes.Equal(got, want) {
			t.Fatalf("map=% X", got)
		}
	}
}

func TestAppendValueUnion(t *testing.T) {
	in := value.Map{
		"n":    value.Null{},
		"list": value.List{value.Integer(1), value.String("x"), value.Bool(true)},
	}
	out := mustAppend(t, in)
	back, err := packtest.UnpackAll(out)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	m := back.(map[string]any)
	if m["n"] != nil {
		t.Fatalf("null=%v", m["n"])
	}
	list := m["list"].([]any)
	if len(list) != 3 || list[0] != int64(1) || list[1] != "x" || list[2] != true {
		t.Fatalf("list=%v", list)
	}
}

func TestAppendValueRejectsUnsupported(t *testing.T) {
	prefix := []byte{0x01, 0x02}
	cases := []any{
		struct{}{},
		uint64(math.MaxUint64),
		value.Node{ID: 1},
		map[string]any{"ok": 1, "bad": value.Path{}},
		[]any{1, 2, make(chan int)},
	}
	for _, v := range cases {
		out, err := AppendValue(prefix, v)
		if !errors.Is(err, ErrUnsupportedValueType) {
			t.Fatalf("%T: expected ErrUnsupportedValueType, got %v", v, err)
		}
		if !bytes.Equal(out, prefix) {
			t.Fatalf("%T: dst not restored: % X", v, out)
		}
	}
}

func TestAppendStructHeader(t *testing.T) {
	got, err := AppendStructHeader(nil, 3, 0x66)
	if err != nil || !bytes.Equal(got, []byte{0xB3, 0x66}) {
		t.Fatalf("header=% X err=%v", got, err)
	}
	if _, err := AppendStructHeader(nil, MaxStructFields+1, 0x01); !errors.Is(err, ErrStructTooLarge) {
		t.Fatalf("expected ErrStructTooLarge, got %v", err)
	}
}

type countingWriter struct {
	bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

func TestPackerWritesOnceOrNothing(t *testing.T) {
	w := &countingWriter{}
	p := NewPacker(w)
	if err := p.Pack(map[string]any{"a": []any{1, 2, 3}}); err != nil {
		t.Fatalf("pack: %v", err)
	}
	if w.writes != 1 {
		t.Fatalf("expected one write, got %d", w.writes)
	}
	if err := p.Pack([]any{1, value.Relationship{}}); !errors.Is(err, ErrUnsupportedValueType) {
		t.Fatalf("expected ErrUnsupportedValueType, got %v", err)
	}
	if w.writes != 1 {
		t.Fatalf("failed pack wrote bytes")
	}
	if err := p.PackStructHeader(16, 0x10); !errors.Is(err, ErrStructTooLarge) {
		t.Fatalf("expected ErrStructTooLarge, got %v", err)
	}
	if w.writes != 1 {
		t.Fatalf("failed header wrote bytes")
	}
}
