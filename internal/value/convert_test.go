package value

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
)

func TestOfScalars(t *testing.T) {
	cases := []struct {
		in   any
		want Value
	}{
		{nil, Null{}},
		{true, Bool(true)},
		{"x", String("x")},
		{int8(-3), Integer(-3)},
		{uint32(7), Integer(7)},
		{float32(0.5), Float(0.5)},
		{json.Number("42"), Integer(42)},
		{json.Number("4.5"), Float(4.5)},
		{Integer(9), Integer(9)},
	}
	for _, tc := range cases {
		got, err := Of(tc.in)
		if err != nil {
			t.Fatalf("Of(%#v): %v", tc.in, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Of(%#v)=%#v want %#v", tc.in, got, tc.want)
		}
	}
}

func TestOfDecodedJSON(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`{"a":[1,"two",null],"b":{"c":1.5}}`))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, err := Of(raw)
	if err != nil {
		t.Fatalf("Of: %v", err)
	}
	want := Map{
		"a": List{Integer(1), String("two"), Null{}},
		"b": Map{"c": Float(1.5)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got=%#v", got)
	}
}

func TestOfRejects(t *testing.T) {
	cases := []any{
		uint64(math.MaxUint64),
		struct{}{},
		[]any{1, make(chan int)},
		map[string]any{"k": func() {}},
		json.Number("nope"),
	}
	for _, in := range cases {
		if _, err := Of(in); !errors.Is(err, ErrUnconvertible) {
			t.Fatalf("Of(%T): expected ErrUnconvertible, got %v", in, err)
		}
	}
}

func TestNative(t *testing.T) {
	in := Map{
		"list": List{Integer(1), Float(2), Bool(false), Null{}},
		"node": Node{ID: 7, Labels: []string{"Person"}, Props: Map{"name": String("Ada")}},
	}
	got := Native(in).(map[string]any)
	list := got["list"].([]any)
	if list[0] != int64(1) || list[1] != float64(2) || list[2] != false || list[3] != nil {
		t.Fatalf("list=%#v", list)
	}
	node := got["node"].(map[string]any)
	if node["id"] != int64(7) || node["props"].(map[string]any)["name"] != "Ada" {
		t.Fatalf("node=%#v", node)
	}
}
